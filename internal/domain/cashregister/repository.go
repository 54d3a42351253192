package cashregister

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/cliniflow/clinic-manager/internal/models"
	"github.com/cliniflow/clinic-manager/internal/policy"
)

type Repository interface {
	// CreateClosing inserts an empty open closing. Returns the
	// duplicate_closing business error when one already exists for the
	// (professional, date) pair.
	CreateClosing(
		ctx context.Context,
		cl *models.CashRegisterClosing,
	) error

	GetClosing(
		ctx context.Context,
		ident policy.Identity,
		id uuid.UUID,
	) (*models.CashRegisterClosing, error)

	GetClosingForDate(
		ctx context.Context,
		ident policy.Identity,
		date string,
	) (*models.CashRegisterClosing, error)

	ListClosings(
		ctx context.Context,
		ident policy.Identity,
		from string,
		to string,
	) ([]models.CashRegisterClosing, error)

	// AddTransaction appends while the closing is open and recomputes the
	// total from the full transaction set, all in one storage transaction.
	AddTransaction(
		ctx context.Context,
		ident policy.Identity,
		closingID uuid.UUID,
		tx *models.CashRegisterTransaction,
	) (*models.CashRegisterClosing, error)

	// RemoveTransaction deletes while open and recomputes the same way.
	RemoveTransaction(
		ctx context.Context,
		ident policy.Identity,
		closingID uuid.UUID,
		transactionID uuid.UUID,
	) (*models.CashRegisterClosing, error)

	FinalizeClosing(
		ctx context.Context,
		ident policy.Identity,
		closingID uuid.UUID,
		now time.Time,
	) (*models.CashRegisterClosing, error)
}

package cashregister

import (
	"context"

	"github.com/google/uuid"

	domain "github.com/cliniflow/clinic-manager/internal/domain/cashregister"
	"github.com/cliniflow/clinic-manager/internal/models"
	"github.com/cliniflow/clinic-manager/internal/policy"
)

type GetClosing struct {
	repo domain.Repository
}

func NewGetClosing(repo domain.Repository) *GetClosing {
	return &GetClosing{repo: repo}
}

func (uc *GetClosing) Execute(
	ctx context.Context,
	ident policy.Identity,
	closingID uuid.UUID,
) (*models.CashRegisterClosing, error) {
	return uc.repo.GetClosing(ctx, ident, closingID)
}

// ByDate fetches the caller's closing for a calendar day, the path a client
// takes after a duplicate_closing rejection.
func (uc *GetClosing) ByDate(
	ctx context.Context,
	ident policy.Identity,
	date string,
) (*models.CashRegisterClosing, error) {
	return uc.repo.GetClosingForDate(ctx, ident, date)
}

// List returns the caller's closings, optionally bounded by date.
func (uc *GetClosing) List(
	ctx context.Context,
	ident policy.Identity,
	from string,
	to string,
) ([]models.CashRegisterClosing, error) {
	return uc.repo.ListClosings(ctx, ident, from, to)
}

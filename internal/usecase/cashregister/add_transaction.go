package cashregister

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cliniflow/clinic-manager/internal/audit"
	domain "github.com/cliniflow/clinic-manager/internal/domain/cashregister"
	"github.com/cliniflow/clinic-manager/internal/httperr"
	"github.com/cliniflow/clinic-manager/internal/models"
	"github.com/cliniflow/clinic-manager/internal/policy"
)

type AddTransactionInput struct {
	ClosingID     uuid.UUID
	AppointmentID *uuid.UUID
	Amount        decimal.Decimal
	PaymentMethod string
	Notes         string
}

type AddTransaction struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewAddTransaction(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *AddTransaction {
	return &AddTransaction{
		repo:  repo,
		audit: audit,
	}
}

func (uc *AddTransaction) Execute(
	ctx context.Context,
	ident policy.Identity,
	in AddTransactionInput,
) (*models.CashRegisterClosing, error) {

	if in.Amount.IsNegative() {
		return nil, httperr.ErrBusiness("invalid_amount")
	}
	if strings.TrimSpace(in.PaymentMethod) == "" {
		return nil, httperr.ErrBusiness("missing_payment_method")
	}

	transaction := &models.CashRegisterTransaction{
		AppointmentID: in.AppointmentID,
		Amount:        in.Amount.Round(2),
		PaymentMethod: in.PaymentMethod,
		Notes:         in.Notes,
	}

	// Append + full recompute of the total happen in one storage
	// transaction; a finalized closing refuses the mutation.
	cl, err := uc.repo.AddTransaction(ctx, ident, in.ClosingID, transaction)
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		ProfessionalID: cl.ProfessionalID,
		ActorID:        &ident.ProfileID,
		Action:         "transaction_added",
		Entity:         "cash_register_transaction",
		EntityID:       &transaction.ID,
		Metadata: map[string]any{
			"amount":         transaction.Amount,
			"payment_method": transaction.PaymentMethod,
		},
	})

	return cl, nil
}

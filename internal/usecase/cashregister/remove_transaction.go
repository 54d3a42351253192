package cashregister

import (
	"context"

	"github.com/google/uuid"

	"github.com/cliniflow/clinic-manager/internal/audit"
	domain "github.com/cliniflow/clinic-manager/internal/domain/cashregister"
	"github.com/cliniflow/clinic-manager/internal/models"
	"github.com/cliniflow/clinic-manager/internal/policy"
)

type RemoveTransaction struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewRemoveTransaction(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *RemoveTransaction {
	return &RemoveTransaction{
		repo:  repo,
		audit: audit,
	}
}

func (uc *RemoveTransaction) Execute(
	ctx context.Context,
	ident policy.Identity,
	closingID uuid.UUID,
	transactionID uuid.UUID,
) (*models.CashRegisterClosing, error) {

	cl, err := uc.repo.RemoveTransaction(ctx, ident, closingID, transactionID)
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		ProfessionalID: cl.ProfessionalID,
		ActorID:        &ident.ProfileID,
		Action:         "transaction_removed",
		Entity:         "cash_register_transaction",
		EntityID:       &transactionID,
	})

	return cl, nil
}

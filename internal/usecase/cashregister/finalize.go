package cashregister

import (
	"context"

	"github.com/google/uuid"

	"github.com/cliniflow/clinic-manager/internal/audit"
	domain "github.com/cliniflow/clinic-manager/internal/domain/cashregister"
	"github.com/cliniflow/clinic-manager/internal/models"
	"github.com/cliniflow/clinic-manager/internal/policy"
	"github.com/cliniflow/clinic-manager/internal/timezone"
)

type FinalizeClosing struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewFinalizeClosing(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *FinalizeClosing {
	return &FinalizeClosing{
		repo:  repo,
		audit: audit,
	}
}

func (uc *FinalizeClosing) Execute(
	ctx context.Context,
	ident policy.Identity,
	closingID uuid.UUID,
) (*models.CashRegisterClosing, error) {

	cl, err := uc.repo.FinalizeClosing(ctx, ident, closingID, timezone.Now())
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		ProfessionalID: cl.ProfessionalID,
		ActorID:        &ident.ProfileID,
		Action:         "closing_finalized",
		Entity:         "cash_register_closing",
		EntityID:       &cl.ID,
		Metadata:       map[string]any{"total_amount": cl.TotalAmount},
	})

	return cl, nil
}

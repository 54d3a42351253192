package cashregister

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cliniflow/clinic-manager/internal/audit"
	domain "github.com/cliniflow/clinic-manager/internal/domain/cashregister"
	"github.com/cliniflow/clinic-manager/internal/httperr"
	"github.com/cliniflow/clinic-manager/internal/models"
	"github.com/cliniflow/clinic-manager/internal/policy"
)

// ======================================================
// INPUT
// ======================================================

type OpenClosingInput struct {
	// Zero means "open for myself"; only super_admin may open on behalf
	// of another professional.
	ProfessionalID uuid.UUID

	Date  string
	Notes string
}

// ======================================================
// USE CASE
// ======================================================

type OpenClosing struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewOpenClosing(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *OpenClosing {
	return &OpenClosing{
		repo:  repo,
		audit: audit,
	}
}

func (uc *OpenClosing) Execute(
	ctx context.Context,
	ident policy.Identity,
	in OpenClosingInput,
) (*models.CashRegisterClosing, error) {

	professionalID := in.ProfessionalID
	if professionalID == uuid.Nil {
		professionalID = ident.ProfileID
	}
	if professionalID != ident.ProfileID && !ident.IsSuperAdmin() {
		return nil, httperr.ErrBusiness("invalid_professional")
	}

	if _, err := time.Parse("2006-01-02", in.Date); err != nil {
		return nil, httperr.ErrBusiness("invalid_date")
	}

	cl := &models.CashRegisterClosing{
		ProfessionalID: professionalID,
		ClosingDate:    in.Date,
		TotalAmount:    decimal.Zero,
		Notes:          in.Notes,
		IsFinalized:    false,
	}

	// One closing per professional per day; the unique index arbitrates
	// concurrent opens, surfacing duplicate_closing to the loser.
	if err := uc.repo.CreateClosing(ctx, cl); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		ProfessionalID: professionalID,
		ActorID:        &ident.ProfileID,
		Action:         "closing_opened",
		Entity:         "cash_register_closing",
		EntityID:       &cl.ID,
	})

	return cl, nil
}

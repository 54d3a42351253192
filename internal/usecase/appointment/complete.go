package appointment

import (
	"context"

	"github.com/google/uuid"

	"github.com/cliniflow/clinic-manager/internal/audit"
	domain "github.com/cliniflow/clinic-manager/internal/domain/appointment"
	"github.com/cliniflow/clinic-manager/internal/httperr"
	"github.com/cliniflow/clinic-manager/internal/models"
	"github.com/cliniflow/clinic-manager/internal/policy"
	"github.com/cliniflow/clinic-manager/internal/timezone"
)

type CompleteAppointment struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewCompleteAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *CompleteAppointment {
	return &CompleteAppointment{
		repo:  repo,
		audit: audit,
	}
}

func (uc *CompleteAppointment) Execute(
	ctx context.Context,
	ident policy.Identity,
	appointmentID uuid.UUID,
) (*models.Appointment, error) {

	ap, err := uc.repo.GetAppointment(ctx, ident, appointmentID)
	if err != nil {
		return nil, httperr.ErrBusiness("appointment_not_found")
	}

	if err := domain.Complete(ap, timezone.Now()); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateAppointment(ctx, ap); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		ProfessionalID: ap.ProfessionalID,
		ActorID:        &ident.ProfileID,
		Action:         "appointment_completed",
		Entity:         "appointment",
		EntityID:       &ap.ID,
	})

	return ap, nil
}

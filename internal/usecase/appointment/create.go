package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/cliniflow/clinic-manager/internal/audit"
	domain "github.com/cliniflow/clinic-manager/internal/domain/appointment"
	"github.com/cliniflow/clinic-manager/internal/httperr"
	"github.com/cliniflow/clinic-manager/internal/models"
	"github.com/cliniflow/clinic-manager/internal/policy"
)

// ======================================================
// INPUT
// ======================================================

type CreateAppointmentInput struct {
	// Zero means "book for myself"; only super_admin may book on behalf
	// of another professional.
	ProfessionalID uuid.UUID

	PatientID   uuid.UUID
	ProcedureID uuid.UUID

	Date  string
	Time  string
	Notes string
}

// ======================================================
// USE CASE
// ======================================================

type CreateAppointment struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewCreateAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *CreateAppointment {
	return &CreateAppointment{
		repo:  repo,
		audit: audit,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateAppointment) Execute(
	ctx context.Context,
	ident policy.Identity,
	in CreateAppointmentInput,
) (*models.Appointment, error) {

	professionalID := in.ProfessionalID
	if professionalID == uuid.Nil {
		professionalID = ident.ProfileID
	}
	if professionalID != ident.ProfileID && !ident.IsSuperAdmin() {
		return nil, httperr.ErrBusiness("invalid_professional")
	}

	if _, err := time.Parse("2006-01-02", in.Date); err != nil {
		return nil, httperr.ErrBusiness("invalid_date_or_time")
	}
	if _, err := time.Parse("15:04", in.Time); err != nil {
		return nil, httperr.ErrBusiness("invalid_date_or_time")
	}

	procedure, err := uc.repo.GetProcedure(ctx, in.ProcedureID)
	if err != nil {
		return nil, httperr.ErrBusiness("procedure_not_found")
	}
	if !procedure.IsActive {
		return nil, httperr.ErrBusiness("procedure_inactive")
	}

	patient, err := uc.repo.GetPatient(ctx, ident, in.PatientID)
	if err != nil {
		return nil, httperr.ErrBusiness("patient_not_found")
	}

	ap := &models.Appointment{
		ProfessionalID:  professionalID,
		PatientID:       patient.ID,
		ProcedureID:     procedure.ID,
		AppointmentDate: in.Date,
		AppointmentTime: in.Time,
		Status:          string(domain.InitialStatus()),
		Notes:           in.Notes,
		CreatedBy:       ident.ProfileID,
	}

	// The repository holds the slot rule: pre-check under lock plus the
	// partial unique index as the race-proof layer.
	if err := uc.repo.CreateAppointment(ctx, ap); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		ProfessionalID: professionalID,
		ActorID:        &ident.ProfileID,
		Action:         "appointment_created",
		Entity:         "appointment",
		EntityID:       &ap.ID,
	})

	return ap, nil
}

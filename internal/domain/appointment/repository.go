package appointment

import (
	"context"

	"github.com/google/uuid"

	"github.com/cliniflow/clinic-manager/internal/models"
	"github.com/cliniflow/clinic-manager/internal/policy"
)

type Repository interface {
	// -------- Lookups --------
	GetProcedure(
		ctx context.Context,
		id uuid.UUID,
	) (*models.Procedure, error)

	GetPatient(
		ctx context.Context,
		ident policy.Identity,
		id uuid.UUID,
	) (*models.Patient, error)

	// -------- Appointment (create / conflict) --------

	// CreateAppointment inserts the row atomically against the slot rule:
	// at most one non-cancelled appointment per
	// (professional, date, time). Returns the slot_conflict business error
	// when the slot is taken.
	CreateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	// -------- Appointment (state change) --------
	GetAppointment(
		ctx context.Context,
		ident policy.Identity,
		id uuid.UUID,
	) (*models.Appointment, error)

	UpdateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	// -------- Listings --------
	ListForDate(
		ctx context.Context,
		ident policy.Identity,
		date string,
	) ([]models.Appointment, error)

	ListForDateRange(
		ctx context.Context,
		ident policy.Identity,
		from string,
		to string,
	) ([]models.Appointment, error)
}

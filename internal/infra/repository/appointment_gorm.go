package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domain "github.com/cliniflow/clinic-manager/internal/domain/appointment"
	"github.com/cliniflow/clinic-manager/internal/httperr"
	"github.com/cliniflow/clinic-manager/internal/models"
	"github.com/cliniflow/clinic-manager/internal/policy"
)

type AppointmentGormRepository struct {
	db *gorm.DB
}

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

// --------------------------------------------------
// Lookups
// --------------------------------------------------

func (r *AppointmentGormRepository) GetProcedure(
	ctx context.Context,
	id uuid.UUID,
) (*models.Procedure, error) {

	var proc models.Procedure
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&proc).Error; err != nil {
		return nil, err
	}
	return &proc, nil
}

func (r *AppointmentGormRepository) GetPatient(
	ctx context.Context,
	ident policy.Identity,
	id uuid.UUID,
) (*models.Patient, error) {

	var patient models.Patient
	if err := r.db.WithContext(ctx).
		Scopes(policy.OwnerScope(ident, "professional_id")).
		Where("id = ?", id).
		First(&patient).Error; err != nil {
		return nil, err
	}
	return &patient, nil
}

// --------------------------------------------------
// Appointment (create / conflict)
// --------------------------------------------------

func (r *AppointmentGormRepository) CreateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		// Pre-check under a row lock so the common conflict path reports
		// before touching the index. Cancelled rows do not occupy a slot.
		var count int64
		if err := lockForUpdate(tx).
			Model(&models.Appointment{}).
			Where(
				"professional_id = ? AND appointment_date = ? AND appointment_time = ? AND status <> ?",
				ap.ProfessionalID,
				ap.AppointmentDate,
				ap.AppointmentTime,
				string(domain.StatusCancelled),
			).
			Count(&count).Error; err != nil {
			return err
		}

		if count > 0 {
			return httperr.ErrBusiness(httperr.CodeSlotConflict)
		}

		return tx.Create(ap).Error
	})

	// The partial unique index is the race-proof layer. A concurrent insert
	// that slipped past the pre-check lands here.
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return httperr.ErrBusiness(httperr.CodeSlotConflict)
	}

	return err
}

// --------------------------------------------------
// Appointment (state change)
// --------------------------------------------------

func (r *AppointmentGormRepository) GetAppointment(
	ctx context.Context,
	ident policy.Identity,
	id uuid.UUID,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Scopes(policy.OwnerScope(ident, "professional_id")).
		Where("id = ?", id).
		First(&ap).Error; err != nil {
		return nil, err
	}

	return &ap, nil
}

func (r *AppointmentGormRepository) UpdateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return r.db.WithContext(ctx).Save(ap).Error
}

// --------------------------------------------------
// Listings
// --------------------------------------------------

func (r *AppointmentGormRepository) ListForDate(
	ctx context.Context,
	ident policy.Identity,
	date string,
) ([]models.Appointment, error) {

	var aps []models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Patient").
		Preload("Procedure").
		Scopes(policy.OwnerScope(ident, "professional_id")).
		Where("appointment_date = ?", date).
		Order("appointment_time ASC").
		Find(&aps).Error; err != nil {
		return nil, err
	}

	return aps, nil
}

func (r *AppointmentGormRepository) ListForDateRange(
	ctx context.Context,
	ident policy.Identity,
	from string,
	to string,
) ([]models.Appointment, error) {

	var aps []models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Patient").
		Preload("Procedure").
		Scopes(policy.OwnerScope(ident, "professional_id")).
		Where("appointment_date >= ? AND appointment_date < ?", from, to).
		Order("appointment_date ASC, appointment_time ASC").
		Find(&aps).Error; err != nil {
		return nil, err
	}

	return aps, nil
}

// Compile-time check
var _ domain.Repository = (*AppointmentGormRepository)(nil)

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Appointment struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	ProfessionalID uuid.UUID `gorm:"type:uuid;index;not null" json:"professional_id"`

	PatientID uuid.UUID `gorm:"type:uuid;not null" json:"patient_id"`
	Patient   Patient   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"patient"`

	ProcedureID uuid.UUID `gorm:"type:uuid;not null" json:"procedure_id"`
	Procedure   Procedure `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"procedure"`

	// Slot columns. The active-slot unique index over
	// (professional_id, appointment_date, appointment_time) is created in
	// db.Migrate because it is partial (excludes cancelled rows).
	AppointmentDate string `gorm:"size:10;not null" json:"appointment_date"`
	AppointmentTime string `gorm:"size:5;not null" json:"appointment_time"`

	Status string `gorm:"size:20;default:'scheduled'" json:"status"`

	Notes              string     `gorm:"size:255" json:"notes"`
	CancellationReason string     `gorm:"size:255" json:"cancellation_reason"`
	ConfirmedAt        *time.Time `json:"confirmed_at"`
	CompletedAt        *time.Time `json:"completed_at"`
	CancelledAt        *time.Time `json:"cancelled_at"`

	CreatedBy uuid.UUID `gorm:"type:uuid" json:"created_by"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

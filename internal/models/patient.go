package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Patient is owned by exactly one professional. A super_admin can read
// and write across professionals, ownership itself never changes.
type Patient struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	ProfessionalID uuid.UUID `gorm:"type:uuid;index;not null" json:"professional_id"`

	FullName string `gorm:"size:100;not null" json:"full_name"`
	Phone    string `gorm:"size:20;not null" json:"phone"`
	Email    string `gorm:"size:100" json:"email"`
	Notes    string `gorm:"size:500" json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Patient) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

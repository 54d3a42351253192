package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Procedure struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	Name            string          `gorm:"size:100;not null" json:"name"`
	Description     string          `gorm:"size:255" json:"description"`
	DurationMinutes int             `json:"duration_minutes"`
	DefaultPrice    decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"default_price"`
	IsActive        bool            `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Procedure) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

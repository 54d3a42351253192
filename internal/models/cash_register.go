package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CashRegisterClosing aggregates one professional's cash transactions for
// one calendar day. While open the total is recomputed after every
// transaction mutation; once finalized the record is read-only.
type CashRegisterClosing struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	ProfessionalID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_closing_professional_date" json:"professional_id"`
	ClosingDate    string    `gorm:"size:10;not null;uniqueIndex:idx_closing_professional_date" json:"closing_date"`

	TotalAmount decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"total_amount"`
	Notes       string          `gorm:"size:500" json:"notes"`

	IsFinalized bool       `gorm:"default:false" json:"is_finalized"`
	FinalizedAt *time.Time `json:"finalized_at"`

	Transactions []CashRegisterTransaction `gorm:"foreignKey:ClosingID" json:"transactions,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *CashRegisterClosing) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type CashRegisterTransaction struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	ClosingID uuid.UUID `gorm:"type:uuid;index;not null" json:"closing_id"`

	AppointmentID *uuid.UUID `gorm:"type:uuid" json:"appointment_id"`

	Amount        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	PaymentMethod string          `gorm:"size:30;not null" json:"payment_method"`
	Notes         string          `gorm:"size:255" json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t *CashRegisterTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

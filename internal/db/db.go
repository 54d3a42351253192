package db

import (
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/cliniflow/clinic-manager/internal/config"
	"github.com/cliniflow/clinic-manager/internal/models"
)

func NewDB(cfg *config.Config) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt:    true,
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get sql.DB: %v", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := Migrate(db); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	return db
}

// Migrate runs AutoMigrate plus the constraints AutoMigrate cannot express.
// Shared with the sqlite-backed tests so both engines carry the same rules.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Profile{},
		&models.Procedure{},
		&models.Patient{},
		&models.Appointment{},
		&models.CashRegisterClosing{},
		&models.CashRegisterTransaction{},
		&models.AuditLog{},
	); err != nil {
		return err
	}

	// One non-cancelled appointment per slot. Partial so a cancelled
	// appointment never blocks rebooking the same date/time.
	return db.Exec(`
        CREATE UNIQUE INDEX IF NOT EXISTS idx_appointments_active_slot
        ON appointments (professional_id, appointment_date, appointment_time)
        WHERE status <> 'cancelled'
    `).Error
}

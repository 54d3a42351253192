package appointment

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cliniflow/clinic-manager/internal/audit"
	dbpkg "github.com/cliniflow/clinic-manager/internal/db"
	"github.com/cliniflow/clinic-manager/internal/httperr"
	infraRepo "github.com/cliniflow/clinic-manager/internal/infra/repository"
	"github.com/cliniflow/clinic-manager/internal/models"
	"github.com/cliniflow/clinic-manager/internal/policy"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := dbpkg.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return db
}

func seedProfile(t *testing.T, db *gorm.DB, role string) models.Profile {
	t.Helper()

	p := models.Profile{
		Email:        uuid.NewString() + "@clinic.test",
		FullName:     "Professional",
		PasswordHash: "x",
		Role:         role,
		IsActive:     true,
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	return p
}

func seedPatient(t *testing.T, db *gorm.DB, professionalID uuid.UUID) models.Patient {
	t.Helper()

	pt := models.Patient{
		ProfessionalID: professionalID,
		FullName:       "Patient",
		Phone:          "11999990000",
	}
	if err := db.Create(&pt).Error; err != nil {
		t.Fatalf("seed patient: %v", err)
	}
	return pt
}

func seedProcedure(t *testing.T, db *gorm.DB, active bool) models.Procedure {
	t.Helper()

	proc := models.Procedure{
		Name:            "Evaluation",
		DurationMinutes: 30,
		DefaultPrice:    decimal.RequireFromString("120.00"),
		IsActive:        active,
	}
	if err := db.Create(&proc).Error; err != nil {
		t.Fatalf("seed procedure: %v", err)
	}
	return proc
}

func newCreateUC(db *gorm.DB) *CreateAppointment {
	repo := infraRepo.NewAppointmentGormRepository(db)
	dispatcher := audit.NewDispatcher(audit.New(db))
	return NewCreateAppointment(repo, dispatcher)
}

func identFor(p models.Profile) policy.Identity {
	return policy.Identity{ProfileID: p.ID, Role: p.Role}
}

func TestCreateAppointment_SlotConflictPerProfessional(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	profA := seedProfile(t, db, models.RoleUser)
	profB := seedProfile(t, db, models.RoleUser)
	patientX := seedPatient(t, db, profA.ID)
	patientZ := seedPatient(t, db, profA.ID)
	patientB := seedPatient(t, db, profB.ID)
	proc := seedProcedure(t, db, true)

	uc := newCreateUC(db)

	// professional A books patient X
	if _, err := uc.Execute(ctx, identFor(profA), CreateAppointmentInput{
		PatientID:   patientX.ID,
		ProcedureID: proc.ID,
		Date:        "2024-01-10",
		Time:        "09:00",
	}); err != nil {
		t.Fatalf("first booking: %v", err)
	}

	// professional A tries patient Z at the same slot
	_, err := uc.Execute(ctx, identFor(profA), CreateAppointmentInput{
		PatientID:   patientZ.ID,
		ProcedureID: proc.ID,
		Date:        "2024-01-10",
		Time:        "09:00",
	})
	if !httperr.IsBusiness(err, httperr.CodeSlotConflict) {
		t.Fatalf("expected slot_conflict, got %v", err)
	}

	// professional B books the same date/time: the conflict rule is
	// scoped per professional, not global
	if _, err := uc.Execute(ctx, identFor(profB), CreateAppointmentInput{
		PatientID:   patientB.ID,
		ProcedureID: proc.ID,
		Date:        "2024-01-10",
		Time:        "09:00",
	}); err != nil {
		t.Fatalf("other professional same slot: %v", err)
	}
}

func TestCreateAppointment_CancelledSlotIsReusable(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	prof := seedProfile(t, db, models.RoleUser)
	patient := seedPatient(t, db, prof.ID)
	proc := seedProcedure(t, db, true)

	repo := infraRepo.NewAppointmentGormRepository(db)
	dispatcher := audit.NewDispatcher(audit.New(db))
	createUC := NewCreateAppointment(repo, dispatcher)
	cancelUC := NewCancelAppointment(repo, dispatcher)

	ap, err := createUC.Execute(ctx, identFor(prof), CreateAppointmentInput{
		PatientID:   patient.ID,
		ProcedureID: proc.ID,
		Date:        "2024-01-10",
		Time:        "10:00",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := cancelUC.Execute(ctx, identFor(prof), ap.ID, "no show"); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	// the cancelled row must not block rebooking the slot
	if _, err := createUC.Execute(ctx, identFor(prof), CreateAppointmentInput{
		PatientID:   patient.ID,
		ProcedureID: proc.ID,
		Date:        "2024-01-10",
		Time:        "10:00",
	}); err != nil {
		t.Fatalf("rebooking cancelled slot: %v", err)
	}
}

func TestCreateAppointment_Validation(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	prof := seedProfile(t, db, models.RoleUser)
	other := seedProfile(t, db, models.RoleUser)
	patient := seedPatient(t, db, prof.ID)
	activeProc := seedProcedure(t, db, true)
	inactiveProc := seedProcedure(t, db, false)

	uc := newCreateUC(db)

	_, err := uc.Execute(ctx, identFor(prof), CreateAppointmentInput{
		PatientID:   patient.ID,
		ProcedureID: activeProc.ID,
		Date:        "10/01/2024",
		Time:        "09:00",
	})
	if !httperr.IsBusiness(err, "invalid_date_or_time") {
		t.Fatalf("expected invalid_date_or_time, got %v", err)
	}

	_, err = uc.Execute(ctx, identFor(prof), CreateAppointmentInput{
		PatientID:   patient.ID,
		ProcedureID: inactiveProc.ID,
		Date:        "2024-01-10",
		Time:        "09:00",
	})
	if !httperr.IsBusiness(err, "procedure_inactive") {
		t.Fatalf("expected procedure_inactive, got %v", err)
	}

	// a professional cannot book another professional's patient
	_, err = uc.Execute(ctx, identFor(other), CreateAppointmentInput{
		PatientID:   patient.ID,
		ProcedureID: activeProc.ID,
		Date:        "2024-01-10",
		Time:        "09:00",
	})
	if !httperr.IsBusiness(err, "patient_not_found") {
		t.Fatalf("expected patient_not_found, got %v", err)
	}

	// only super_admin may book on behalf of someone else
	_, err = uc.Execute(ctx, identFor(other), CreateAppointmentInput{
		ProfessionalID: prof.ID,
		PatientID:      patient.ID,
		ProcedureID:    activeProc.ID,
		Date:           "2024-01-10",
		Time:           "09:00",
	})
	if !httperr.IsBusiness(err, "invalid_professional") {
		t.Fatalf("expected invalid_professional, got %v", err)
	}
}

func TestCreateAppointment_ConcurrentSameSlot(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	prof := seedProfile(t, db, models.RoleUser)
	patient := seedPatient(t, db, prof.ID)
	proc := seedProcedure(t, db, true)

	uc := newCreateUC(db)

	var wg sync.WaitGroup
	errs := make([]error, 2)

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.Execute(ctx, identFor(prof), CreateAppointmentInput{
				PatientID:   patient.ID,
				ProcedureID: proc.ID,
				Date:        "2024-01-11",
				Time:        "14:00",
			})
		}(i)
	}
	wg.Wait()

	var successes, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case httperr.IsBusiness(err, httperr.CodeSlotConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if successes != 1 || conflicts != 1 {
		t.Fatalf("expected exactly one success and one conflict, got %d/%d",
			successes, conflicts)
	}

	var count int64
	db.Model(&models.Appointment{}).
		Where("professional_id = ? AND appointment_date = ? AND appointment_time = ?",
			prof.ID, "2024-01-11", "14:00").
		Count(&count)
	if count != 1 {
		t.Fatalf("expected a single stored appointment, got %d", count)
	}
}

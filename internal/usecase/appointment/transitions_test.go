package appointment

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cliniflow/clinic-manager/internal/audit"
	domain "github.com/cliniflow/clinic-manager/internal/domain/appointment"
	"github.com/cliniflow/clinic-manager/internal/httperr"
	infraRepo "github.com/cliniflow/clinic-manager/internal/infra/repository"
	"github.com/cliniflow/clinic-manager/internal/models"
)

type apptStack struct {
	db       *gorm.DB
	create   *CreateAppointment
	confirm  *ConfirmAppointment
	complete *CompleteAppointment
	cancel   *CancelAppointment
	byDate   *ListAppointmentsByDate
	byMonth  *ListAppointmentsByMonth
}

func newApptStack(t *testing.T) *apptStack {
	t.Helper()

	db := newTestDB(t)
	repo := infraRepo.NewAppointmentGormRepository(db)
	dispatcher := audit.NewDispatcher(audit.New(db))

	return &apptStack{
		db:       db,
		create:   NewCreateAppointment(repo, dispatcher),
		confirm:  NewConfirmAppointment(repo, dispatcher),
		complete: NewCompleteAppointment(repo, dispatcher),
		cancel:   NewCancelAppointment(repo, dispatcher),
		byDate:   NewListAppointmentsByDate(repo),
		byMonth:  NewListAppointmentsByMonth(repo),
	}
}

func (st *apptStack) book(
	t *testing.T,
	prof models.Profile,
	patientID, procID uuid.UUID,
	date, hour string,
) *models.Appointment {
	t.Helper()

	ap, err := st.create.Execute(context.Background(), identFor(prof), CreateAppointmentInput{
		PatientID:   patientID,
		ProcedureID: procID,
		Date:        date,
		Time:        hour,
	})
	if err != nil {
		t.Fatalf("book %s %s: %v", date, hour, err)
	}
	return ap
}

func TestAppointmentLifecycleThroughUseCases(t *testing.T) {
	st := newApptStack(t)
	ctx := context.Background()

	prof := seedProfile(t, st.db, models.RoleUser)
	patient := seedPatient(t, st.db, prof.ID)
	proc := seedProcedure(t, st.db, true)
	ident := identFor(prof)

	ap := st.book(t, prof, patient.ID, proc.ID, "2024-02-01", "09:00")

	// completing before confirming is rejected
	_, err := st.complete.Execute(ctx, ident, ap.ID)
	if !httperr.IsBusiness(err, httperr.CodeInvalidState) {
		t.Fatalf("complete from scheduled: expected invalid_state, got %v", err)
	}

	ap, err = st.confirm.Execute(ctx, ident, ap.ID)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if ap.Status != string(domain.StatusConfirmed) || ap.ConfirmedAt == nil {
		t.Fatalf("expected confirmed with timestamp, got %q", ap.Status)
	}

	// confirming twice is rejected
	if _, err := st.confirm.Execute(ctx, ident, ap.ID); !httperr.IsBusiness(err, httperr.CodeInvalidState) {
		t.Fatalf("second confirm: expected invalid_state, got %v", err)
	}

	ap, err = st.complete.Execute(ctx, ident, ap.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if ap.Status != string(domain.StatusCompleted) || ap.CompletedAt == nil {
		t.Fatalf("expected completed with timestamp, got %q", ap.Status)
	}

	// completed is terminal
	if _, err := st.cancel.Execute(ctx, ident, ap.ID, "too late"); !httperr.IsBusiness(err, httperr.CodeInvalidState) {
		t.Fatalf("cancel after complete: expected invalid_state, got %v", err)
	}

	// the stored row reflects the final state
	var stored models.Appointment
	if err := st.db.First(&stored, "id = ?", ap.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.Status != string(domain.StatusCompleted) {
		t.Fatalf("stored status %q, want completed", stored.Status)
	}
}

func TestAppointmentOwnershipScope(t *testing.T) {
	st := newApptStack(t)
	ctx := context.Background()

	owner := seedProfile(t, st.db, models.RoleUser)
	intruder := seedProfile(t, st.db, models.RoleUser)
	admin := seedProfile(t, st.db, models.RoleSuperAdmin)
	patient := seedPatient(t, st.db, owner.ID)
	proc := seedProcedure(t, st.db, true)

	ap := st.book(t, owner, patient.ID, proc.ID, "2024-02-01", "09:00")

	// another professional cannot act on it
	_, err := st.confirm.Execute(ctx, identFor(intruder), ap.ID)
	if !httperr.IsBusiness(err, "appointment_not_found") {
		t.Fatalf("expected appointment_not_found for intruder, got %v", err)
	}

	// super_admin can
	if _, err := st.confirm.Execute(ctx, identFor(admin), ap.ID); err != nil {
		t.Fatalf("super_admin confirm: %v", err)
	}
}

func TestListAppointments(t *testing.T) {
	st := newApptStack(t)
	ctx := context.Background()

	profA := seedProfile(t, st.db, models.RoleUser)
	profB := seedProfile(t, st.db, models.RoleUser)
	patientA := seedPatient(t, st.db, profA.ID)
	patientB := seedPatient(t, st.db, profB.ID)
	proc := seedProcedure(t, st.db, true)

	st.book(t, profA, patientA.ID, proc.ID, "2024-03-05", "09:00")
	st.book(t, profA, patientA.ID, proc.ID, "2024-03-05", "10:00")
	st.book(t, profA, patientA.ID, proc.ID, "2024-03-20", "09:00")
	st.book(t, profA, patientA.ID, proc.ID, "2024-04-01", "09:00")
	st.book(t, profB, patientB.ID, proc.ID, "2024-03-05", "09:00")

	day, err := st.byDate.Execute(ctx, identFor(profA), "2024-03-05")
	if err != nil {
		t.Fatalf("by date: %v", err)
	}
	if len(day) != 2 {
		t.Fatalf("expected 2 appointments on the day, got %d", len(day))
	}
	// ordered by time
	if day[0].AppointmentTime != "09:00" || day[1].AppointmentTime != "10:00" {
		t.Fatalf("expected time-ordered listing, got %s then %s",
			day[0].AppointmentTime, day[1].AppointmentTime)
	}

	month, err := st.byMonth.Execute(ctx, identFor(profA), 2024, 3)
	if err != nil {
		t.Fatalf("by month: %v", err)
	}
	if len(month) != 3 {
		t.Fatalf("expected 3 appointments in March, got %d", len(month))
	}

	if _, err := st.byDate.Execute(ctx, identFor(profA), "03/05/2024"); !httperr.IsBusiness(err, "invalid_date") {
		t.Fatalf("expected invalid_date, got %v", err)
	}
	if _, err := st.byMonth.Execute(ctx, identFor(profA), 2024, 13); !httperr.IsBusiness(err, "invalid_year_or_month") {
		t.Fatalf("expected invalid_year_or_month, got %v", err)
	}
}

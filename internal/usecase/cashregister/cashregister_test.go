package cashregister

import (
	"context"
	"errors"
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

type testStack struct {
	db       *gorm.DB
	open     *OpenClosing
	add      *AddTransaction
	remove   *RemoveTransaction
	finalize *FinalizeClosing
	get      *GetClosing
}

func newStack(t *testing.T) *testStack {
	t.Helper()

	db := newTestDB(t)
	repo := infraRepo.NewCashRegisterGormRepository(db)
	dispatcher := audit.NewDispatcher(audit.New(db))

	return &testStack{
		db:       db,
		open:     NewOpenClosing(repo, dispatcher),
		add:      NewAddTransaction(repo, dispatcher),
		remove:   NewRemoveTransaction(repo, dispatcher),
		finalize: NewFinalizeClosing(repo, dispatcher),
		get:      NewGetClosing(repo),
	}
}

func identFor(p models.Profile) policy.Identity {
	return policy.Identity{ProfileID: p.ID, Role: p.Role}
}

func TestOpenClosing_DuplicateDate(t *testing.T) {
	st := newStack(t)
	ctx := context.Background()

	profA := seedProfile(t, st.db, models.RoleUser)
	profB := seedProfile(t, st.db, models.RoleUser)

	if _, err := st.open.Execute(ctx, identFor(profA), OpenClosingInput{
		Date: "2024-01-10",
	}); err != nil {
		t.Fatalf("first closing: %v", err)
	}

	_, err := st.open.Execute(ctx, identFor(profA), OpenClosingInput{
		Date: "2024-01-10",
	})
	if !httperr.IsBusiness(err, httperr.CodeDuplicateClosing) {
		t.Fatalf("expected duplicate_closing, got %v", err)
	}

	// another professional may close the same day
	if _, err := st.open.Execute(ctx, identFor(profB), OpenClosingInput{
		Date: "2024-01-10",
	}); err != nil {
		t.Fatalf("other professional same day: %v", err)
	}

	// and the same professional may close another day
	if _, err := st.open.Execute(ctx, identFor(profA), OpenClosingInput{
		Date: "2024-01-11",
	}); err != nil {
		t.Fatalf("same professional next day: %v", err)
	}
}

func TestAddRemoveTransaction_TotalIsExactSum(t *testing.T) {
	st := newStack(t)
	ctx := context.Background()

	prof := seedProfile(t, st.db, models.RoleUser)
	ident := identFor(prof)

	cl, err := st.open.Execute(ctx, ident, OpenClosingInput{Date: "2024-01-10"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !cl.TotalAmount.Equal(decimal.Zero) {
		t.Fatalf("new closing must start at zero, got %s", cl.TotalAmount)
	}

	amounts := []string{"0.10", "0.20", "150.45"}
	var txIDs []uuid.UUID
	for _, a := range amounts {
		cl, err = st.add.Execute(ctx, ident, AddTransactionInput{
			ClosingID:     cl.ID,
			Amount:        decimal.RequireFromString(a),
			PaymentMethod: "cash",
		})
		if err != nil {
			t.Fatalf("add %s: %v", a, err)
		}
	}

	want := decimal.RequireFromString("150.75")
	if !cl.TotalAmount.Equal(want) {
		t.Fatalf("expected total %s, got %s", want, cl.TotalAmount)
	}

	// reload to check the stored total, not just the returned one
	stored, err := st.get.Execute(ctx, ident, cl.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !stored.TotalAmount.Equal(want) {
		t.Fatalf("stored total %s, want %s", stored.TotalAmount, want)
	}
	if len(stored.Transactions) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(stored.Transactions))
	}
	for _, tx := range stored.Transactions {
		txIDs = append(txIDs, tx.ID)
	}

	// removing the 0.10 entry recomputes from what remains
	var removeID uuid.UUID
	for _, tx := range stored.Transactions {
		if tx.Amount.Equal(decimal.RequireFromString("0.10")) {
			removeID = tx.ID
		}
	}
	if removeID == uuid.Nil {
		t.Fatalf("0.10 transaction not found among %v", txIDs)
	}

	cl, err = st.remove.Execute(ctx, ident, cl.ID, removeID)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	want = decimal.RequireFromString("150.65")
	if !cl.TotalAmount.Equal(want) {
		t.Fatalf("expected total %s after removal, got %s", want, cl.TotalAmount)
	}
}

func TestAddTransaction_Validation(t *testing.T) {
	st := newStack(t)
	ctx := context.Background()

	prof := seedProfile(t, st.db, models.RoleUser)
	ident := identFor(prof)

	cl, err := st.open.Execute(ctx, ident, OpenClosingInput{Date: "2024-01-10"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	_, err = st.add.Execute(ctx, ident, AddTransactionInput{
		ClosingID:     cl.ID,
		Amount:        decimal.RequireFromString("-5.00"),
		PaymentMethod: "cash",
	})
	if !httperr.IsBusiness(err, "invalid_amount") {
		t.Fatalf("expected invalid_amount, got %v", err)
	}

	_, err = st.add.Execute(ctx, ident, AddTransactionInput{
		ClosingID: cl.ID,
		Amount:    decimal.RequireFromString("10.00"),
	})
	if !httperr.IsBusiness(err, "missing_payment_method") {
		t.Fatalf("expected missing_payment_method, got %v", err)
	}
}

func TestFinalizedClosingRefusesMutation(t *testing.T) {
	st := newStack(t)
	ctx := context.Background()

	prof := seedProfile(t, st.db, models.RoleUser)
	ident := identFor(prof)

	cl, err := st.open.Execute(ctx, ident, OpenClosingInput{Date: "2024-01-10"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	cl, err = st.add.Execute(ctx, ident, AddTransactionInput{
		ClosingID:     cl.ID,
		Amount:        decimal.RequireFromString("80.00"),
		PaymentMethod: "pix",
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	txID := findSingleTransactionID(t, st, ctx, ident, cl.ID)

	cl, err = st.finalize.Execute(ctx, ident, cl.ID)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if !cl.IsFinalized || cl.FinalizedAt == nil {
		t.Fatalf("expected finalized closing with timestamp")
	}

	_, err = st.add.Execute(ctx, ident, AddTransactionInput{
		ClosingID:     cl.ID,
		Amount:        decimal.RequireFromString("10.00"),
		PaymentMethod: "cash",
	})
	if !httperr.IsBusiness(err, httperr.CodeClosingFinalized) {
		t.Fatalf("add after finalize: expected closing_finalized, got %v", err)
	}

	_, err = st.remove.Execute(ctx, ident, cl.ID, txID)
	if !httperr.IsBusiness(err, httperr.CodeClosingFinalized) {
		t.Fatalf("remove after finalize: expected closing_finalized, got %v", err)
	}

	_, err = st.finalize.Execute(ctx, ident, cl.ID)
	if !httperr.IsBusiness(err, httperr.CodeClosingFinalized) {
		t.Fatalf("second finalize: expected closing_finalized, got %v", err)
	}

	// failed mutations must not touch the stored total
	stored, err := st.get.Execute(ctx, ident, cl.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	want := decimal.RequireFromString("80.00")
	if !stored.TotalAmount.Equal(want) {
		t.Fatalf("total changed after rejected mutations: %s", stored.TotalAmount)
	}
	if len(stored.Transactions) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(stored.Transactions))
	}
}

func findSingleTransactionID(
	t *testing.T,
	st *testStack,
	ctx context.Context,
	ident policy.Identity,
	closingID uuid.UUID,
) uuid.UUID {
	t.Helper()

	cl, err := st.get.Execute(ctx, ident, closingID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(cl.Transactions) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(cl.Transactions))
	}
	return cl.Transactions[0].ID
}

func TestRemoveTransaction_UnknownID(t *testing.T) {
	st := newStack(t)
	ctx := context.Background()

	prof := seedProfile(t, st.db, models.RoleUser)
	ident := identFor(prof)

	cl, err := st.open.Execute(ctx, ident, OpenClosingInput{Date: "2024-01-10"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	_, err = st.remove.Execute(ctx, ident, cl.ID, uuid.New())
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record not found, got %v", err)
	}
}

func TestClosingOwnershipScope(t *testing.T) {
	st := newStack(t)
	ctx := context.Background()

	owner := seedProfile(t, st.db, models.RoleUser)
	intruder := seedProfile(t, st.db, models.RoleUser)
	admin := seedProfile(t, st.db, models.RoleSuperAdmin)

	cl, err := st.open.Execute(ctx, identFor(owner), OpenClosingInput{
		Date: "2024-01-10",
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	// another professional cannot see or touch it
	if _, err := st.get.Execute(ctx, identFor(intruder), cl.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not found for intruder, got %v", err)
	}
	_, err = st.add.Execute(ctx, identFor(intruder), AddTransactionInput{
		ClosingID:     cl.ID,
		Amount:        decimal.RequireFromString("1.00"),
		PaymentMethod: "cash",
	})
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not found for intruder add, got %v", err)
	}

	// super_admin sees everything
	if _, err := st.get.Execute(ctx, identFor(admin), cl.ID); err != nil {
		t.Fatalf("super_admin get: %v", err)
	}
}

func TestOpenClosing_ConcurrentSameDay(t *testing.T) {
	st := newStack(t)
	ctx := context.Background()

	prof := seedProfile(t, st.db, models.RoleUser)
	ident := identFor(prof)

	var wg sync.WaitGroup
	errs := make([]error, 2)

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = st.open.Execute(ctx, ident, OpenClosingInput{
				Date: "2024-01-12",
			})
		}(i)
	}
	wg.Wait()

	var successes, duplicates int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case httperr.IsBusiness(err, httperr.CodeDuplicateClosing):
			duplicates++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 || duplicates != 1 {
		t.Fatalf("expected exactly one success and one duplicate, got %d/%d",
			successes, duplicates)
	}
}

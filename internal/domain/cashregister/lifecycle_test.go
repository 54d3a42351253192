package cashregister

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cliniflow/clinic-manager/internal/httperr"
	"github.com/cliniflow/clinic-manager/internal/models"
)

func TestSumTransactionsExactDecimal(t *testing.T) {
	txs := []models.CashRegisterTransaction{
		{Amount: decimal.RequireFromString("0.10")},
		{Amount: decimal.RequireFromString("0.20")},
		{Amount: decimal.RequireFromString("150.45")},
	}

	total := SumTransactions(txs)

	want := decimal.RequireFromString("150.75")
	if !total.Equal(want) {
		t.Fatalf("expected %s, got %s", want, total)
	}
}

func TestSumTransactionsEmpty(t *testing.T) {
	total := SumTransactions(nil)
	if !total.Equal(decimal.Zero) {
		t.Fatalf("expected zero, got %s", total)
	}
}

func TestFinalizeIsOneDirectional(t *testing.T) {
	cl := &models.CashRegisterClosing{}
	now := time.Date(2024, 1, 10, 18, 0, 0, 0, time.UTC)

	if err := Finalize(cl, now); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if !cl.IsFinalized || cl.FinalizedAt == nil || !cl.FinalizedAt.Equal(now) {
		t.Fatalf("expected finalized with timestamp")
	}

	err := Finalize(cl, now.Add(time.Minute))
	if !httperr.IsBusiness(err, httperr.CodeClosingFinalized) {
		t.Fatalf("expected closing_finalized, got %v", err)
	}
}

func TestAssertOpen(t *testing.T) {
	open := &models.CashRegisterClosing{IsFinalized: false}
	if err := AssertOpen(open); err != nil {
		t.Fatalf("open closing must accept mutation: %v", err)
	}

	frozen := &models.CashRegisterClosing{IsFinalized: true}
	err := AssertOpen(frozen)
	if !httperr.IsBusiness(err, httperr.CodeClosingFinalized) {
		t.Fatalf("expected closing_finalized, got %v", err)
	}
}

package cashregister

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cliniflow/clinic-manager/internal/httperr"
	"github.com/cliniflow/clinic-manager/internal/models"
)

// A closing is open until finalized; finalization is one-directional.

// AssertOpen guards every transaction mutation.
func AssertOpen(cl *models.CashRegisterClosing) error {
	if cl.IsFinalized {
		return httperr.ErrBusiness(httperr.CodeClosingFinalized)
	}
	return nil
}

// Finalize freezes the closing. Finalizing twice is refused.
func Finalize(cl *models.CashRegisterClosing, now time.Time) error {
	if err := AssertOpen(cl); err != nil {
		return err
	}

	cl.IsFinalized = true
	cl.FinalizedAt = &now
	return nil
}

// SumTransactions is the authoritative total: the exact decimal sum of the
// full transaction set, never an incremental add.
func SumTransactions(txs []models.CashRegisterTransaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txs {
		total = total.Add(t.Amount)
	}
	return total.Round(2)
}

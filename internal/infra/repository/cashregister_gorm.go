package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domain "github.com/cliniflow/clinic-manager/internal/domain/cashregister"
	"github.com/cliniflow/clinic-manager/internal/httperr"
	"github.com/cliniflow/clinic-manager/internal/models"
	"github.com/cliniflow/clinic-manager/internal/policy"
)

type CashRegisterGormRepository struct {
	db *gorm.DB
}

func NewCashRegisterGormRepository(db *gorm.DB) *CashRegisterGormRepository {
	return &CashRegisterGormRepository{db: db}
}

// --------------------------------------------------
// Closing
// --------------------------------------------------

func (r *CashRegisterGormRepository) CreateClosing(
	ctx context.Context,
	cl *models.CashRegisterClosing,
) error {

	err := r.db.WithContext(ctx).Create(cl).Error

	// The (professional, date) unique index decides the winner between
	// concurrent opens.
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return httperr.ErrBusiness(httperr.CodeDuplicateClosing)
	}

	return err
}

func (r *CashRegisterGormRepository) GetClosing(
	ctx context.Context,
	ident policy.Identity,
	id uuid.UUID,
) (*models.CashRegisterClosing, error) {

	var cl models.CashRegisterClosing
	if err := r.db.WithContext(ctx).
		Preload("Transactions").
		Scopes(policy.OwnerScope(ident, "professional_id")).
		Where("id = ?", id).
		First(&cl).Error; err != nil {
		return nil, err
	}

	return &cl, nil
}

func (r *CashRegisterGormRepository) GetClosingForDate(
	ctx context.Context,
	ident policy.Identity,
	date string,
) (*models.CashRegisterClosing, error) {

	var cl models.CashRegisterClosing
	if err := r.db.WithContext(ctx).
		Preload("Transactions").
		Scopes(policy.OwnerScope(ident, "professional_id")).
		Where("closing_date = ?", date).
		First(&cl).Error; err != nil {
		return nil, err
	}

	return &cl, nil
}

func (r *CashRegisterGormRepository) ListClosings(
	ctx context.Context,
	ident policy.Identity,
	from string,
	to string,
) ([]models.CashRegisterClosing, error) {

	q := r.db.WithContext(ctx).
		Scopes(policy.OwnerScope(ident, "professional_id"))

	if from != "" {
		q = q.Where("closing_date >= ?", from)
	}
	if to != "" {
		q = q.Where("closing_date <= ?", to)
	}

	var closings []models.CashRegisterClosing
	if err := q.
		Order("closing_date DESC").
		Find(&closings).Error; err != nil {
		return nil, err
	}

	return closings, nil
}

// --------------------------------------------------
// Transactions (mutation + authoritative recompute)
// --------------------------------------------------

// recomputeTotal reloads the full transaction set and writes the exact sum
// back to the closing. Must run inside tx with the closing row locked.
func recomputeTotal(
	tx *gorm.DB,
	cl *models.CashRegisterClosing,
) error {

	var txs []models.CashRegisterTransaction
	if err := tx.
		Where("closing_id = ?", cl.ID).
		Order("created_at ASC").
		Find(&txs).Error; err != nil {
		return err
	}

	cl.TotalAmount = domain.SumTransactions(txs)
	cl.Transactions = txs

	return tx.Model(&models.CashRegisterClosing{}).
		Where("id = ?", cl.ID).
		Update("total_amount", cl.TotalAmount).Error
}

func (r *CashRegisterGormRepository) lockClosing(
	tx *gorm.DB,
	ident policy.Identity,
	closingID uuid.UUID,
) (*models.CashRegisterClosing, error) {

	var cl models.CashRegisterClosing
	if err := lockForUpdate(tx).
		Scopes(policy.OwnerScope(ident, "professional_id")).
		Where("id = ?", closingID).
		First(&cl).Error; err != nil {
		return nil, err
	}

	return &cl, nil
}

func (r *CashRegisterGormRepository) AddTransaction(
	ctx context.Context,
	ident policy.Identity,
	closingID uuid.UUID,
	transaction *models.CashRegisterTransaction,
) (*models.CashRegisterClosing, error) {

	var cl *models.CashRegisterClosing

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := r.lockClosing(tx, ident, closingID)
		if err != nil {
			return err
		}

		if err := domain.AssertOpen(locked); err != nil {
			return err
		}

		transaction.ClosingID = locked.ID
		if err := tx.Create(transaction).Error; err != nil {
			return err
		}

		if err := recomputeTotal(tx, locked); err != nil {
			return err
		}

		cl = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	return cl, nil
}

func (r *CashRegisterGormRepository) RemoveTransaction(
	ctx context.Context,
	ident policy.Identity,
	closingID uuid.UUID,
	transactionID uuid.UUID,
) (*models.CashRegisterClosing, error) {

	var cl *models.CashRegisterClosing

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := r.lockClosing(tx, ident, closingID)
		if err != nil {
			return err
		}

		if err := domain.AssertOpen(locked); err != nil {
			return err
		}

		res := tx.
			Where("id = ? AND closing_id = ?", transactionID, locked.ID).
			Delete(&models.CashRegisterTransaction{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := recomputeTotal(tx, locked); err != nil {
			return err
		}

		cl = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	return cl, nil
}

func (r *CashRegisterGormRepository) FinalizeClosing(
	ctx context.Context,
	ident policy.Identity,
	closingID uuid.UUID,
	now time.Time,
) (*models.CashRegisterClosing, error) {

	var cl *models.CashRegisterClosing

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := r.lockClosing(tx, ident, closingID)
		if err != nil {
			return err
		}

		if err := domain.Finalize(locked, now); err != nil {
			return err
		}

		if err := tx.Model(&models.CashRegisterClosing{}).
			Where("id = ?", locked.ID).
			Updates(map[string]any{
				"is_finalized": true,
				"finalized_at": locked.FinalizedAt,
			}).Error; err != nil {
			return err
		}

		cl = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	return cl, nil
}

// Compile-time check
var _ domain.Repository = (*CashRegisterGormRepository)(nil)

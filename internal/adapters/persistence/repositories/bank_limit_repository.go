package repositories

import (
	"context"
	"errors"

	"guarantee-tracker/internal/adapters/persistence/models"
	"guarantee-tracker/internal/core/domain"

	"gorm.io/gorm"
)

// bankLimitRepository implements BankLimitRepository interface
type bankLimitRepository struct {
	db *gorm.DB
}

// NewBankLimitRepository creates a new bank limit repository
func NewBankLimitRepository(db *gorm.DB) BankLimitRepository {
	return &bankLimitRepository{db: db}
}

// List lists all configured limits by bank name
func (r *bankLimitRepository) List(ctx context.Context) ([]*models.BankLimit, error) {
	var limits []*models.BankLimit
	err := r.db.WithContext(ctx).Order("bank_name ASC").Find(&limits).Error
	return limits, err
}

// GetByName gets a limit by its exact bank name
func (r *bankLimitRepository) GetByName(ctx context.Context, bankName string) (*models.BankLimit, error) {
	var limit models.BankLimit
	err := r.db.WithContext(ctx).Where("bank_name = ?", bankName).First(&limit).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBankLimitNotFound
		}
		return nil, err
	}
	return &limit, nil
}

// Upsert sets the limit of bankName, creating the row when missing
func (r *bankLimitRepository) Upsert(ctx context.Context, bankName string, amount float64) (*models.BankLimit, error) {
	var limit models.BankLimit
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("bank_name = ?", bankName).First(&limit).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			limit = models.BankLimit{BankName: bankName, LimitAmount: amount}
			return tx.Create(&limit).Error
		case err != nil:
			return err
		}
		limit.LimitAmount = amount
		return tx.Save(&limit).Error
	})
	if err != nil {
		return nil, err
	}
	return &limit, nil
}

// Delete removes a limit by ID
func (r *bankLimitRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.BankLimit{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrBankLimitNotFound
	}
	return nil
}

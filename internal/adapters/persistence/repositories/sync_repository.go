package repositories

import (
	"context"
	"fmt"

	"guarantee-tracker/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// syncBatchSize is the number of rows per INSERT statement
const syncBatchSize = 200

// SyncBatch is one desktop push. A nil slice leaves its table untouched,
// an empty one empties it (users are never removed).
type SyncBatch struct {
	Guarantees []*models.Guarantee
	Users      []*models.User
	BankLimits []*models.BankLimit
}

// SyncCounts reports what a sync wrote
type SyncCounts struct {
	Guarantees   int `json:"guarantees"`
	UsersAdded   int `json:"users_added"`
	UsersSkipped int `json:"users_skipped"`
	BankLimits   int `json:"bank_limits"`
}

// syncRepository implements SyncRepository interface
type syncRepository struct {
	db *gorm.DB
}

// NewSyncRepository creates a new sync repository
func NewSyncRepository(db *gorm.DB) SyncRepository {
	return &syncRepository{db: db}
}

// Apply writes the batch in one transaction. Any failure rolls back every table.
func (r *syncRepository) Apply(ctx context.Context, batch *SyncBatch) (*SyncCounts, error) {
	counts := &SyncCounts{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if batch.Guarantees != nil {
			if err := replaceGuarantees(tx, batch.Guarantees); err != nil {
				return fmt.Errorf("guarantees: %w", err)
			}
			counts.Guarantees = len(batch.Guarantees)
		}

		if batch.Users != nil {
			added, err := insertNewUsers(tx, batch.Users)
			if err != nil {
				return fmt.Errorf("users: %w", err)
			}
			counts.UsersAdded = added
			counts.UsersSkipped = len(batch.Users) - added
		}

		if batch.BankLimits != nil {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.BankLimit{}).Error; err != nil {
				return fmt.Errorf("bank_limits: %w", err)
			}
			if len(batch.BankLimits) > 0 {
				if err := tx.CreateInBatches(batch.BankLimits, syncBatchSize).Error; err != nil {
					return fmt.Errorf("bank_limits: %w", err)
				}
			}
			counts.BankLimits = len(batch.BankLimits)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// replaceGuarantees empties the table and inserts rows in column order.
// Rows keep their ids only when every row carries one.
func replaceGuarantees(tx *gorm.DB, rows []*models.Guarantee) error {
	if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Guarantee{}).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	keepIDs := true
	for _, g := range rows {
		if g.ID == 0 {
			keepIDs = false
			break
		}
	}

	columns := models.GuaranteeColumns
	if !keepIDs {
		for _, g := range rows {
			g.ID = 0
		}
		columns = columns[1:]
	}

	if err := tx.Select(columns).CreateInBatches(rows, syncBatchSize).Error; err != nil {
		return translate(err)
	}

	if keepIDs && tx.Dialector.Name() == "postgres" {
		return tx.Exec("SELECT setval(pg_get_serial_sequence('guarantees', 'id'), COALESCE(MAX(id), 1)) FROM guarantees").Error
	}
	return nil
}

// insertNewUsers adds users whose username is not taken yet
func insertNewUsers(tx *gorm.DB, users []*models.User) (int, error) {
	added := 0
	for _, u := range users {
		var count int64
		if err := tx.Model(&models.User{}).Where("username = ?", u.Username).Count(&count).Error; err != nil {
			return added, err
		}
		if count > 0 {
			continue
		}

		if u.Email != nil {
			if err := tx.Model(&models.User{}).Where("email = ?", *u.Email).Count(&count).Error; err != nil {
				return added, err
			}
			if count > 0 {
				u.Email = nil
			}
		}

		if err := tx.Create(u).Error; err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}

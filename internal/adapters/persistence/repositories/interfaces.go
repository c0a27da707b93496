package repositories

import (
	"context"

	"guarantee-tracker/internal/adapters/persistence/models"
	"guarantee-tracker/internal/core/domain"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	ListPending(ctx context.Context) ([]*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	CountByRole(ctx context.Context, role string) (int64, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// GuaranteeFilter narrows a guarantee listing. Empty fields do not filter.
type GuaranteeFilter struct {
	Search     string
	Bank       string
	Department string
	Cash       *bool
}

// GuaranteeRepository defines the guarantee store. A single implementation
// serves every dialect; dialect differences are resolved from the gorm dialector.
type GuaranteeRepository interface {
	Create(ctx context.Context, g *models.Guarantee) error
	GetByID(ctx context.Context, id uint) (*models.Guarantee, error)
	Update(ctx context.Context, g *models.Guarantee) error
	Delete(ctx context.Context, id uint) error
	ExistsByGNo(ctx context.Context, gNo string, excludeID uint) (bool, error)
	List(ctx context.Context, filter GuaranteeFilter) ([]*models.Guarantee, error)
	ListByDepartment(ctx context.Context, department string) ([]*models.Guarantee, error)
	Departments(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int64, error)
	ApplyBulkAction(ctx context.Context, action domain.BulkAction, ids []uint) (int64, error)
	Attachments(ctx context.Context, gNo string) ([]*models.Attachment, error)
}

// BankLimitRepository defines bank limit repository interface
type BankLimitRepository interface {
	List(ctx context.Context) ([]*models.BankLimit, error)
	GetByName(ctx context.Context, bankName string) (*models.BankLimit, error)
	Upsert(ctx context.Context, bankName string, amount float64) (*models.BankLimit, error)
	Delete(ctx context.Context, id uint) error
}

// SyncRepository applies desktop pushes
type SyncRepository interface {
	Apply(ctx context.Context, batch *SyncBatch) (*SyncCounts, error)
}

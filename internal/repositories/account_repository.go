package repositories

import (
	"context"
	"errors"

	"github.com/kavro/tidepool/internal/models"
	"gorm.io/gorm"
)

// ErrNotFound is returned by every repository when no matching row exists.
// Services translate it into the operation's named failure.
var ErrNotFound = errors.New("record not found")

// AccountRepository defines the interface for account data operations.
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	FindByID(ctx context.Context, id uint) (*models.Account, error)
	FindByIDs(ctx context.Context, ids []uint) ([]models.Account, error)
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
}

// PostgresAccountRepository implements AccountRepository for PostgreSQL.
type PostgresAccountRepository struct {
	db *gorm.DB
}

// NewPostgresAccountRepository creates a new PostgresAccountRepository.
func NewPostgresAccountRepository(db *gorm.DB) *PostgresAccountRepository {
	return &PostgresAccountRepository{db: db}
}

func (r *PostgresAccountRepository) Create(ctx context.Context, account *models.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *PostgresAccountRepository) FindByID(ctx context.Context, id uint) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

// FindByIDs fetches accounts for a set of ids in one query. Missing ids are
// simply absent from the result, not an error.
func (r *PostgresAccountRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.Account, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var accounts []models.Account
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *PostgresAccountRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

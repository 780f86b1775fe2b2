package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/kavro/tidepool/internal/models"
	"gorm.io/gorm"
)

// ErrDuplicateEdge is returned when an insert collides with the partial
// unique index on active (follower, following) pairs.
var ErrDuplicateEdge = errors.New("active follow edge already exists")

// FollowRepository defines the interface for follow-edge data operations.
// Every read only considers active (is_deleted=false) edges.
type FollowRepository interface {
	Create(ctx context.Context, edge *models.FollowEdge) error
	SoftDeleteActive(ctx context.Context, followerID, followingID uint) (*models.FollowEdge, error)
	IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error)
	ListFollowers(ctx context.Context, userID uint, skip, limit int) ([]models.FollowEdge, error)
	ListFollowing(ctx context.Context, userID uint, skip, limit int) ([]models.FollowEdge, error)
	CountFollowers(ctx context.Context, userID uint) (int64, error)
	CountFollowing(ctx context.Context, userID uint) (int64, error)
	FollowingIDs(ctx context.Context, userID uint) ([]uint, error)
}

// PostgresFollowRepository implements FollowRepository for PostgreSQL.
type PostgresFollowRepository struct {
	db *gorm.DB
}

// NewPostgresFollowRepository creates a new PostgresFollowRepository.
func NewPostgresFollowRepository(db *gorm.DB) *PostgresFollowRepository {
	return &PostgresFollowRepository{db: db}
}

func (r *PostgresFollowRepository) Create(ctx context.Context, edge *models.FollowEdge) error {
	if err := r.db.WithContext(ctx).Create(edge).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateEdge
		}
		return err
	}
	return nil
}

// SoftDeleteActive marks the unique active edge for the pair as deleted. The
// is_deleted guard in the WHERE clause makes concurrent unfollows safe: the
// loser updates zero rows and gets ErrNotFound.
func (r *PostgresFollowRepository) SoftDeleteActive(ctx context.Context, followerID, followingID uint) (*models.FollowEdge, error) {
	var edge models.FollowEdge
	err := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ? AND is_deleted = ?", followerID, followingID, false).
		First(&edge).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	now := time.Now()
	res := r.db.WithContext(ctx).Model(&models.FollowEdge{}).
		Where("id = ? AND is_deleted = ?", edge.ID, false).
		Updates(map[string]interface{}{"is_deleted": true, "updated_at": now})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	edge.IsDeleted = true
	edge.UpdatedAt = now
	return &edge, nil
}

func (r *PostgresFollowRepository) IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.FollowEdge{}).
		Where("follower_id = ? AND following_id = ? AND is_deleted = ?", followerID, followingID, false).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresFollowRepository) ListFollowers(ctx context.Context, userID uint, skip, limit int) ([]models.FollowEdge, error) {
	var edges []models.FollowEdge
	err := r.db.WithContext(ctx).
		Where("following_id = ? AND is_deleted = ?", userID, false).
		Order("created_at DESC").
		Offset(skip).Limit(limit).
		Find(&edges).Error
	return edges, err
}

func (r *PostgresFollowRepository) ListFollowing(ctx context.Context, userID uint, skip, limit int) ([]models.FollowEdge, error) {
	var edges []models.FollowEdge
	err := r.db.WithContext(ctx).
		Where("follower_id = ? AND is_deleted = ?", userID, false).
		Order("created_at DESC").
		Offset(skip).Limit(limit).
		Find(&edges).Error
	return edges, err
}

func (r *PostgresFollowRepository) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.FollowEdge{}).
		Where("following_id = ? AND is_deleted = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *PostgresFollowRepository) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.FollowEdge{}).
		Where("follower_id = ? AND is_deleted = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *PostgresFollowRepository) FollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.FollowEdge{}).
		Where("follower_id = ? AND is_deleted = ?", userID, false).
		Pluck("following_id", &ids).Error
	return ids, err
}

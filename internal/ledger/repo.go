package ledger

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/secondserve/secondserve-backend/pkg/db/models"
)

// Repository manages persistence for points entries and the user balance.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateEntry(ctx context.Context, entry *models.PointsEntry) error
	AdjustBalance(ctx context.Context, userID uuid.UUID, delta int) (int64, error)
	Balance(ctx context.Context, userID uuid.UUID) (int, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]models.PointsEntry, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateEntry(ctx context.Context, entry *models.PointsEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// AdjustBalance applies the delta in place and reports how many rows moved.
// The predicate refuses any update that would leave the balance negative.
func (r *repository) AdjustBalance(ctx context.Context, userID uuid.UUID, delta int) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND points + ? >= 0", userID, delta).
		Update("points", gorm.Expr("points + ?", delta))
	return result.RowsAffected, result.Error
}

func (r *repository) Balance(ctx context.Context, userID uuid.UUID) (int, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Select("points").
		First(&user, "id = ?", userID).Error; err != nil {
		return 0, err
	}
	return user.Points, nil
}

func (r *repository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]models.PointsEntry, error) {
	var entries []models.PointsEntry
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/secondserve/secondserve-backend/pkg/db/models"
	"github.com/secondserve/secondserve-backend/pkg/enums"
)

// Repository manages persistence for cart lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Upsert(ctx context.Context, item *models.CartItem) error
	Delete(ctx context.Context, userID, listingID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
	PruneInactive(ctx context.Context) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a cart repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Upsert inserts the line or bumps its quantity when one already exists
// for the (user, listing) pair. The conflict clause makes concurrent
// adds merge instead of racing to create duplicate lines.
func (r *repository) Upsert(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).
		Omit("Listing").
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "listing_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity": gorm.Expr("cart_items.quantity + 1"),
			}),
		}).
		Create(item).Error
}

func (r *repository) Delete(ctx context.Context, userID, listingID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND listing_id = ?", userID, listingID).
		Delete(&models.CartItem{}).Error
}

func (r *repository) Clear(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartItem{}).Error
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.db.WithContext(ctx).
		Preload("Listing").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// PruneInactive drops cart lines whose listing left the browsable set,
// so stale carts never resurrect completed or rejected items.
func (r *repository) PruneInactive(ctx context.Context) (int64, error) {
	browsable := r.db.
		Model(&models.Listing{}).
		Select("id").
		Where("status IN ?", []enums.ListingStatus{enums.ListingStatusActive, enums.ListingStatusPendingApproval})
	result := r.db.WithContext(ctx).
		Where("listing_id NOT IN (?)", browsable).
		Delete(&models.CartItem{})
	return result.RowsAffected, result.Error
}

package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"storefront/internal/model"
)

// WishlistRepository defines wishlist persistence operations.
type WishlistRepository interface {
	Create(ctx context.Context, item *model.WishlistItem) error
	Exists(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.WishlistItem, error)
	Delete(ctx context.Context, userID, productID uuid.UUID) error
	DeleteByProducts(ctx context.Context, productIDs ...uuid.UUID) error
}

type wishlistRepository struct {
	db *gorm.DB
}

// NewWishlistRepository creates a new wishlist repository.
func NewWishlistRepository(db *gorm.DB) WishlistRepository {
	return &wishlistRepository{db: db}
}

// Create inserts an entry. A duplicate (user, product) pair fails with
// gorm.ErrDuplicatedKey.
func (r *wishlistRepository) Create(ctx context.Context, item *model.WishlistItem) error {
	return r.db.WithContext(ctx).Omit("Product").Create(item).Error
}

func (r *wishlistRepository) Exists(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.WishlistItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByUser returns a user's entries newest first with products loaded.
func (r *wishlistRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.WishlistItem, error) {
	var items []model.WishlistItem
	if err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Product.Category").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *wishlistRepository) Delete(ctx context.Context, userID, productID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&model.WishlistItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteByProducts removes every user's entries for the given products.
func (r *wishlistRepository) DeleteByProducts(ctx context.Context, productIDs ...uuid.UUID) error {
	if len(productIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("product_id IN ?", productIDs).
		Delete(&model.WishlistItem{}).Error
}

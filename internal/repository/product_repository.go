package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"storefront/internal/model"
)

// ProductRepository defines product persistence operations.
type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	List(ctx context.Context) ([]model.Product, error)
	ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]model.Product, error)
	SearchByName(ctx context.Context, query string) ([]model.Product, error)
	ListIDsByCategory(ctx context.Context, categoryID uuid.UUID) ([]uuid.UUID, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error)
}

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository.
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// Create creates a new product.
func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Omit("Category").Create(product).Error
}

// FindByID finds a product by ID with its category loaded.
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).Preload("Category").
		Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// List returns every product, newest first.
func (r *productRepository) List(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	if err := r.db.WithContext(ctx).Preload("Category").
		Order("created_at desc").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// ListByCategory returns the products of one category.
func (r *productRepository) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	if err := r.db.WithContext(ctx).Preload("Category").
		Where("category_id = ?", categoryID).
		Order("created_at desc").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// SearchByName matches products whose name contains query, ignoring case.
func (r *productRepository) SearchByName(ctx context.Context, query string) ([]model.Product, error) {
	var products []model.Product
	pattern := "%" + strings.ToLower(query) + "%"
	if err := r.db.WithContext(ctx).Preload("Category").
		Where("LOWER(name) LIKE ?", pattern).
		Order("name asc").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// ListIDsByCategory returns the IDs of the products in a category.
func (r *productRepository) ListIDsByCategory(ctx context.Context, categoryID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("category_id = ?", categoryID).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Update applies a sparse column update.
func (r *productRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).Updates(fields).Error
}

// Delete hard deletes a product.
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteByCategory deletes every product of a category and reports how many went.
func (r *productRepository) DeleteByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("category_id = ?", categoryID).Delete(&model.Product{})
	return res.RowsAffected, res.Error
}

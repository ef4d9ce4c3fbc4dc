package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront/internal/model"
)

// AddressRepository defines address persistence operations.
type AddressRepository interface {
	Create(ctx context.Context, address *model.Address) error
	Save(ctx context.Context, address *model.Address) error
	FindByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*model.Address, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Address, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
	ClearDefault(ctx context.Context, userID uuid.UUID) error
	// Transaction methods
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repo AddressRepository) error) error
	LockUser(ctx context.Context, userID uuid.UUID) error
}

type addressRepository struct {
	db *gorm.DB
}

// NewAddressRepository creates a new address repository.
func NewAddressRepository(db *gorm.DB) AddressRepository {
	return &addressRepository{db: db}
}

// Create creates a new address.
func (r *addressRepository) Create(ctx context.Context, address *model.Address) error {
	return r.db.WithContext(ctx).Create(address).Error
}

// Save writes every column of an existing address.
func (r *addressRepository) Save(ctx context.Context, address *model.Address) error {
	return r.db.WithContext(ctx).Save(address).Error
}

// FindByIDAndUser finds an address owned by userID.
func (r *addressRepository) FindByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*model.Address, error) {
	var address model.Address
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&address).Error; err != nil {
		return nil, err
	}
	return &address, nil
}

// ListByUser returns the default address first, then newest first.
func (r *addressRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Address, error) {
	var addresses []model.Address
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default desc").
		Order("created_at desc").
		Find(&addresses).Error; err != nil {
		return nil, err
	}
	return addresses, nil
}

// Delete removes an address owned by userID.
func (r *addressRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.Address{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ClearDefault unsets the default flag on every address of userID.
func (r *addressRepository) ClearDefault(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Address{}).
		Where("user_id = ? AND is_default = ?", userID, true).
		Update("is_default", false).Error
}

// WithTransaction executes a function within a database transaction.
func (r *addressRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo AddressRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &addressRepository{db: tx}
		return fn(ctx, txRepo)
	})
}

// LockUser takes a row lock on the owning user so address writes for one user
// serialize. It must run inside WithTransaction. sqlite ignores the lock clause
// and serializes writers on its own.
func (r *addressRepository) LockUser(ctx context.Context, userID uuid.UUID) error {
	var user model.User
	return r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ?", userID).
		First(&user).Error
}

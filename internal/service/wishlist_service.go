package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "storefront/internal/errors"
	"storefront/internal/model"
	"storefront/internal/repository"
)

// WishlistService manages a user's wishlist.
type WishlistService interface {
	AddToWishlist(ctx context.Context, userID, productID uuid.UUID) (*model.WishlistItem, error)
	RemoveFromWishlist(ctx context.Context, userID, productID uuid.UUID) error
	ListWishlist(ctx context.Context, userID uuid.UUID) ([]model.WishlistItem, error)
}

type wishlistService struct {
	wishlistRepo repository.WishlistRepository
	productRepo  repository.ProductRepository
}

// NewWishlistService creates a new wishlist service.
func NewWishlistService(wishlistRepo repository.WishlistRepository, productRepo repository.ProductRepository) WishlistService {
	return &wishlistService{
		wishlistRepo: wishlistRepo,
		productRepo:  productRepo,
	}
}

// AddToWishlist adds a product once per user.
func (s *wishlistService) AddToWishlist(ctx context.Context, userID, productID uuid.UUID) (*model.WishlistItem, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}

	exists, err := s.wishlistRepo.Exists(ctx, userID, productID)
	if err != nil {
		return nil, fmt.Errorf("check wishlist: %w", err)
	}
	if exists {
		return nil, apperrors.ErrAlreadyExists
	}

	item := &model.WishlistItem{UserID: userID, ProductID: productID}
	if err := s.wishlistRepo.Create(ctx, item); err != nil {
		// the unique index catches a concurrent add
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrAlreadyExists
		}
		return nil, fmt.Errorf("add to wishlist: %w", err)
	}
	item.Product = product
	return item, nil
}

func (s *wishlistService) RemoveFromWishlist(ctx context.Context, userID, productID uuid.UUID) error {
	if err := s.wishlistRepo.Delete(ctx, userID, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.WithMessage(apperrors.ErrNotFound, "product not in wishlist")
		}
		return fmt.Errorf("remove from wishlist: %w", err)
	}
	return nil
}

// ListWishlist returns a user's entries newest first with product details.
func (s *wishlistService) ListWishlist(ctx context.Context, userID uuid.UUID) ([]model.WishlistItem, error) {
	items, err := s.wishlistRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list wishlist: %w", err)
	}
	return items, nil
}

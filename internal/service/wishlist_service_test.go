package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "storefront/internal/errors"
	"storefront/internal/model"
)

func TestWishlistService_AddTwice(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	cat, err := f.catalog.CreateCategory(ctx, "Toys")
	require.NoError(t, err)
	p := f.product(t, cat.ID, "Kite", "3")
	user := &model.User{Name: "u", Email: "wish@shop.io", PasswordHash: "h", Role: model.RoleUser}
	require.NoError(t, f.users.Create(ctx, user))

	item, err := f.wishlist.AddToWishlist(ctx, user.ID, p.ID)
	require.NoError(t, err)
	require.NotNil(t, item.Product)
	assert.Equal(t, "Kite", item.Product.Name)

	_, err = f.wishlist.AddToWishlist(ctx, user.ID, p.ID)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)

	items, err := f.wishlist.ListWishlist(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	require.NoError(t, f.wishlist.RemoveFromWishlist(ctx, user.ID, p.ID))
	assert.ErrorIs(t, f.wishlist.RemoveFromWishlist(ctx, user.ID, p.ID), apperrors.ErrNotFound)
}

func TestWishlistService_UnknownProduct(t *testing.T) {
	f := newCatalogFixture(t)
	_, err := f.wishlist.AddToWishlist(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrProductNotFound)
}

func TestWishlistService_DeletedProductDropsEntry(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	cat, err := f.catalog.CreateCategory(ctx, "Toys")
	require.NoError(t, err)
	p := f.product(t, cat.ID, "Yo-yo", "1")
	userID := uuid.New()

	_, err = f.wishlist.AddToWishlist(ctx, userID, p.ID)
	require.NoError(t, err)
	require.NoError(t, f.catalog.DeleteProduct(ctx, p.ID))

	items, err := f.wishlist.ListWishlist(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

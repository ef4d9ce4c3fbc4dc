package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"

	"storefront/internal/db/dbtest"
	apperrors "storefront/internal/errors"
	"storefront/internal/model"
	"storefront/internal/repository"
)

type catalogFixture struct {
	catalog  CatalogService
	wishlist WishlistService
	users    repository.UserRepository
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	gdb := dbtest.New(t)
	products := repository.NewProductRepository(gdb)
	wishlist := repository.NewWishlistRepository(gdb)
	return &catalogFixture{
		catalog:  NewCatalogService(repository.NewCategoryRepository(gdb), products, wishlist),
		wishlist: NewWishlistService(wishlist, products),
		users:    repository.NewUserRepository(gdb),
	}
}

func (f *catalogFixture) product(t *testing.T, categoryID uuid.UUID, name, stock string) *model.Product {
	t.Helper()
	price := decimal.RequireFromString("10.00")
	p, err := f.catalog.CreateProduct(context.Background(), ProductInput{
		Name: name, Description: name + " description", Price: &price, Stock: stock,
		ImageURL: "http://img/" + name, CategoryID: categoryID,
	})
	require.NoError(t, err)
	return p
}

func TestCatalogService_CategoryProductSearch(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	books, err := f.catalog.CreateCategory(ctx, "Books")
	require.NoError(t, err)

	created := f.product(t, books.ID, "The Go Programming Language", "5")
	require.NotNil(t, created.Category)
	assert.Equal(t, "Books", created.Category.Name)
	assert.True(t, created.InStock())

	results, err := f.catalog.SearchProducts(ctx, "go prog")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, created.ID, results[0].ID)

	byCategory, err := f.catalog.ListProductsByCategory(ctx, books.ID)
	require.NoError(t, err)
	assert.Len(t, byCategory, 1)

	_, err = f.catalog.SearchProducts(ctx, "  ")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCatalogService_CreateProductValidation(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()
	price := decimal.RequireFromString("1")
	negative := decimal.RequireFromString("-1")

	tests := []struct {
		name string
		in   ProductInput
		want error
	}{
		{"missing price", ProductInput{Name: "a", Description: "d", Stock: "1", ImageURL: "u", CategoryID: uuid.New()}, apperrors.ErrValidation},
		{"missing stock", ProductInput{Name: "a", Description: "d", Price: &price, ImageURL: "u", CategoryID: uuid.New()}, apperrors.ErrValidation},
		{"negative price", ProductInput{Name: "a", Description: "d", Price: &negative, Stock: "1", ImageURL: "u", CategoryID: uuid.New()}, apperrors.ErrValidation},
		{"unknown category", ProductInput{Name: "a", Description: "d", Price: &price, Stock: "1", ImageURL: "u", CategoryID: uuid.New()}, apperrors.ErrInvalidCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.catalog.CreateProduct(ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCatalogService_EditProduct(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	cat, err := f.catalog.CreateCategory(ctx, "Home")
	require.NoError(t, err)
	p := f.product(t, cat.ID, "Lamp", "available")

	stock := "0"
	edited, err := f.catalog.EditProduct(ctx, p.ID, ProductUpdate{Stock: &stock})
	require.NoError(t, err)
	assert.False(t, edited.InStock())
	assert.Equal(t, "Lamp", edited.Name)

	missing := uuid.New()
	_, err = f.catalog.EditProduct(ctx, p.ID, ProductUpdate{CategoryID: &missing})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCategory)

	_, err = f.catalog.EditProduct(ctx, uuid.New(), ProductUpdate{Stock: &stock})
	assert.ErrorIs(t, err, apperrors.ErrProductNotFound)

	unchanged, err := f.catalog.EditProduct(ctx, p.ID, ProductUpdate{})
	require.NoError(t, err)
	assert.Equal(t, p.ID, unchanged.ID)
}

func TestCatalogService_DeleteCategoryCascades(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	doomed, err := f.catalog.CreateCategory(ctx, "Doomed")
	require.NoError(t, err)
	kept, err := f.catalog.CreateCategory(ctx, "Kept")
	require.NoError(t, err)

	p1 := f.product(t, doomed.ID, "One", "1")
	f.product(t, doomed.ID, "Two", "2")
	survivor := f.product(t, kept.ID, "Three", "3")

	user := &model.User{Name: "u", Email: "cascade@shop.io", PasswordHash: "h", Role: model.RoleUser}
	require.NoError(t, f.users.Create(ctx, user))
	_, err = f.wishlist.AddToWishlist(ctx, user.ID, p1.ID)
	require.NoError(t, err)

	require.NoError(t, f.catalog.DeleteCategory(ctx, doomed.ID))

	products, err := f.catalog.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, survivor.ID, products[0].ID)

	categories, err := f.catalog.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "Kept", categories[0].Name)

	items, err := f.wishlist.ListWishlist(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, items)

	assert.ErrorIs(t, f.catalog.DeleteCategory(ctx, doomed.ID), apperrors.ErrNotFound)
}

func TestCatalogService_ExportProducts(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	cat, err := f.catalog.CreateCategory(ctx, "Garden")
	require.NoError(t, err)
	f.product(t, cat.ID, "Hose", "in stock")

	var buf bytes.Buffer
	require.NoError(t, f.catalog.ExportProducts(ctx, &buf))

	file, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)
	sheet := file.Sheets[0]
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, "Name", sheet.Rows[0].Cells[1].String())
	assert.Equal(t, "Hose", sheet.Rows[1].Cells[1].String())
	assert.Equal(t, "available", sheet.Rows[1].Cells[4].String())
	assert.Equal(t, "Garden", sheet.Rows[1].Cells[7].String())
}

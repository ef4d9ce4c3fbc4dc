package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"

	"storefront/internal/config"
	"storefront/internal/db/dbtest"
	apperrors "storefront/internal/errors"
	"storefront/internal/model"
)

const catalogJSON = `{
  "categories": [
    {"name": "Books", "products": [
      {"pname": "Dune", "desc": "Sci-fi", "price": "9.99", "stock": 12, "imageUrl": "http://img/dune"},
      {"pname": "Emma", "desc": "Classic", "price": 4.5, "stock": "available", "imageUrl": "http://img/emma"}
    ]},
    {"name": "Toys", "products": [
      {"pname": "Kite", "desc": "Red", "price": "3", "stock": "0", "imageUrl": "http://img/kite"}
    ]}
  ]
}`

func newTestApp(t *testing.T) *app {
	t.Helper()
	return newApp(dbtest.New(t), &config.Config{JWTSecret: "test-secret"})
}

func TestParseCatalogJSON(t *testing.T) {
	categories, err := parseCatalogJSON([]byte(catalogJSON))
	require.NoError(t, err)
	require.Len(t, categories, 2)
	require.Len(t, categories[0].Products, 2)

	dune := categories[0].Products[0]
	assert.Equal(t, "Dune", dune.Name)
	assert.Equal(t, 12, dune.Stock.Quantity())
	assert.True(t, categories[0].Products[1].Stock.Available())
	assert.False(t, categories[1].Products[0].Stock.Available())

	_, err = parseCatalogJSON([]byte(`{"categories": [`))
	assert.Error(t, err)
}

func TestSeedCatalog_Idempotent(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	categories, err := parseCatalogJSON([]byte(catalogJSON))
	require.NoError(t, err)

	res, err := seedCatalog(ctx, a.catalog, categories)
	require.NoError(t, err)
	assert.Equal(t, seedResult{categories: 2, created: 3}, res)

	res, err = seedCatalog(ctx, a.catalog, categories)
	require.NoError(t, err)
	assert.Equal(t, seedResult{skipped: 3}, res)

	products, err := a.catalog.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 3)
}

func TestSeedCatalog_FromExportedWorkbook(t *testing.T) {
	source := newTestApp(t)
	ctx := context.Background()

	categories, err := parseCatalogJSON([]byte(catalogJSON))
	require.NoError(t, err)
	_, err = seedCatalog(ctx, source.catalog, categories)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, source.catalog.ExportProducts(ctx, &buf))
	file, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)

	parsed, err := parseCatalogWorkbook(file)
	require.NoError(t, err)
	require.Len(t, parsed, 2)

	target := newTestApp(t)
	res, err := seedCatalog(ctx, target.catalog, parsed)
	require.NoError(t, err)
	assert.Equal(t, 3, res.created)

	products, err := target.catalog.SearchProducts(ctx, "dune")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, 12, products[0].Stock.Quantity())
	assert.Equal(t, "9.99", products[0].Price.StringFixed(2))
}

func TestParseCatalogWorkbook_MissingColumn(t *testing.T) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	require.NoError(t, err)
	row := sheet.AddRow()
	row.AddCell().SetValue("Name")
	row.AddCell().SetValue("Price")

	_, err = parseCatalogWorkbook(file)
	assert.ErrorContains(t, err, "description")
}

func TestCreateAdminAndResetPassword(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	created, err := createAdmin(ctx, a.auth, "Owner", "Owner@Shop.io", "first")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = createAdmin(ctx, a.auth, "Owner", "owner@shop.io", "again")
	require.NoError(t, err)
	assert.False(t, created)

	require.NoError(t, resetAccountPassword(ctx, a.users, a.auth, "OWNER@shop.io", model.RoleAdmin, "second"))

	_, _, err = a.auth.Login(ctx, "owner@shop.io", "first", model.RoleAdmin)
	assert.ErrorIs(t, err, apperrors.ErrWrongPassword)
	_, user, err := a.auth.Login(ctx, "owner@shop.io", "second", model.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, user.Role)

	err = resetAccountPassword(ctx, a.users, a.auth, "owner@shop.io", model.RoleUser, "x")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

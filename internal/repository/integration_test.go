//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcmysql "github.com/testcontainers/testcontainers-go/modules/mysql"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/model"
)

func startMySQL(t *testing.T, ctx context.Context) *config.Config {
	container, err := tcmysql.Run(ctx,
		"mysql:8.0",
		tcmysql.WithDatabase("storefront"),
		tcmysql.WithUsername("storefront"),
		tcmysql.WithPassword("storefront"),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	dsn, err := container.ConnectionString(ctx, "parseTime=true", "charset=utf8mb4")
	require.NoError(t, err)
	return &config.Config{DBDriver: db.DriverMySQL, MySQLDSN: dsn, DBMaxOpenConns: 5, DBMaxIdleConns: 2}
}

func startPostgres(t *testing.T, ctx context.Context) *config.Config {
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("storefront"),
		tcpostgres.WithUsername("storefront"),
		tcpostgres.WithPassword("storefront"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return &config.Config{DBDriver: db.DriverPostgres, PostgresDSN: dsn, DBMaxOpenConns: 5, DBMaxIdleConns: 2}
}

func TestRepositories_Drivers(t *testing.T) {
	tests := []struct {
		name  string
		start func(t *testing.T, ctx context.Context) *config.Config
	}{
		{"mysql", startMySQL},
		{"postgres", startPostgres},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			cfg := tt.start(t, ctx)

			gdb, err := db.Open(cfg)
			require.NoError(t, err)
			t.Cleanup(func() { _ = db.Close(gdb) })
			require.NoError(t, db.Reset(gdb))
			require.NoError(t, db.Ping(ctx, gdb))

			exerciseRepositories(t, ctx, gdb)
		})
	}
}

func exerciseRepositories(t *testing.T, ctx context.Context, gdb *gorm.DB) {
	users := NewUserRepository(gdb)
	user := &model.User{Name: "Mia", Email: "mia@shop.io", PasswordHash: "h", Role: model.RoleUser}
	require.NoError(t, users.Create(ctx, user))
	err := users.Create(ctx, &model.User{Name: "Dup", Email: "mia@shop.io", PasswordHash: "h", Role: model.RoleAdmin})
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))

	category := &model.Category{Name: "Stationery"}
	require.NoError(t, NewCategoryRepository(gdb).Create(ctx, category))

	products := NewProductRepository(gdb)
	pen := &model.Product{
		Name:       "Fountain Pen",
		Price:      decimal.RequireFromString("12.40"),
		Stock:      model.ParseStock("3"),
		CategoryID: category.ID,
	}
	require.NoError(t, products.Create(ctx, pen))

	found, err := products.SearchByName(ctx, "FOUNTAIN")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.True(t, pen.Price.Equal(found[0].Price))
	require.NotNil(t, found[0].Category)
	assert.Equal(t, "Stationery", found[0].Category.Name)

	wishlist := NewWishlistRepository(gdb)
	require.NoError(t, wishlist.Create(ctx, &model.WishlistItem{UserID: user.ID, ProductID: pen.ID}))
	err = wishlist.Create(ctx, &model.WishlistItem{UserID: user.ID, ProductID: pen.ID})
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))

	addresses := NewAddressRepository(gdb)
	require.NoError(t, addresses.WithTransaction(ctx, func(ctx context.Context, repo AddressRepository) error {
		if err := repo.LockUser(ctx, user.ID); err != nil {
			return err
		}
		return repo.Create(ctx, &model.Address{UserID: user.ID, FullName: "Mia", City: "Lyon", IsDefault: true})
	}))

	orders := NewOrderRepository(gdb)
	order := &model.Order{
		UserID:      user.ID,
		OrderNumber: "ORD-" + uuid.NewString()[:8],
		Items: []model.OrderItem{
			{ProductID: pen.ID, Name: pen.Name, Price: pen.Price, Quantity: 2},
		},
		ShippingAddress: datatypes.NewJSONType(model.AddressSnapshot{FullName: "Mia", City: "Lyon"}),
		PaymentMethod:   "COD",
		TotalAmount:     decimal.RequireFromString("24.80"),
		Status:          model.OrderStatusPending,
	}
	require.NoError(t, orders.Create(ctx, order))

	moved, err := orders.UpdateStatus(ctx, order.ID, model.OrderStatusPending, model.OrderStatusShipped)
	require.NoError(t, err)
	assert.True(t, moved)

	require.NoError(t, wishlist.DeleteByProducts(ctx, pen.ID))
	require.NoError(t, products.Delete(ctx, pen.ID))

	got, err := orders.FindByIDAndUser(ctx, order.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusShipped, got.Status)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Fountain Pen", got.Items[0].Name)
	assert.Equal(t, "Lyon", got.ShippingAddress.Data().City)
	assert.Equal(t, "24.80", got.TotalAmount.StringFixed(2))
}

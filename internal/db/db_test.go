package db_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/db/dbtest"
	"storefront/internal/model"
)

func TestDialector(t *testing.T) {
	tests := []struct {
		driver  string
		wantErr bool
		name    string
	}{
		{db.DriverMySQL, false, "mysql"},
		{db.DriverPostgres, false, "postgres"},
		{db.DriverSQLite, false, "sqlite"},
		{"mongo", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			d, err := db.Dialector(&config.Config{DBDriver: tt.driver, SQLitePath: ":memory:"})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.name, d.Name())
		})
	}
}

func TestMigrateAndReset(t *testing.T) {
	gdb := dbtest.New(t)

	for _, m := range db.Models() {
		assert.True(t, gdb.Migrator().HasTable(m))
	}

	require.NoError(t, gdb.Create(&model.Category{Name: "Books"}).Error)
	require.NoError(t, db.Reset(gdb))

	var count int64
	require.NoError(t, gdb.Model(&model.Category{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.NoError(t, db.Ping(context.Background(), gdb))
}

func TestOptions_TranslatesDuplicateKey(t *testing.T) {
	gdb := dbtest.New(t)

	require.NoError(t, gdb.Create(&model.User{Name: "a", Email: "a@x.io", PasswordHash: "h"}).Error)
	err := gdb.Create(&model.User{Name: "b", Email: "a@x.io", PasswordHash: "h"}).Error
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))
}

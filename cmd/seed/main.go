package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"storefront/internal/auth"
	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/logging"
	"storefront/internal/repository"
	"storefront/internal/service"
)

// app holds the services shared by every subcommand.
type app struct {
	db      *gorm.DB
	users   repository.UserRepository
	auth    service.AuthService
	catalog service.CatalogService
}

func newApp(gormDB *gorm.DB, cfg *config.Config) *app {
	userRepo := repository.NewUserRepository(gormDB)
	productRepo := repository.NewProductRepository(gormDB)
	return &app{
		db:    gormDB,
		users: userRepo,
		// seeding never checks revocation, so no token store backend is needed
		auth: service.NewAuthService(userRepo, auth.NewJWTService(cfg.JWTSecret, cfg.JWTExpiry), auth.NewTokenStore(nil)),
		catalog: service.NewCatalogService(
			repository.NewCategoryRepository(gormDB),
			productRepo,
			repository.NewWishlistRepository(gormDB),
		),
	}
}

var current *app

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the storefront database",
	Long: `Seed creates the first administrator, loads catalog data and resets passwords.

It reads the same environment as the server (DB_DRIVER, MYSQL_DSN, ...) and
migrates the schema before running.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		logging.Setup(cfg.LogLevel)

		gormDB, err := db.Open(cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		if err := db.Migrate(gormDB); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		slog.Info("connected to database", "driver", cfg.DBDriver)
		current = newApp(gormDB, cfg)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if current == nil {
			return nil
		}
		return db.Close(current.db)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

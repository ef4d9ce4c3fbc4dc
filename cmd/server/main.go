package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"

	"storefront/docs"
	"storefront/internal/auth"
	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/handler"
	"storefront/internal/logging"
	"storefront/internal/observability"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"
)

// @title Storefront API
// @version 1.0
// @description E-commerce storefront backend: catalog, orders, addresses, wishlist and JWT authentication.
// @host localhost:8050
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		fatal("invalid configuration", err)
	}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.AppEnv,
			AttachStacktrace: true,
		}); err != nil {
			slog.Error("sentry init", "error", err)
		}
	}
	defer sentry.Flush(2 * time.Second)

	gormDB, err := db.Open(cfg)
	if err != nil {
		fatal("database init", err)
	}

	if cfg.ResetDB {
		slog.Warn("RESET_DB=true detected, dropping all tables")
		if err := db.Reset(gormDB); err != nil {
			fatal("reset database", err)
		}
	} else if err := db.Migrate(gormDB); err != nil {
		fatal("auto-migrate", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	var metricsProvider *observability.Provider
	if cfg.MetricsEnabled {
		metricsProvider, err = observability.NewPrometheusProvider()
		if err != nil {
			fatal("metrics init", err)
		}
		otel.SetMeterProvider(metricsProvider.MeterProvider())
	}
	orderMetrics := observability.NewOrderMetrics(otel.GetMeterProvider())

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	categoryRepo := repository.NewCategoryRepository(gormDB)
	productRepo := repository.NewProductRepository(gormDB)
	wishlistRepo := repository.NewWishlistRepository(gormDB)
	orderRepo := repository.NewOrderRepository(gormDB)
	addressRepo := repository.NewAddressRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.JWTExpiry)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, tokenStore)
	catalogService := service.NewCatalogService(categoryRepo, productRepo, wishlistRepo)
	orderService := service.NewOrderService(orderRepo, orderMetrics)
	addressService := service.NewAddressService(addressRepo)
	wishlistService := service.NewWishlistService(wishlistRepo, productRepo)

	e := echo.New()
	e.HideBanner = true

	router.Register(
		e,
		cfg,
		authService,
		handler.NewAuthHandler(authService),
		handler.NewUserHandler(authService),
		handler.NewCatalogHandler(catalogService),
		handler.NewOrderHandler(orderService),
		handler.NewAddressHandler(addressService),
		handler.NewWishlistHandler(wishlistService),
		handler.NewHealthHandler(gormDB, cacheClient),
	)

	if metricsProvider != nil {
		e.GET("/metrics", echo.WrapHandler(metricsProvider.Handler()))
	}

	if cfg.SwaggerHost != "" {
		host := strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "http://"), "https://")
		docs.SwaggerInfo.Host = host
	}
	slog.Info("swagger documentation available", "url", "http://"+docs.SwaggerInfo.Host+"/swagger/index.html")

	go func() {
		addr := ":" + cfg.ServerPort
		slog.Info("server starting", "addr", addr, "env", cfg.AppEnv, "db_driver", cfg.DBDriver)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("server start", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		slog.Error("server shutdown", "error", err)
	}
	if err := db.Close(gormDB); err != nil {
		slog.Error("close database", "error", err)
	}
	if err := cacheClient.Close(); err != nil {
		slog.Error("close cache", "error", err)
	}
	if metricsProvider != nil {
		if err := metricsProvider.Shutdown(ctx); err != nil {
			slog.Error("shutdown metrics", "error", err)
		}
	}
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	sentry.CaptureException(err)
	sentry.Flush(2 * time.Second)
	os.Exit(1)
}

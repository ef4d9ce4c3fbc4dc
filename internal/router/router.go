package router

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"storefront/internal/auth"
	"storefront/internal/config"
	apperrors "storefront/internal/errors"
	"storefront/internal/handler"
	"storefront/internal/service"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	authService service.AuthService,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	catalogHandler *handler.CatalogHandler,
	orderHandler *handler.OrderHandler,
	addressHandler *handler.AddressHandler,
	wishlistHandler *handler.WishlistHandler,
	healthHandler *handler.HealthHandler,
) {
	e.HTTPErrorHandler = ErrorHandler
	e.Validator = NewValidator()

	e.Use(middleware.RequestID())
	e.Use(requestLogger())
	e.Use(middleware.Recover())
	e.Use(sentryecho.New(sentryecho.Options{Repanic: true}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")
	api.GET("/health", healthHandler.Health)

	authenticated := RequireToken(authService)

	// Admin routes
	admin := api.Group("/admin")
	admin.POST("/login", authHandler.LoginAdmin)
	admin.GET("/products", catalogHandler.ListProducts)
	admin.GET("/viewProducts", catalogHandler.ListProducts)
	admin.GET("/viewCategory", catalogHandler.ListCategories)

	// route-level middleware: a guarded Group would also guard its not-found catch-all
	adminOnly := []echo.MiddlewareFunc{authenticated, RequireAdmin}
	admin.POST("/register", authHandler.RegisterAdmin, adminOnly...)
	admin.POST("/logout", authHandler.Logout, adminOnly...)
	admin.GET("/allUsers", userHandler.ListUsers, adminOnly...)
	admin.PUT("/changePass/:id", userHandler.ChangePassword, adminOnly...)
	admin.POST("/addProduct", catalogHandler.AddProduct, adminOnly...)
	admin.POST("/products", catalogHandler.AddProduct, adminOnly...)
	admin.GET("/products/export", catalogHandler.ExportProducts, adminOnly...)
	admin.PATCH("/editProducts/:id", catalogHandler.EditProduct, adminOnly...)
	admin.POST("/deleteProduct/:id", catalogHandler.DeleteProduct, adminOnly...)
	admin.DELETE("/products/:id", catalogHandler.DeleteProduct, adminOnly...)
	admin.POST("/category", catalogHandler.CreateCategory, adminOnly...)
	admin.PATCH("/category/:id", catalogHandler.EditCategory, adminOnly...)
	admin.DELETE("/categoryDelete/:id", catalogHandler.DeleteCategory, adminOnly...)
	admin.GET("/orders", orderHandler.ListAllOrders, adminOnly...)
	admin.PATCH("/orders/:id/status", orderHandler.UpdateOrderStatus, adminOnly...)

	// User routes
	user := api.Group("/user")
	user.POST("/register", authHandler.RegisterUser)
	user.POST("/login", authHandler.LoginUser)
	user.GET("/viewAllProducts", catalogHandler.ListProducts)
	user.GET("/viewAllCategories", catalogHandler.ListCategories)
	user.GET("/products/:categoryId", catalogHandler.ListProductsByCategory)
	user.GET("/viewProducts/:id", catalogHandler.GetProduct)
	user.GET("/search", catalogHandler.SearchProducts)

	user.POST("/logout", authHandler.Logout, authenticated)
	user.GET("/profile", userHandler.GetProfile, authenticated)
	user.PUT("/profile", userHandler.UpdateProfile, authenticated)
	user.POST("/orders", orderHandler.CreateOrder, authenticated)
	user.GET("/orders", orderHandler.ListOrders, authenticated)
	user.GET("/orders/:id", orderHandler.GetOrder, authenticated)
	user.PUT("/orders/:id/cancel", orderHandler.CancelOrder, authenticated)
	user.GET("/addresses", addressHandler.ListAddresses, authenticated)
	user.POST("/addresses", addressHandler.AddAddress, authenticated)
	user.PUT("/addresses/:id", addressHandler.UpdateAddress, authenticated)
	user.DELETE("/addresses/:id", addressHandler.DeleteAddress, authenticated)
	user.GET("/wishlist", wishlistHandler.ListWishlist, authenticated)
	user.POST("/wishlist", wishlistHandler.AddToWishlist, authenticated)
	user.DELETE("/wishlist/:productId", wishlistHandler.RemoveFromWishlist, authenticated)
}

// RequireToken verifies the bearer token through authService and stores the
// claims on the context. A missing token is 401, any other failure 403.
func RequireToken(authService service.AuthService) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey: handler.ClaimsContextKey,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return authService.Authenticate(c.Request().Context(), token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if bearerToken(c) == "" {
				return apperrors.ErrUnauthorized
			}
			// parse failures carry the error returned by Authenticate
			var parseErr *echojwt.TokenParsingError
			if errors.As(err, &parseErr) {
				return parseErr.Err
			}
			return apperrors.ErrForbidden
		},
	})
}

func bearerToken(c echo.Context) string {
	header := strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization))
	if len(header) >= 6 && strings.EqualFold(header[:6], "bearer") {
		header = header[6:]
	}
	return strings.TrimSpace(header)
}

// RequireAdmin rejects callers whose verified token was not issued to an admin.
// It must run after RequireToken.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, ok := c.Get(handler.ClaimsContextKey).(*auth.Claims)
		if !ok || !claims.IsAdmin() {
			return apperrors.WithMessage(apperrors.ErrForbidden, "access denied")
		}
		return next(c)
	}
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
			}
			level := slog.LevelInfo
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}
			if v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			slog.LogAttrs(c.Request().Context(), level, "request", attrs...)
			return nil
		},
	})
}

// ErrorHandler writes every error in the standard envelope. Unknown /api paths
// get {"error": "API endpoint not found"}.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var status int
	var body interface{}

	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		status = he.Code
		if resp, ok := he.Message.(apperrors.ErrorResponse); ok {
			body = resp
			break
		}
		if (status == http.StatusNotFound || status == http.StatusMethodNotAllowed) &&
			strings.HasPrefix(c.Request().URL.Path, "/api") {
			status = http.StatusNotFound
			body = map[string]string{"error": "API endpoint not found"}
			break
		}
		if status >= http.StatusInternalServerError {
			handler.ReportError(c, err)
		}
		body = apperrors.ErrorResponse{
			Status:  false,
			Message: fmt.Sprint(he.Message),
			Code:    statusCode(status),
		}
	default:
		httpErr := apperrors.MapErrorToHTTP(err)
		if httpErr.StatusCode >= http.StatusInternalServerError {
			handler.ReportError(c, err)
		}
		status = httpErr.StatusCode
		body = httpErr.ToErrorResponse()
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		slog.ErrorContext(c.Request().Context(), "write error response", "error", err)
	}
}

func statusCode(status int) string {
	return strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_"))
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator returns a validator that reports fields by their JSON names.
func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return &CustomValidator{validator: v}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

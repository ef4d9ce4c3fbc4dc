package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront/internal/model"
	"storefront/internal/service"
)

// AuthHandler handles registration, login and logout for both roles.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRequest represents an account registration request.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"pass" validate:"required"`
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"pass" validate:"required"`
}

// AccountSummary is the public view of a freshly registered account.
type AccountSummary struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
}

// LoginResponse represents a successful login.
type LoginResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    *model.User `json:"user"`
}

// RegisterUser godoc
// @Summary Register a shopper
// @Tags user-auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /user/register [post]
func (h *AuthHandler) RegisterUser(c echo.Context) error {
	return h.register(c, model.RoleUser, "User registered successfully")
}

// RegisterAdmin godoc
// @Summary Register an administrator
// @Tags admin-auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /admin/register [post]
func (h *AuthHandler) RegisterAdmin(c echo.Context) error {
	return h.register(c, model.RoleAdmin, "created admin")
}

func (h *AuthHandler) register(c echo.Context, role model.Role, message string) error {
	var req RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, err)
	}

	user, err := h.authService.Register(c.Request().Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		Role:     role,
	})
	if err != nil {
		return fail(c, err)
	}

	return respond(c, http.StatusCreated, echo.Map{
		"message": message,
		"data": AccountSummary{
			ID:    user.ID.String(),
			Name:  user.Name,
			Email: user.Email,
			Role:  user.Role,
		},
	})
}

// LoginUser godoc
// @Summary Log in as a shopper
// @Tags user-auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /user/login [post]
func (h *AuthHandler) LoginUser(c echo.Context) error {
	return h.login(c, model.RoleUser)
}

// LoginAdmin godoc
// @Summary Log in as an administrator
// @Tags admin-auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/login [post]
func (h *AuthHandler) LoginAdmin(c echo.Context) error {
	return h.login(c, model.RoleAdmin)
}

func (h *AuthHandler) login(c echo.Context, role model.Role) error {
	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, err)
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.Email, req.Password, role)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, LoginResponse{
		Status:  true,
		Message: "Login Successful",
		Token:   token,
		User:    user,
	})
}

// Logout godoc
// @Summary Revoke the presented access token
// @Tags user-auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /user/logout [post]
// @Router /admin/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return fail(c, err)
	}
	if err := h.authService.Logout(c.Request().Context(), claims); err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{"message": "Logged out successfully"})
}

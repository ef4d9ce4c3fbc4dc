package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront/internal/service"
)

// UserHandler serves account profile endpoints.
type UserHandler struct {
	authService service.AuthService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(authService service.AuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

// UpdateProfileRequest carries the editable contact fields. Empty name or
// email and an absent phone keep the stored value.
type UpdateProfileRequest struct {
	Name  string  `json:"name"`
	Email string  `json:"email" validate:"omitempty,email"`
	Phone *string `json:"phone"`
}

// ChangePasswordRequest carries a replacement password.
type ChangePasswordRequest struct {
	NewPassword string `json:"newPass" validate:"required"`
}

// GetProfile godoc
// @Summary Get the caller's profile
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /user/profile [get]
func (h *UserHandler) GetProfile(c echo.Context) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return fail(c, err)
	}
	user, err := h.authService.GetProfile(c.Request().Context(), claims.UserID)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{"user": user})
}

// UpdateProfile godoc
// @Summary Update the caller's profile
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateProfileRequest true "Profile"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /user/profile [put]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return fail(c, err)
	}
	var req UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, err)
	}

	user, err := h.authService.UpdateProfile(c.Request().Context(), claims.UserID, service.ProfileUpdate{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{
		"message": "Profile updated successfully",
		"user":    user,
	})
}

// ListUsers godoc
// @Summary List shopper accounts
// @Tags admin-users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/allUsers [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.authService.ListUsers(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{"data": users})
}

// ChangePassword godoc
// @Summary Reset an account password
// @Tags admin-users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param request body ChangePasswordRequest true "New password"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/changePass/{id} [put]
func (h *UserHandler) ChangePassword(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req ChangePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, err)
	}
	if err := h.authService.ChangePassword(c.Request().Context(), id, req.NewPassword); err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{"message": "Password updated successfully"})
}

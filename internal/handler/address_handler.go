package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront/internal/service"
)

// AddressHandler serves the caller's address book.
type AddressHandler struct {
	addressService service.AddressService
}

// NewAddressHandler creates a new address handler.
func NewAddressHandler(addressService service.AddressService) *AddressHandler {
	return &AddressHandler{addressService: addressService}
}

// AddressRequest represents an address book entry. Country defaults to India.
type AddressRequest struct {
	FullName     string `json:"fullName" validate:"required"`
	Phone        string `json:"phone" validate:"required"`
	AddressLine1 string `json:"addressLine1" validate:"required"`
	AddressLine2 string `json:"addressLine2"`
	City         string `json:"city" validate:"required"`
	State        string `json:"state" validate:"required"`
	Pincode      string `json:"pincode" validate:"required"`
	Country      string `json:"country"`
	IsDefault    bool   `json:"isDefault"`
}

func (r *AddressRequest) input() service.AddressInput {
	return service.AddressInput{
		FullName:     r.FullName,
		Phone:        r.Phone,
		AddressLine1: r.AddressLine1,
		AddressLine2: r.AddressLine2,
		City:         r.City,
		State:        r.State,
		Pincode:      r.Pincode,
		Country:      r.Country,
		IsDefault:    r.IsDefault,
	}
}

// ListAddresses godoc
// @Summary List the caller's addresses, default first
// @Tags addresses
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /user/addresses [get]
func (h *AddressHandler) ListAddresses(c echo.Context) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return fail(c, err)
	}
	addresses, err := h.addressService.ListAddresses(c.Request().Context(), claims.UserID)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{"addresses": addresses})
}

// AddAddress godoc
// @Summary Add an address
// @Tags addresses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AddressRequest true "Address"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Router /user/addresses [post]
func (h *AddressHandler) AddAddress(c echo.Context) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return fail(c, err)
	}
	var req AddressRequest
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, err)
	}
	address, err := h.addressService.AddAddress(c.Request().Context(), claims.UserID, req.input())
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusCreated, echo.Map{"message": "Address added successfully", "address": address})
}

// UpdateAddress godoc
// @Summary Replace an address
// @Tags addresses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Address ID"
// @Param request body AddressRequest true "Address"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /user/addresses/{id} [put]
func (h *AddressHandler) UpdateAddress(c echo.Context) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req AddressRequest
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, err)
	}
	address, err := h.addressService.UpdateAddress(c.Request().Context(), claims.UserID, id, req.input())
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{"message": "Address updated successfully", "address": address})
}

// DeleteAddress godoc
// @Summary Delete an address
// @Tags addresses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Address ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} errors.ErrorResponse
// @Router /user/addresses/{id} [delete]
func (h *AddressHandler) DeleteAddress(c echo.Context) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.addressService.DeleteAddress(c.Request().Context(), claims.UserID, id); err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{"message": "Address deleted successfully"})
}

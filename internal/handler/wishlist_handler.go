package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apperrors "storefront/internal/errors"
	"storefront/internal/service"
)

// WishlistHandler serves the caller's wishlist.
type WishlistHandler struct {
	wishlistService service.WishlistService
}

// NewWishlistHandler creates a new wishlist handler.
func NewWishlistHandler(wishlistService service.WishlistService) *WishlistHandler {
	return &WishlistHandler{wishlistService: wishlistService}
}

// WishlistRequest names the product to keep.
type WishlistRequest struct {
	ProductID string `json:"productId" validate:"required"`
}

// ListWishlist godoc
// @Summary List the caller's wishlist, newest first
// @Tags wishlist
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /user/wishlist [get]
func (h *WishlistHandler) ListWishlist(c echo.Context) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return fail(c, err)
	}
	items, err := h.wishlistService.ListWishlist(c.Request().Context(), claims.UserID)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{"wishlist": items})
}

// AddToWishlist godoc
// @Summary Add a product to the wishlist
// @Tags wishlist
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body WishlistRequest true "Product"
// @Success 201 {object} map[string]interface{}
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /user/wishlist [post]
func (h *WishlistHandler) AddToWishlist(c echo.Context) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return fail(c, err)
	}
	var req WishlistRequest
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, err)
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return fail(c, apperrors.ErrProductNotFound)
	}

	item, err := h.wishlistService.AddToWishlist(c.Request().Context(), claims.UserID, productID)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusCreated, echo.Map{"message": "Added to wishlist", "wishlistItem": item})
}

// RemoveFromWishlist godoc
// @Summary Remove a product from the wishlist
// @Tags wishlist
// @Produce json
// @Security BearerAuth
// @Param productId path string true "Product ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} errors.ErrorResponse
// @Router /user/wishlist/{productId} [delete]
func (h *WishlistHandler) RemoveFromWishlist(c echo.Context) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return fail(c, err)
	}
	productID, err := pathID(c, "productId")
	if err != nil {
		return fail(c, err)
	}
	if err := h.wishlistService.RemoveFromWishlist(c.Request().Context(), claims.UserID, productID); err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{"message": "Removed from wishlist"})
}

package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	apperrors "storefront/internal/errors"
	"storefront/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// CatalogHandler serves category and product endpoints.
type CatalogHandler struct {
	catalogService service.CatalogService
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// StockText is the free-text stock field. Clients send either a string or a
// bare number.
type StockText string

// UnmarshalJSON implements json.Unmarshaler.
func (s *StockText) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = StockText(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("stock must be a string or a number")
	}
	*s = StockText(n.String())
	return nil
}

// CategoryRequest names a category.
type CategoryRequest struct {
	Name string `json:"name" validate:"required"`
}

// ProductRequest represents a new product.
type ProductRequest struct {
	Name        string           `json:"pname" validate:"required"`
	Description string           `json:"desc" validate:"required"`
	Price       *decimal.Decimal `json:"price" validate:"required"`
	Stock       StockText        `json:"stock" validate:"required"`
	ImageURL    string           `json:"imageUrl" validate:"required"`
	CategoryID  string           `json:"categoryId" validate:"required"`
}

// ProductUpdateRequest represents a sparse product edit. Absent fields are
// left unchanged.
type ProductUpdateRequest struct {
	Name        *string          `json:"pname"`
	Description *string          `json:"desc"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *StockText       `json:"stock"`
	ImageURL    *string          `json:"imageUrl"`
	CategoryID  *string          `json:"categoryId"`
}

func parseCategoryID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, apperrors.ErrInvalidCategory
	}
	return id, nil
}

// CreateCategory godoc
// @Summary Create a category
// @Tags admin-catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CategoryRequest true "Category"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/category [post]
func (h *CatalogHandler) CreateCategory(c echo.Context) error {
	var req CategoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, err)
	}
	category, err := h.catalogService.CreateCategory(c.Request().Context(), req.Name)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{"message": "Category created", "data": category})
}

// ListCategories godoc
// @Summary List categories
// @Tags catalog
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /admin/viewCategory [get]
// @Router /user/viewAllCategories [get]
func (h *CatalogHandler) ListCategories(c echo.Context) error {
	categories, err := h.catalogService.ListCategories(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{"data": categories})
}

// EditCategory godoc
// @Summary Rename a category
// @Tags admin-catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Category ID"
// @Param request body CategoryRequest true "Category"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/category/{id} [patch]
func (h *CatalogHandler) EditCategory(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req CategoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, err)
	}
	category, err := h.catalogService.EditCategory(c.Request().Context(), id, req.Name)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{"message": "Category updated successfully", "data": category})
}

// DeleteCategory godoc
// @Summary Delete a category and all of its products
// @Tags admin-catalog
// @Produce json
// @Security BearerAuth
// @Param id path string true "Category ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/categoryDelete/{id} [delete]
func (h *CatalogHandler) DeleteCategory(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.catalogService.DeleteCategory(c.Request().Context(), id); err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{"message": "Category and its products deleted successfully"})
}

// AddProduct godoc
// @Summary Add a product
// @Tags admin-catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ProductRequest true "Product"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/addProduct [post]
// @Router /admin/products [post]
func (h *CatalogHandler) AddProduct(c echo.Context) error {
	var req ProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, err)
	}
	categoryID, err := parseCategoryID(req.CategoryID)
	if err != nil {
		return fail(c, err)
	}

	product, err := h.catalogService.CreateProduct(c.Request().Context(), service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       string(req.Stock),
		ImageURL:    req.ImageURL,
		CategoryID:  categoryID,
	})
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusCreated, echo.Map{"message": "Product added successfully", "data": product})
}

// EditProduct godoc
// @Summary Edit a product
// @Tags admin-catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Param request body ProductUpdateRequest true "Changed fields"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/editProducts/{id} [patch]
func (h *CatalogHandler) EditProduct(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req ProductUpdateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, err)
	}

	update := service.ProductUpdate{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
	}
	if req.Stock != nil {
		stock := string(*req.Stock)
		update.Stock = &stock
	}
	if req.CategoryID != nil {
		categoryID, err := parseCategoryID(*req.CategoryID)
		if err != nil {
			return fail(c, err)
		}
		update.CategoryID = &categoryID
	}

	product, err := h.catalogService.EditProduct(c.Request().Context(), id, update)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{"message": "Product updated successfully", "data": product})
}

// DeleteProduct godoc
// @Summary Delete a product
// @Tags admin-catalog
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/deleteProduct/{id} [post]
// @Router /admin/products/{id} [delete]
func (h *CatalogHandler) DeleteProduct(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.catalogService.DeleteProduct(c.Request().Context(), id); err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{"message": "Product deleted successfully"})
}

// ListProducts godoc
// @Summary List all products
// @Tags catalog
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /admin/products [get]
// @Router /admin/viewProducts [get]
// @Router /user/viewAllProducts [get]
func (h *CatalogHandler) ListProducts(c echo.Context) error {
	products, err := h.catalogService.ListProducts(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{"products": products})
}

// GetProduct godoc
// @Summary Get one product
// @Tags catalog
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} errors.ErrorResponse
// @Router /user/viewProducts/{id} [get]
func (h *CatalogHandler) GetProduct(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	product, err := h.catalogService.GetProduct(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{"data": product})
}

// ListProductsByCategory godoc
// @Summary List the products of one category
// @Tags catalog
// @Produce json
// @Param categoryId path string true "Category ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Router /user/products/{categoryId} [get]
func (h *CatalogHandler) ListProductsByCategory(c echo.Context) error {
	categoryID, err := pathID(c, "categoryId")
	if err != nil {
		return fail(c, err)
	}
	products, err := h.catalogService.ListProductsByCategory(c.Request().Context(), categoryID)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{"message": "Products fetched successfully", "data": products})
}

// SearchProducts godoc
// @Summary Search products by name
// @Tags catalog
// @Produce json
// @Param query query string true "Case-insensitive name fragment"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Router /user/search [get]
func (h *CatalogHandler) SearchProducts(c echo.Context) error {
	products, err := h.catalogService.SearchProducts(c.Request().Context(), c.QueryParam("query"))
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{"message": "Search results fetched successfully", "data": products})
}

// ExportProducts godoc
// @Summary Download the catalog as a spreadsheet
// @Tags admin-catalog
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Success 200 {file} binary
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/products/export [get]
func (h *CatalogHandler) ExportProducts(c echo.Context) error {
	var buf bytes.Buffer
	if err := h.catalogService.ExportProducts(c.Request().Context(), &buf); err != nil {
		return fail(c, err)
	}
	filename := fmt.Sprintf("products-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}

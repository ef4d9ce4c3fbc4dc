package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"

	apperrors "storefront/internal/errors"
	"storefront/internal/model"
	"storefront/internal/repository"
)

// ProductInput carries the fields of a new product. Stock is the free text
// sent by the client.
type ProductInput struct {
	Name        string
	Description string
	Price       *decimal.Decimal
	Stock       string
	ImageURL    string
	CategoryID  uuid.UUID
}

// ProductUpdate carries a sparse product edit. Nil fields are left unchanged.
type ProductUpdate struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *string
	ImageURL    *string
	CategoryID  *uuid.UUID
}

// CatalogService handles categories and products.
type CatalogService interface {
	CreateCategory(ctx context.Context, name string) (*model.Category, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	EditCategory(ctx context.Context, id uuid.UUID, name string) (*model.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	CreateProduct(ctx context.Context, in ProductInput) (*model.Product, error)
	EditProduct(ctx context.Context, id uuid.UUID, in ProductUpdate) (*model.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	ListProductsByCategory(ctx context.Context, categoryID uuid.UUID) ([]model.Product, error)
	SearchProducts(ctx context.Context, query string) ([]model.Product, error)
	ExportProducts(ctx context.Context, w io.Writer) error
}

type catalogService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	wishlistRepo repository.WishlistRepository
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	wishlistRepo repository.WishlistRepository,
) CatalogService {
	return &catalogService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		wishlistRepo: wishlistRepo,
	}
}

func (s *catalogService) CreateCategory(ctx context.Context, name string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "category name is required")
	}

	category := &model.Category{Name: name}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return category, nil
}

func (s *catalogService) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (s *catalogService) findCategory(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.WithMessage(apperrors.ErrNotFound, "category not found")
		}
		return nil, fmt.Errorf("find category: %w", err)
	}
	return category, nil
}

func (s *catalogService) EditCategory(ctx context.Context, id uuid.UUID, name string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "category name is required")
	}

	category, err := s.findCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.categoryRepo.Rename(ctx, id, name); err != nil {
		return nil, fmt.Errorf("rename category: %w", err)
	}
	category.Name = name
	return category, nil
}

// DeleteCategory removes the category's products, their wishlist entries and then
// the category itself. The steps are not atomic: a failure part way leaves the
// earlier deletes in place.
func (s *catalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.findCategory(ctx, id); err != nil {
		return err
	}

	productIDs, err := s.productRepo.ListIDsByCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("list category products: %w", err)
	}
	if err := s.wishlistRepo.DeleteByProducts(ctx, productIDs...); err != nil {
		return fmt.Errorf("delete wishlist entries: %w", err)
	}
	removed, err := s.productRepo.DeleteByCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("delete category products: %w", err)
	}
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.WithMessage(apperrors.ErrNotFound, "category not found")
		}
		return fmt.Errorf("delete category: %w", err)
	}

	slog.InfoContext(ctx, "category deleted", "category_id", id, "products_removed", removed)
	return nil
}

func (s *catalogService) categoryExists(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return apperrors.ErrInvalidCategory
	}
	if _, err := s.categoryRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrInvalidCategory
		}
		return fmt.Errorf("find category: %w", err)
	}
	return nil
}

// CreateProduct validates every field and the category reference before saving.
func (s *catalogService) CreateProduct(ctx context.Context, in ProductInput) (*model.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	if in.Name == "" || in.Description == "" || in.Price == nil ||
		strings.TrimSpace(in.Stock) == "" || in.ImageURL == "" || in.CategoryID == uuid.Nil {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "all fields are required")
	}
	if in.Price.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "price must not be negative")
	}

	if err := s.categoryExists(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	product := &model.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       *in.Price,
		Stock:       model.ParseStock(in.Stock),
		ImageURL:    in.ImageURL,
		CategoryID:  in.CategoryID,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return s.GetProduct(ctx, product.ID)
}

// EditProduct applies the non-nil fields of in. A changed category must exist.
func (s *catalogService) EditProduct(ctx context.Context, id uuid.UUID, in ProductUpdate) (*model.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrValidation, "product name must not be empty")
		}
		fields["name"] = name
	}
	if in.Description != nil {
		fields["description"] = strings.TrimSpace(*in.Description)
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, apperrors.WithMessage(apperrors.ErrValidation, "price must not be negative")
		}
		fields["price"] = *in.Price
	}
	if in.Stock != nil {
		fields["stock"] = model.ParseStock(*in.Stock)
	}
	if in.ImageURL != nil {
		fields["image_url"] = strings.TrimSpace(*in.ImageURL)
	}
	if in.CategoryID != nil && *in.CategoryID != product.CategoryID {
		if err := s.categoryExists(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
		fields["category_id"] = *in.CategoryID
	}

	if len(fields) == 0 {
		return product, nil
	}
	if err := s.productRepo.Update(ctx, id, fields); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return s.GetProduct(ctx, id)
}

// DeleteProduct hard deletes a product and any wishlist entries for it. Order
// lines keep their copied name and price.
func (s *catalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrProductNotFound
		}
		return fmt.Errorf("delete product: %w", err)
	}
	if err := s.wishlistRepo.DeleteByProducts(ctx, id); err != nil {
		return fmt.Errorf("delete wishlist entries: %w", err)
	}
	return nil
}

// GetProduct returns a product with its category.
func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return product, nil
}

func (s *catalogService) ListProducts(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *catalogService) ListProductsByCategory(ctx context.Context, categoryID uuid.UUID) ([]model.Product, error) {
	products, err := s.productRepo.ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list products by category: %w", err)
	}
	return products, nil
}

// SearchProducts matches query against product names, ignoring case.
func (s *catalogService) SearchProducts(ctx context.Context, query string) ([]model.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "search query is required")
	}
	products, err := s.productRepo.SearchByName(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return products, nil
}

var exportHeaders = []string{"ID", "Name", "Description", "Price", "Stock", "In Stock", "Image URL", "Category", "Created At", "Updated At"}

// ExportProducts writes the whole catalog to w as an xlsx workbook.
func (s *catalogService) ExportProducts(ctx context.Context, w io.Writer) error {
	products, err := s.ListProducts(ctx)
	if err != nil {
		return err
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	headerRow := sheet.AddRow()
	for _, h := range exportHeaders {
		headerRow.AddCell().SetValue(h)
	}

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetValue(p.ID.String())
		row.AddCell().SetValue(p.Name)
		row.AddCell().SetValue(p.Description)
		row.AddCell().SetValue(p.Price.StringFixed(2))
		row.AddCell().SetValue(p.Stock.String())
		inStock := "no"
		if p.InStock() {
			inStock = "yes"
		}
		row.AddCell().SetValue(inStock)
		row.AddCell().SetValue(p.ImageURL)
		category := ""
		if p.Category != nil {
			category = p.Category.Name
		}
		row.AddCell().SetValue(category)
		row.AddCell().SetValue(p.CreatedAt.Format("2006-01-02 15:04:05"))
		row.AddCell().SetValue(p.UpdatedAt.Format("2006-01-02 15:04:05"))
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

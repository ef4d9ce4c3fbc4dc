package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/tealeg/xlsx"

	"storefront/internal/model"
	"storefront/internal/service"
)

var catalogFile string

// catalogCmd loads categories and products from a JSON document or from a
// workbook in the layout written by the admin export endpoint.
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Load categories and products from a JSON or xlsx file",
	Long: `Load categories and products.

JSON files hold {"categories": [{"name": ..., "products": [{"pname", "desc",
"price", "stock", "imageUrl"}]}]}. Spreadsheets (.xlsx) are read from the first
sheet; columns are matched by header: Name, Description, Price, Stock,
Image URL and Category. Categories are matched by name and created when
missing. Products whose name already exists in their category are skipped.`,
	Example: `  seed catalog --file catalog.json
  seed catalog --file products-export.xlsx`,
	RunE: func(cmd *cobra.Command, args []string) error {
		categories, err := loadCatalogFile(catalogFile)
		if err != nil {
			return err
		}
		res, err := seedCatalog(cmd.Context(), current.catalog, categories)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "categories created: %d, products created: %d, products skipped: %d\n",
			res.categories, res.created, res.skipped)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)

	catalogCmd.Flags().StringVarP(&catalogFile, "file", "f", "", "Catalog file, .json or .xlsx (required)")
	_ = catalogCmd.MarkFlagRequired("file")
}

type seedProduct struct {
	Name        string          `json:"pname"`
	Description string          `json:"desc"`
	Price       decimal.Decimal `json:"price"`
	Stock       model.Stock     `json:"stock"`
	ImageURL    string          `json:"imageUrl"`
}

type seedCategory struct {
	Name     string        `json:"name"`
	Products []seedProduct `json:"products"`
}

type seedResult struct {
	categories int
	created    int
	skipped    int
}

func loadCatalogFile(path string) ([]seedCategory, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog: %w", err)
		}
		return parseCatalogJSON(data)
	case ".xlsx":
		file, err := xlsx.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("open workbook: %w", err)
		}
		return parseCatalogWorkbook(file)
	default:
		return nil, fmt.Errorf("unsupported catalog file %q: want .json or .xlsx", path)
	}
}

func parseCatalogJSON(data []byte) ([]seedCategory, error) {
	var doc struct {
		Categories []seedCategory `json:"categories"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return doc.Categories, nil
}

var workbookColumns = []string{"name", "description", "price", "stock", "image url", "category"}

// parseCatalogWorkbook groups the rows of the first sheet by category,
// keeping first-seen order.
func parseCatalogWorkbook(file *xlsx.File) ([]seedCategory, error) {
	if len(file.Sheets) == 0 || len(file.Sheets[0].Rows) == 0 {
		return nil, fmt.Errorf("workbook is empty or missing header row")
	}
	sheet := file.Sheets[0]

	index := make(map[string]int)
	for i, cell := range sheet.Rows[0].Cells {
		index[strings.ToLower(strings.TrimSpace(cell.String()))] = i
	}
	for _, col := range workbookColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("workbook header is missing column %q", col)
		}
	}

	var categories []seedCategory
	position := make(map[string]int)
	for n, row := range sheet.Rows[1:] {
		if row == nil {
			continue
		}
		get := func(col string) string {
			i := index[col]
			if i < len(row.Cells) {
				return strings.TrimSpace(row.Cells[i].String())
			}
			return ""
		}

		name := get("name")
		if name == "" {
			continue
		}
		price, err := decimal.NewFromString(get("price"))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid price %q", n+2, get("price"))
		}

		category := get("category")
		i, ok := position[category]
		if !ok {
			i = len(categories)
			position[category] = i
			categories = append(categories, seedCategory{Name: category})
		}
		categories[i].Products = append(categories[i].Products, seedProduct{
			Name:        name,
			Description: get("description"),
			Price:       price,
			Stock:       model.ParseStock(get("stock")),
			ImageURL:    get("image url"),
		})
	}
	return categories, nil
}

func seedCatalog(ctx context.Context, catalog service.CatalogService, categories []seedCategory) (seedResult, error) {
	var res seedResult

	existing, err := catalog.ListCategories(ctx)
	if err != nil {
		return res, err
	}
	byName := make(map[string]*model.Category, len(existing))
	for i := range existing {
		byName[strings.ToLower(existing[i].Name)] = &existing[i]
	}

	for _, sc := range categories {
		key := strings.ToLower(strings.TrimSpace(sc.Name))
		category, ok := byName[key]
		if !ok {
			category, err = catalog.CreateCategory(ctx, sc.Name)
			if err != nil {
				return res, fmt.Errorf("create category %q: %w", sc.Name, err)
			}
			byName[key] = category
			res.categories++
		}

		products, err := catalog.ListProductsByCategory(ctx, category.ID)
		if err != nil {
			return res, err
		}
		have := make(map[string]bool, len(products))
		for _, p := range products {
			have[strings.ToLower(p.Name)] = true
		}

		for _, sp := range sc.Products {
			if have[strings.ToLower(strings.TrimSpace(sp.Name))] {
				res.skipped++
				continue
			}
			price := sp.Price
			if _, err := catalog.CreateProduct(ctx, service.ProductInput{
				Name:        sp.Name,
				Description: sp.Description,
				Price:       &price,
				Stock:       sp.Stock.String(),
				ImageURL:    sp.ImageURL,
				CategoryID:  category.ID,
			}); err != nil {
				return res, fmt.Errorf("create product %q: %w", sp.Name, err)
			}
			have[strings.ToLower(strings.TrimSpace(sp.Name))] = true
			res.created++
		}
	}

	slog.InfoContext(ctx, "catalog seeded", "categories", res.categories, "products", res.created, "skipped", res.skipped)
	return res, nil
}

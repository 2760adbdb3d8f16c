// internal/domain/product/import_service.go
package product

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/tealeg/xlsx"
	"github.com/your-org/saree-store/internal/domain/inventory"
	"github.com/your-org/saree-store/internal/pkg/apperror"
	"gorm.io/gorm"
)

// Import sheet columns, in the order the storefront's product sheet uses
var importColumns = []string{
	"title",
	"slug",
	"category",
	"description",
	"base_price",
	"variant_with_blouse_price",
	"variant_with_blouse_stock",
	"variant_without_blouse_price",
	"variant_without_blouse_stock",
}

// ImportRow is one product line of a catalog sheet with its two variants
type ImportRow struct {
	Line               int
	Title              string
	Slug               string
	Category           string
	Description        string
	BasePrice          decimal.Decimal
	WithBlousePrice    decimal.Decimal
	WithBlouseStock    int
	WithoutBlousePrice decimal.Decimal
	WithoutBlouseStock int
}

// RowError reports a sheet line that could not be imported
type RowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// ImportResult summarises an import run
type ImportResult struct {
	ProductsCreated int        `json:"products_created"`
	ProductsUpdated int        `json:"products_updated"`
	VariantsSynced  int        `json:"variants_synced"`
	Errors          []RowError `json:"errors,omitempty"`
}

// ImportService loads products and their blouse-option variants from sheets
type ImportService struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewImportService creates a new import service
func NewImportService(db *gorm.DB, logger *logrus.Logger) *ImportService {
	return &ImportService{
		db:     db,
		logger: logger,
	}
}

// ParseCSV reads import rows from a CSV document with a header line
func ParseCSV(r io.Reader) ([]ImportRow, []RowError, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, apperror.NewValidationError("file", "failed to read CSV: "+err.Error())
	}
	return parseRecords(records)
}

// ParseXLSX reads import rows from the first sheet of an Excel workbook
func ParseXLSX(r io.ReaderAt, size int64) ([]ImportRow, []RowError, error) {
	file, err := xlsx.OpenReaderAt(r, size)
	if err != nil {
		return nil, nil, apperror.NewValidationError("file", "failed to parse Excel file: "+err.Error())
	}
	return parseWorkbook(file)
}

// ParseXLSXFile reads import rows from an Excel workbook on disk
func ParseXLSXFile(path string) ([]ImportRow, []RowError, error) {
	file, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	return parseWorkbook(file)
}

func parseWorkbook(file *xlsx.File) ([]ImportRow, []RowError, error) {
	if len(file.Sheets) == 0 {
		return nil, nil, apperror.NewValidationError("file", "excel file has no sheets")
	}

	sheet := file.Sheets[0]
	records := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		if row == nil {
			records = append(records, nil)
			continue
		}
		cells := make([]string, len(row.Cells))
		for i, cell := range row.Cells {
			cells[i] = cell.String()
		}
		records = append(records, cells)
	}
	return parseRecords(records)
}

func parseRecords(records [][]string) ([]ImportRow, []RowError, error) {
	if len(records) == 0 {
		return nil, nil, apperror.NewValidationError("file", "import file is empty or missing header row")
	}

	index := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, col := range importColumns {
		if _, ok := index[col]; !ok {
			return nil, nil, apperror.NewValidationError("file", fmt.Sprintf("missing required column %q", col))
		}
	}

	var rows []ImportRow
	var rowErrors []RowError
	for i, record := range records[1:] {
		line := i + 2
		get := func(col string) string {
			idx := index[col]
			if idx < len(record) {
				return strings.TrimSpace(record[idx])
			}
			return ""
		}

		if isBlank(record) {
			continue
		}

		row, err := buildRow(line, get)
		if err != nil {
			rowErrors = append(rowErrors, RowError{Line: line, Message: err.Error()})
			continue
		}
		rows = append(rows, row)
	}

	return rows, rowErrors, nil
}

func buildRow(line int, get func(string) string) (ImportRow, error) {
	row := ImportRow{
		Line:        line,
		Title:       get("title"),
		Slug:        get("slug"),
		Category:    get("category"),
		Description: get("description"),
	}
	if row.Title == "" {
		return row, errors.New("title is required")
	}
	if row.Slug == "" {
		row.Slug = Slugify(row.Title)
	}

	var err error
	if row.BasePrice, err = parsePrice(get("base_price")); err != nil {
		return row, fmt.Errorf("base_price: %w", err)
	}
	if row.WithBlousePrice, err = parsePrice(get("variant_with_blouse_price")); err != nil {
		return row, fmt.Errorf("variant_with_blouse_price: %w", err)
	}
	if row.WithoutBlousePrice, err = parsePrice(get("variant_without_blouse_price")); err != nil {
		return row, fmt.Errorf("variant_without_blouse_price: %w", err)
	}
	if row.WithBlouseStock, err = parseStock(get("variant_with_blouse_stock")); err != nil {
		return row, fmt.Errorf("variant_with_blouse_stock: %w", err)
	}
	if row.WithoutBlouseStock, err = parseStock(get("variant_without_blouse_stock")); err != nil {
		return row, fmt.Errorf("variant_without_blouse_stock: %w", err)
	}
	return row, nil
}

func parsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid price %q", raw)
	}
	if price.IsNegative() {
		return decimal.Zero, fmt.Errorf("price must not be negative")
	}
	return price.Round(2), nil
}

func parseStock(raw string) (int, error) {
	stock, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid stock %q", raw)
	}
	if stock < 0 {
		return 0, fmt.Errorf("stock must not be negative")
	}
	return stock, nil
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Import upserts each row in its own transaction: the category is found or
// created by slug, the product is found or created by slug, and both blouse
// variants take the row's price and stock. Failed rows are reported and skipped.
func (s *ImportService) Import(ctx context.Context, rows []ImportRow, actorID *uint) (*ImportResult, error) {
	result := &ImportResult{}

	for _, row := range rows {
		created, err := s.importRow(ctx, row, actorID)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			s.logger.WithError(err).WithField("line", row.Line).Warn("Catalog import row failed")
			result.Errors = append(result.Errors, RowError{Line: row.Line, Message: err.Error()})
			continue
		}
		if created {
			result.ProductsCreated++
		} else {
			result.ProductsUpdated++
		}
		result.VariantsSynced += 2
	}

	s.logger.WithFields(logrus.Fields{
		"created": result.ProductsCreated,
		"updated": result.ProductsUpdated,
		"failed":  len(result.Errors),
	}).Info("Catalog import complete")

	return result, nil
}

func (s *ImportService) importRow(ctx context.Context, row ImportRow, actorID *uint) (bool, error) {
	created := false

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var categoryID *uint
		if row.Category != "" {
			category, err := getOrCreateCategory(tx, row.Category)
			if err != nil {
				return err
			}
			categoryID = &category.ID
		}

		var product Product
		err := tx.Where("slug = ?", row.Slug).First(&product).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			product = Product{
				Title:       row.Title,
				Slug:        row.Slug,
				Description: row.Description,
				CategoryID:  categoryID,
				BasePrice:   row.BasePrice,
				Active:      true,
			}
			if err := tx.Create(&product).Error; err != nil {
				return fmt.Errorf("failed to create product: %w", err)
			}
			created = true
		case err != nil:
			return fmt.Errorf("failed to load product: %w", err)
		}

		if err := syncVariant(tx, product.ID, WithBlouse, row.WithBlousePrice, row.WithBlouseStock, actorID); err != nil {
			return err
		}
		return syncVariant(tx, product.ID, WithoutBlouse, row.WithoutBlousePrice, row.WithoutBlouseStock, actorID)
	})

	return created, err
}

func syncVariant(tx *gorm.DB, productID uint, option BlouseOption, price decimal.Decimal, stock int, actorID *uint) error {
	var variant ProductVariant
	err := tx.Where("product_id = ? AND blouse_option = ?", productID, option).First(&variant).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		variant = ProductVariant{ProductID: productID, BlouseOption: option, Price: price, Stock: stock}
		if err := tx.Create(&variant).Error; err != nil {
			return fmt.Errorf("failed to create %s variant: %w", option, err)
		}
		return inventory.Record(tx, inventory.Movement{
			VariantID: variant.ID, StockBefore: 0, StockAfter: stock,
			Reason: inventory.ReasonImport, CreatedBy: actorID,
		})
	case err != nil:
		return fmt.Errorf("failed to load %s variant: %w", option, err)
	}

	before := variant.Stock
	update := map[string]interface{}{"price": price, "stock": stock, "sku": "", "color": ""}
	if err := tx.Model(&variant).Updates(update).Error; err != nil {
		return fmt.Errorf("failed to update %s variant: %w", option, err)
	}
	return inventory.Record(tx, inventory.Movement{
		VariantID: variant.ID, StockBefore: before, StockAfter: stock,
		Reason: inventory.ReasonImport, CreatedBy: actorID,
	})
}

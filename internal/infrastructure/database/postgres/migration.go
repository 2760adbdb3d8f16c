// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/saree-store/internal/domain/inventory"
	"github.com/your-org/saree-store/internal/domain/order"
	"github.com/your-org/saree-store/internal/domain/product"
	"github.com/your-org/saree-store/internal/domain/user"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Migration handles schema migrations and development seed data
type Migration struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, logger *logrus.Logger) *Migration {
	return &Migration{
		db:     db,
		logger: logger,
	}
}

// Models lists every persisted model in dependency order
func Models() []interface{} {
	return []interface{}{
		&user.User{},

		&product.Category{},
		&product.Product{},
		&product.ProductVariant{},

		&order.Order{},
		&order.OrderItem{},
		&order.OrderStatusHistory{},

		&inventory.StockMovement{},
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	m.logger.Info("Running database auto-migrations")

	for _, model := range Models() {
		m.logger.Debugf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.logger.Info("Database auto-migrations completed")
	return nil
}

// CreateIndexes creates composite indexes the struct tags cannot express
func (m *Migration) CreateIndexes() error {
	indexes := []string{
		// Catalog
		"CREATE INDEX IF NOT EXISTS idx_products_category_active ON products(category_id, active)",
		"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_product_variants_product_option ON product_variants(product_id, color, blouse_option)",

		// Orders
		"CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders(user_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_id_phone ON orders(id, phone)",
		"CREATE INDEX IF NOT EXISTS idx_order_status_history_order ON order_status_history(order_id, created_at)",

		// Stock ledger
		"CREATE INDEX IF NOT EXISTS idx_stock_movements_variant_created ON stock_movements(variant_id, created_at DESC)",
	}

	failed := 0
	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			m.logger.WithError(err).WithField("sql", indexSQL).Warn("Failed to create index")
			failed++
		}
	}

	m.logger.WithFields(logrus.Fields{
		"created": len(indexes) - failed,
		"failed":  failed,
	}).Info("Database indexes ensured")

	if failed > 0 {
		return fmt.Errorf("%d of %d indexes could not be created", failed, len(indexes))
	}
	return nil
}

// SeedOptions configures the development seed
type SeedOptions struct {
	AdminEmail    string
	AdminPassword string
	BcryptCost    int
}

// SeedInitialData inserts an admin account and a small demo catalog. It is
// idempotent: existing rows are left untouched.
func (m *Migration) SeedInitialData(opts SeedOptions) error {
	m.logger.Info("Seeding initial data")

	if err := m.seedAdminUser(opts); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	if err := m.seedCatalog(); err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}

	m.logger.Info("Initial data seeded")
	return nil
}

func (m *Migration) seedAdminUser(opts SeedOptions) error {
	if opts.AdminEmail == "" || opts.AdminPassword == "" {
		m.logger.Warn("Admin seed skipped: no credentials configured")
		return nil
	}

	email := user.NormalizeEmail(opts.AdminEmail)

	var existing user.User
	err := m.db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		m.logger.WithField("user_id", existing.ID).Debug("Admin user already exists")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	cost := opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(opts.AdminPassword), cost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	admin := user.User{
		Email:        email,
		PasswordHash: string(hashed),
		FirstName:    "Store",
		LastName:     "Admin",
		IsActive:     true,
		IsAdmin:      true,
	}
	if err := m.db.Create(&admin).Error; err != nil {
		return err
	}

	m.logger.WithField("email", email).Info("Created admin user")
	return nil
}

type seedProduct struct {
	title       string
	category    string
	description string
	price       string
	withBlouse  int
	without     int
}

var demoCatalog = []seedProduct{
	{"Kanjivaram Temple Border Silk", "Silk", "Pure mulberry silk with zari temple border.", "12500.00", 4, 2},
	{"Banarasi Katan Silk", "Silk", "Handwoven katan silk with floral buttas.", "9800.00", 3, 0},
	{"Chanderi Cotton Silk", "Cotton", "Lightweight sheer weave for daily wear.", "2450.00", 10, 6},
	{"Pochampally Ikat Cotton", "Cotton", "Double ikat geometric pattern.", "3200.00", 5, 5},
	{"Georgette Party Wear", "Georgette", "Sequinned georgette with a satin blouse piece.", "4100.00", 7, 0},
}

func (m *Migration) seedCatalog() error {
	var count int64
	if err := m.db.Model(&product.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		m.logger.Debug("Catalog already has products, skipping seed")
		return nil
	}

	return m.db.Transaction(func(tx *gorm.DB) error {
		categories := make(map[string]uint)
		for _, sp := range demoCatalog {
			if _, ok := categories[sp.category]; !ok {
				c := product.Category{Name: sp.category, Slug: product.Slugify(sp.category)}
				if err := tx.Where("slug = ?", c.Slug).FirstOrCreate(&c).Error; err != nil {
					return err
				}
				categories[sp.category] = c.ID
			}

			categoryID := categories[sp.category]
			price := decimal.RequireFromString(sp.price)
			p := product.Product{
				Title:       sp.title,
				Slug:        product.Slugify(sp.title),
				Description: sp.description,
				CategoryID:  &categoryID,
				BasePrice:   price,
				Active:      true,
				Variants: []product.ProductVariant{
					{BlouseOption: product.WithBlouse, Price: price, Stock: sp.withBlouse},
					{BlouseOption: product.WithoutBlouse, Price: price.Sub(decimal.NewFromInt(350)), Stock: sp.without},
				},
			}
			if err := tx.Create(&p).Error; err != nil {
				return fmt.Errorf("failed to create %s: %w", sp.title, err)
			}
			m.logger.WithField("product", p.Title).Debug("Seeded product")
		}
		return nil
	})
}

// DropAllTables drops every table in reverse dependency order
func (m *Migration) DropAllTables() error {
	m.logger.Warn("Dropping all database tables")

	models := Models()
	for i := len(models) - 1; i >= 0; i-- {
		if err := m.db.Migrator().DropTable(models[i]); err != nil {
			return fmt.Errorf("failed to drop table for %T: %w", models[i], err)
		}
	}
	return nil
}

// TableInfo is a row count for one table
type TableInfo struct {
	Table string `json:"table"`
	Rows  int64  `json:"rows"`
}

// GetTableInfo counts rows in every migrated table
func (m *Migration) GetTableInfo() ([]TableInfo, error) {
	models := Models()
	info := make([]TableInfo, 0, len(models))
	for _, model := range models {
		stmt := &gorm.Statement{DB: m.db}
		if err := stmt.Parse(model); err != nil {
			return nil, err
		}

		var count int64
		if err := m.db.Model(model).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", stmt.Schema.Table, err)
		}
		info = append(info, TableInfo{Table: stmt.Schema.Table, Rows: count})
		m.logger.WithFields(logrus.Fields{"table": stmt.Schema.Table, "rows": count}).Debug("Table info")
	}
	return info, nil
}

package inventory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/CarlosPavajeau/cetus/pkg/db/models"
)

func setupInventoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:inventory_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	// The models carry Postgres column defaults, so the test schema is
	// declared by hand for SQLite.
	statements := []string{`
CREATE TABLE products (
  id TEXT PRIMARY KEY,
  store_id TEXT NOT NULL,
  name TEXT NOT NULL,
  description TEXT,
  enabled INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
)`, `
CREATE TABLE variants (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  sku TEXT NOT NULL,
  price NUMERIC NOT NULL DEFAULT 0,
  stock INTEGER NOT NULL DEFAULT 0,
  sales_count INTEGER NOT NULL DEFAULT 0,
  deleted_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
)`, `
CREATE TABLE inventory_transactions (
  id TEXT PRIMARY KEY,
  variant_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  stock_after INTEGER NOT NULL,
  reason TEXT NOT NULL,
  actor_user_id TEXT,
  order_id TEXT,
  created_at DATETIME
)`}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func seedVariant(t *testing.T, db *gorm.DB, storeID uuid.UUID, stock int) models.Variant {
	t.Helper()

	product := models.Product{
		ID:      uuid.New(),
		StoreID: storeID,
		Name:    "Belt 40 pulgadas",
		Enabled: true,
	}
	require.NoError(t, db.Create(&product).Error)

	variant := models.Variant{
		ID:        uuid.New(),
		ProductID: product.ID,
		SKU:       "SKU-" + uuid.NewString()[:8],
		Price:     decimal.NewFromInt(150),
		Stock:     stock,
	}
	require.NoError(t, db.Create(&variant).Error)
	return variant
}

func softDeleteVariant(t *testing.T, db *gorm.DB, id uuid.UUID) {
	t.Helper()
	now := time.Now()
	require.NoError(t, db.Exec(`UPDATE variants SET deleted_at = ? WHERE id = ?`, now, id).Error)
}

func variantStock(t *testing.T, db *gorm.DB, id uuid.UUID) int {
	t.Helper()
	var variant models.Variant
	require.NoError(t, db.First(&variant, "id = ?", id).Error)
	return variant.Stock
}

package orders

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/CarlosPavajeau/cetus/pkg/db/models"
	"github.com/CarlosPavajeau/cetus/pkg/events"
	"github.com/CarlosPavajeau/cetus/pkg/logger"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:orders_" + uuid.NewString() + "?mode=memory&cache=shared"
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
CREATE TABLE orders (
  id TEXT PRIMARY KEY,
  order_number INTEGER NOT NULL,
  store_id TEXT NOT NULL,
  status TEXT NOT NULL,
  customer_name TEXT NOT NULL,
  customer_email TEXT NOT NULL,
  customer_phone TEXT,
  address TEXT,
  subtotal NUMERIC NOT NULL DEFAULT 0,
  discount NUMERIC NOT NULL DEFAULT 0,
  delivery_fee NUMERIC NOT NULL DEFAULT 0,
  total NUMERIC NOT NULL DEFAULT 0,
  transaction_id TEXT,
  delivered_at DATETIME,
  canceled_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
)`, `
CREATE TABLE order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  variant_id TEXT NOT NULL,
  product_name TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  price NUMERIC NOT NULL,
  created_at DATETIME
)`}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

type gormTxRunner struct {
	db *gorm.DB
}

func (g gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return g.db.WithContext(ctx).Transaction(fn)
}

// newTestService wires the service with a small bus so tests can observe what
// actually reached the channel after commit.
func newTestService(t *testing.T, db *gorm.DB) (Service, *events.Bus) {
	t.Helper()

	bus := events.NewBus(32)
	logg := logger.New(logger.Options{ServiceName: "orders-test", Output: io.Discard})
	uow, err := events.NewUnitOfWork(gormTxRunner{db: db}, bus, logg, nil)
	require.NoError(t, err)

	svc, err := NewService(NewRepository(db), uow)
	require.NoError(t, err)
	return svc, bus
}

func seedSaleVariant(t *testing.T, db *gorm.DB, storeID uuid.UUID, name string, price int64, stock int) models.Variant {
	t.Helper()

	product := models.Product{
		ID:      uuid.New(),
		StoreID: storeID,
		Name:    name,
		Enabled: true,
	}
	require.NoError(t, db.Create(&product).Error)

	variant := models.Variant{
		ID:        uuid.New(),
		ProductID: product.ID,
		SKU:       "SKU-" + uuid.NewString()[:8],
		Price:     decimal.NewFromInt(price),
		Stock:     stock,
	}
	require.NoError(t, db.Create(&variant).Error)
	return variant
}

func variantStock(t *testing.T, db *gorm.DB, id uuid.UUID) int {
	t.Helper()
	var variant models.Variant
	require.NoError(t, db.First(&variant, "id = ?", id).Error)
	return variant.Stock
}

func drainBus(t *testing.T, bus *events.Bus) []events.Event {
	t.Helper()
	var drained []events.Event
	for {
		select {
		case event := <-bus.Receive():
			drained = append(drained, event)
		default:
			return drained
		}
	}
}

package orders

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/CarlosPavajeau/cetus/pkg/db/models"
	"github.com/CarlosPavajeau/cetus/pkg/pagination"
)

// SaleVariant is the slice of catalog data order creation needs: the captured
// product name, the price at order time, and ownership for tenant checks.
type SaleVariant struct {
	VariantID   uuid.UUID       `gorm:"column:variant_id"`
	ProductName string          `gorm:"column:product_name"`
	Price       decimal.Decimal `gorm:"column:price"`
	StoreID     uuid.UUID       `gorm:"column:store_id"`
}

// Repository is the persistence boundary for order aggregates.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByStore(ctx context.Context, storeID uuid.UUID, params pagination.Params) ([]models.Order, string, error)
	NextOrderNumber(ctx context.Context, storeID uuid.UUID) (int64, error)
	UpdateStatus(ctx context.Context, order *models.Order) error
	FindVariantsForSale(ctx context.Context, storeID uuid.UUID, ids []uuid.UUID) ([]SaleVariant, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	for i := range order.Items {
		if order.Items[i].ID == uuid.Nil {
			order.Items[i].ID = uuid.New()
		}
		order.Items[i].OrderID = order.ID
	}
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListByStore(ctx context.Context, storeID uuid.UUID, params pagination.Params) ([]models.Order, string, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Preload("Items").
		Where("store_id = ?", storeID).
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.Order
	if err := query.Find(&rows).Error; err != nil {
		return nil, "", err
	}

	next := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[limit-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return rows, next, nil
}

// NextOrderNumber allocates the next per-store sequential number. Callers must
// run it inside the same transaction that inserts the order so two concurrent
// creations cannot claim the same number.
func (r *repository) NextOrderNumber(ctx context.Context, storeID uuid.UUID) (int64, error) {
	var row struct {
		Next int64 `gorm:"column:next"`
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(MAX(order_number), 0) + 1 AS next
		FROM orders
		WHERE store_id = ?`, storeID).Scan(&row).Error
	if err != nil {
		return 0, err
	}
	return row.Next, nil
}

func (r *repository) UpdateStatus(ctx context.Context, order *models.Order) error {
	updates := map[string]any{
		"status": order.Status,
	}
	if order.TransactionID != nil {
		updates["transaction_id"] = *order.TransactionID
	}
	if order.DeliveredAt != nil {
		updates["delivered_at"] = *order.DeliveredAt
	}
	if order.CanceledAt != nil {
		updates["canceled_at"] = *order.CanceledAt
	}
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", order.ID).
		Updates(updates).Error
}

func (r *repository) FindVariantsForSale(ctx context.Context, storeID uuid.UUID, ids []uuid.UUID) ([]SaleVariant, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []SaleVariant
	err := r.db.WithContext(ctx).Raw(`
		SELECT v.id AS variant_id, p.name AS product_name, v.price, p.store_id
		FROM variants v
		JOIN products p ON p.id = v.product_id
		WHERE v.id IN ? AND v.deleted_at IS NULL AND p.store_id = ?`,
		ids, storeID).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

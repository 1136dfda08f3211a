package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/CarlosPavajeau/cetus/pkg/db/models"
)

// Repository covers the variant and audit-trail persistence the inventory
// service needs beyond the reservation statement itself.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindVariant(ctx context.Context, id uuid.UUID) (*models.Variant, error)
	FindVariantStore(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	IncrementStock(ctx context.Context, id uuid.UUID, qty int) (int64, error)
	DecrementStockIfAvailable(ctx context.Context, id uuid.UUID, qty int) (int64, error)
	CurrentStock(ctx context.Context, id uuid.UUID) (int, error)
	CreateTransaction(ctx context.Context, row *models.InventoryTransaction) error
	ListTransactions(ctx context.Context, variantID uuid.UUID, limit int) ([]models.InventoryTransaction, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an inventory repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindVariant(ctx context.Context, id uuid.UUID) (*models.Variant, error) {
	var variant models.Variant
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&variant).Error
	if err != nil {
		return nil, err
	}
	return &variant, nil
}

func (r *repository) FindVariantStore(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var row struct {
		StoreID uuid.UUID `gorm:"column:store_id"`
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT p.store_id
		FROM variants v
		JOIN products p ON p.id = v.product_id
		WHERE v.id = ?`, id).Scan(&row).Error
	if err != nil {
		return uuid.Nil, err
	}
	if row.StoreID == uuid.Nil {
		return uuid.Nil, gorm.ErrRecordNotFound
	}
	return row.StoreID, nil
}

func (r *repository) IncrementStock(ctx context.Context, id uuid.UUID, qty int) (int64, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE variants
		SET stock = stock + ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND deleted_at IS NULL`, qty, id)
	return res.RowsAffected, res.Error
}

// DecrementStockIfAvailable applies the same conditional predicate the
// reservation engine uses, for single-variant manual adjustments.
func (r *repository) DecrementStockIfAvailable(ctx context.Context, id uuid.UUID, qty int) (int64, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE variants
		SET stock = stock - ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND deleted_at IS NULL AND stock >= ?`, qty, id, qty)
	return res.RowsAffected, res.Error
}

func (r *repository) CurrentStock(ctx context.Context, id uuid.UUID) (int, error) {
	var row struct {
		Stock int `gorm:"column:stock"`
	}
	err := r.db.WithContext(ctx).Raw(`SELECT stock FROM variants WHERE id = ?`, id).Scan(&row).Error
	if err != nil {
		return 0, err
	}
	return row.Stock, nil
}

func (r *repository) CreateTransaction(ctx context.Context, row *models.InventoryTransaction) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *repository) ListTransactions(ctx context.Context, variantID uuid.UUID, limit int) ([]models.InventoryTransaction, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []models.InventoryTransaction
	err := r.db.WithContext(ctx).
		Where("variant_id = ?", variantID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

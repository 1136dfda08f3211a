package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository covers the catalog writes the event handlers need.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	IncrementSalesCount(ctx context.Context, variantID uuid.UUID, qty int) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a products repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// IncrementSalesCount bumps the variant's lifetime sales counter. Soft-deleted
// variants still count: the sale happened while they were live.
func (r *repository) IncrementSalesCount(ctx context.Context, variantID uuid.UUID, qty int) (int64, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE variants
		SET sales_count = sales_count + ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, qty, variantID)
	return res.RowsAffected, res.Error
}

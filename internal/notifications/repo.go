package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/CarlosPavajeau/cetus/pkg/db/models"
	"github.com/CarlosPavajeau/cetus/pkg/enums"
)

// Repository persists notification intents and the store contact lookup the
// seller copies need.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, row *models.Notification) error
	MarkStatus(ctx context.Context, id uuid.UUID, status enums.NotificationStatus, sentAt *time.Time) error
	ListByStore(ctx context.Context, storeID uuid.UUID, limit int) ([]models.Notification, error)
	FindStore(ctx context.Context, id uuid.UUID) (*models.Store, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a notifications repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, row *models.Notification) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *repository) MarkStatus(ctx context.Context, id uuid.UUID, status enums.NotificationStatus, sentAt *time.Time) error {
	updates := map[string]any{"status": status}
	if sentAt != nil {
		updates["sent_at"] = *sentAt
	}
	return r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) ListByStore(ctx context.Context, storeID uuid.UUID, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []models.Notification
	err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindStore(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	var store models.Store
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&store).Error
	if err != nil {
		return nil, err
	}
	return &store, nil
}

package reviews

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/CarlosPavajeau/cetus/pkg/db/models"
)

// Repository persists deferred review requests.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, row *models.ReviewRequest) error
	ListDue(ctx context.Context, now time.Time, limit int) ([]models.ReviewRequest, error)
	MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a reviews repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, row *models.ReviewRequest) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(row).Error
}

// ListDue returns unsent requests whose send time has passed, oldest first.
func (r *repository) ListDue(ctx context.Context, now time.Time, limit int) ([]models.ReviewRequest, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []models.ReviewRequest
	err := r.db.WithContext(ctx).
		Where("send_at <= ? AND sent_at IS NULL", now).
		Order("send_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.ReviewRequest{}).
		Where("id = ?", id).
		Update("sent_at", sentAt).Error
}

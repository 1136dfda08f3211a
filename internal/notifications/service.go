package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/CarlosPavajeau/cetus/pkg/db/models"
	"github.com/CarlosPavajeau/cetus/pkg/enums"
	pkgerrors "github.com/CarlosPavajeau/cetus/pkg/errors"
	"github.com/CarlosPavajeau/cetus/pkg/logger"
)

// Mailer is the outbound delivery boundary. The real implementation talks to
// the transactional email provider; tests inject a recorder.
type Mailer interface {
	Send(ctx context.Context, recipient string, template enums.NotificationTemplate, payload []byte) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service persists each notification as a durable intent row before handing
// it to the mailer, so a delivery failure can be retried from the record.
type Service interface {
	Enqueue(ctx context.Context, input EnqueueInput) (*models.Notification, error)
	ListByStore(ctx context.Context, storeID uuid.UUID, limit int) ([]models.Notification, error)
}

type service struct {
	repo   Repository
	mailer Mailer
	tx     txRunner
	logg   *logger.Logger
}

// NewService builds the notifications service with the required dependencies.
func NewService(repo Repository, mailer Mailer, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if mailer == nil {
		return nil, fmt.Errorf("mailer required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, mailer: mailer, tx: tx, logg: logg}, nil
}

// EnqueueInput describes one notification to record and deliver.
type EnqueueInput struct {
	StoreID   uuid.UUID
	Recipient string
	Template  enums.NotificationTemplate
	Payload   any
}

// Enqueue writes the pending row, attempts delivery, and records the outcome.
// A mailer failure leaves the row in failed status and is returned to the
// caller; the row itself survives for later retry.
func (s *service) Enqueue(ctx context.Context, input EnqueueInput) (*models.Notification, error) {
	if input.Recipient == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipient required")
	}
	if input.Template == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "template required")
	}

	payload, err := json.Marshal(input.Payload)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "encode notification payload")
	}

	row := models.Notification{
		StoreID:   input.StoreID,
		Recipient: input.Recipient,
		Channel:   enums.NotificationChannelEmail,
		Template:  input.Template,
		Payload:   payload,
		Status:    enums.NotificationStatusPending,
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Create(ctx, &row)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist notification")
	}

	if err := s.mailer.Send(ctx, row.Recipient, row.Template, payload); err != nil {
		if markErr := s.repo.MarkStatus(ctx, row.ID, enums.NotificationStatusFailed, nil); markErr != nil {
			s.logg.Error(ctx, "mark notification failed", markErr)
		}
		row.Status = enums.NotificationStatusFailed
		return &row, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deliver notification")
	}

	now := time.Now()
	if err := s.repo.MarkStatus(ctx, row.ID, enums.NotificationStatusSent, &now); err != nil {
		s.logg.Error(ctx, "mark notification sent", err)
	}
	row.Status = enums.NotificationStatusSent
	row.SentAt = &now
	return &row, nil
}

func (s *service) ListByStore(ctx context.Context, storeID uuid.UUID, limit int) ([]models.Notification, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	rows, err := s.repo.ListByStore(ctx, storeID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}
	return rows, nil
}

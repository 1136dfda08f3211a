package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	pkgerrors "github.com/CarlosPavajeau/cetus/pkg/errors"
	"github.com/CarlosPavajeau/cetus/pkg/logger"
	"github.com/CarlosPavajeau/cetus/pkg/redis"
)

// LinkStore is the cache surface payment links live in. *redis.Client
// satisfies it.
type LinkStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	PaymentLinkKey(orderID string) string
}

// Service owns the checkout-link lifecycle and the release of payments when
// an order dies before fulfillment.
type Service interface {
	IssueLink(ctx context.Context, input IssueLinkInput) (string, error)
	Link(ctx context.Context, orderID uuid.UUID) (string, error)
	InvalidateLink(ctx context.Context, orderID uuid.UUID) error
	Release(ctx context.Context, orderID uuid.UUID, transactionID *string) error
}

type service struct {
	gateway Gateway
	store   LinkStore
	linkTTL time.Duration
	logg    *logger.Logger
}

// NewService builds the payments service with the required dependencies.
func NewService(gateway Gateway, store LinkStore, linkTTL time.Duration, logg *logger.Logger) (Service, error) {
	if gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if store == nil {
		return nil, fmt.Errorf("link store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if linkTTL <= 0 {
		linkTTL = 72 * time.Hour
	}
	return &service{gateway: gateway, store: store, linkTTL: linkTTL, logg: logg}, nil
}

// IssueLinkInput carries the order data the gateway needs for a checkout link.
type IssueLinkInput struct {
	OrderID     uuid.UUID
	OrderNumber int64
	Amount      decimal.Decimal
	Reference   string
}

// IssueLink mints a checkout link at the gateway and caches it under the
// order's key. The cache TTL doubles as the link's validity window.
func (s *service) IssueLink(ctx context.Context, input IssueLinkInput) (string, error) {
	if input.OrderID == uuid.Nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	req := CreateLinkRequest{
		OrderID:     input.OrderID,
		OrderNumber: input.OrderNumber,
		Amount:      input.Amount,
		Reference:   input.Reference,
	}
	link, err := s.gateway.CreatePaymentLink(ctx, req)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment link")
	}

	key := s.store.PaymentLinkKey(input.OrderID.String())
	if err := s.store.Set(ctx, key, link.URL, s.linkTTL); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cache payment link")
	}
	return link.URL, nil
}

// Link returns the cached checkout URL for the order, or NOT_FOUND once the
// link was invalidated or its TTL lapsed.
func (s *service) Link(ctx context.Context, orderID uuid.UUID) (string, error) {
	if orderID == uuid.Nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	url, err := s.store.Get(ctx, s.store.PaymentLinkKey(orderID.String()))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", pkgerrors.New(pkgerrors.CodeNotFound, "payment link not found")
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read payment link")
	}
	return url, nil
}

// InvalidateLink drops the cached link so a paid or dead order can no longer
// be checked out.
func (s *service) InvalidateLink(ctx context.Context, orderID uuid.UUID) error {
	if orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if err := s.store.Del(ctx, s.store.PaymentLinkKey(orderID.String())); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "invalidate payment link")
	}
	return nil
}

// Release undoes the money side of a canceled order: an approved payment is
// refunded, a pending one voided, and the cached link is dropped either way.
// Both legs are attempted; their failures are combined.
func (s *service) Release(ctx context.Context, orderID uuid.UUID, transactionID *string) error {
	if orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	var errs error
	if transactionID != nil && *transactionID != "" {
		errs = multierr.Append(errs, s.releasePayment(ctx, *transactionID))
	}
	errs = multierr.Append(errs, s.InvalidateLink(ctx, orderID))
	return errs
}

func (s *service) releasePayment(ctx context.Context, transactionID string) error {
	payment, err := s.gateway.FindPayment(ctx, transactionID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find payment")
	}

	switch payment.Status {
	case PaymentStatusApproved:
		if err := s.gateway.RefundPayment(ctx, transactionID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "refund payment")
		}
	case PaymentStatusPending:
		if err := s.gateway.VoidPayment(ctx, transactionID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "void payment")
		}
	default:
		// Declined, voided and refunded transactions hold no funds.
	}
	return nil
}

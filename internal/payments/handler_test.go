package payments

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/CarlosPavajeau/cetus/pkg/events"
	"github.com/CarlosPavajeau/cetus/pkg/logger"
)

type recordingService struct {
	issued      []IssueLinkInput
	invalidated []uuid.UUID
	released    []uuid.UUID
}

func (s *recordingService) IssueLink(ctx context.Context, input IssueLinkInput) (string, error) {
	s.issued = append(s.issued, input)
	return "https://checkout.example/" + input.OrderID.String(), nil
}

func (s *recordingService) Link(ctx context.Context, orderID uuid.UUID) (string, error) {
	return "", nil
}

func (s *recordingService) InvalidateLink(ctx context.Context, orderID uuid.UUID) error {
	s.invalidated = append(s.invalidated, orderID)
	return nil
}

func (s *recordingService) Release(ctx context.Context, orderID uuid.UUID, transactionID *string) error {
	s.released = append(s.released, orderID)
	return nil
}

func newHandlerRegistry(t *testing.T) (*events.Registry, *recordingService) {
	t.Helper()

	svc := &recordingService{}
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.ErrorLevel, Output: io.Discard})

	handler, err := NewHandler(svc, logg)
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}

	reg := events.NewRegistry()
	handler.Register(reg)
	return reg, svc
}

func dispatchOne(t *testing.T, reg *events.Registry, event events.Event) {
	t.Helper()

	registrations := reg.HandlersFor(event.EventName())
	if len(registrations) != 1 {
		t.Fatalf("expected exactly one handler for %s, got %d", event.EventName(), len(registrations))
	}
	if err := registrations[0].Handle(context.Background(), event); err != nil {
		t.Fatalf("handle %s: %v", event.EventName(), err)
	}
}

func TestOrderCreatedIssuesLinkWithOrderReference(t *testing.T) {
	reg, svc := newHandlerRegistry(t)

	orderID := uuid.New()
	dispatchOne(t, reg, events.OrderCreated{
		OrderID:     orderID,
		OrderNumber: 42,
		Total:       decimal.NewFromInt(400),
	})

	if len(svc.issued) != 1 {
		t.Fatalf("expected 1 issued link, got %d", len(svc.issued))
	}
	issued := svc.issued[0]
	if issued.OrderID != orderID {
		t.Errorf("issued for order %s, want %s", issued.OrderID, orderID)
	}
	if issued.Reference != "order-42" {
		t.Errorf("reference = %q, want order-42", issued.Reference)
	}
	if !issued.Amount.Equal(decimal.NewFromInt(400)) {
		t.Errorf("amount = %s, want 400", issued.Amount)
	}
}

func TestOrderPaidInvalidatesLinkExactlyOnce(t *testing.T) {
	reg, svc := newHandlerRegistry(t)

	orderID := uuid.New()
	dispatchOne(t, reg, events.OrderPaid{OrderID: orderID, TransactionID: "wompi-7"})

	if len(svc.invalidated) != 1 {
		t.Fatalf("expected exactly one invalidation, got %d", len(svc.invalidated))
	}
	if svc.invalidated[0] != orderID {
		t.Errorf("invalidated %s, want %s", svc.invalidated[0], orderID)
	}
	if len(svc.released) != 0 {
		t.Errorf("payment was released on a paid event")
	}
}

func TestOrderCanceledReleasesPayment(t *testing.T) {
	reg, svc := newHandlerRegistry(t)

	orderID := uuid.New()
	tx := "wompi-9"
	dispatchOne(t, reg, events.OrderCanceled{OrderID: orderID, TransactionID: &tx})

	if len(svc.released) != 1 || svc.released[0] != orderID {
		t.Fatalf("expected release for %s, got %v", orderID, svc.released)
	}
}

package events

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestOnRegistersUnderConcreteEventName(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	On(reg, "notify-customer", func(ctx context.Context, event OrderPaid) error {
		return nil
	})

	if got := len(reg.HandlersFor(NameOrderPaid)); got != 1 {
		t.Fatalf("expected 1 handler for order.paid, got %d", got)
	}
	if got := len(reg.HandlersFor(NameOrderCanceled)); got != 0 {
		t.Fatalf("expected no handlers for order.canceled, got %d", got)
	}
}

func TestHandlersRunInRegistrationOrder(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	var calls []string
	On(reg, "first", func(ctx context.Context, event OrderCanceled) error {
		calls = append(calls, "first")
		return nil
	})
	On(reg, "second", func(ctx context.Context, event OrderCanceled) error {
		calls = append(calls, "second")
		return nil
	})

	event := OrderCanceled{OrderID: uuid.New()}
	for _, registration := range reg.HandlersFor(NameOrderCanceled) {
		if err := registration.handler.Handle(context.Background(), event); err != nil {
			t.Fatalf("handle: %v", err)
		}
	}

	if len(calls) != 2 || calls[0] != "first" || calls[1] != "second" {
		t.Fatalf("unexpected call order: %v", calls)
	}
}

func TestTypedHandlerRejectsWrongPayload(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	On(reg, "restock", func(ctx context.Context, event OrderCanceled) error {
		t.Fatal("handler must not run for mismatched payload")
		return nil
	})

	registration := reg.HandlersFor(NameOrderCanceled)[0]
	if err := registration.handler.Handle(context.Background(), OrderPaid{}); err == nil {
		t.Fatal("expected type mismatch error")
	}
}

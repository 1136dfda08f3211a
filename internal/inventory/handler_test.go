package inventory

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/CarlosPavajeau/cetus/pkg/events"
	"github.com/CarlosPavajeau/cetus/pkg/logger"
)

func newHandlerLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

// An order with variant A qty 2 and variant B qty 1 is canceled: A gains 2,
// B gains 1, and no other variant changes.
func TestRestockHandlerRestoresExactQuantities(t *testing.T) {
	t.Parallel()

	db := setupInventoryTestDB(t)
	storeID := uuid.New()
	variantA := seedVariant(t, db, storeID, 0)
	variantB := seedVariant(t, db, storeID, 4)
	untouched := seedVariant(t, db, storeID, 7)

	svc := newTestService(t, db)
	handler, err := NewRestockHandler(svc, gormTxRunner{db: db}, newHandlerLogger())
	require.NoError(t, err)

	reg := events.NewRegistry()
	handler.Register(reg)
	registrations := reg.HandlersFor(events.NameOrderCanceled)
	require.Len(t, registrations, 1)

	event := events.OrderCanceled{
		OrderID:    uuid.New(),
		OccurredAt: time.Now(),
		Items: []events.ItemSnapshot{
			{VariantID: variantA.ID, Quantity: 2},
			{VariantID: variantB.ID, Quantity: 1},
		},
	}
	require.NoError(t, handler.handleOrderCanceled(context.Background(), event))

	require.Equal(t, 2, variantStock(t, db, variantA.ID))
	require.Equal(t, 5, variantStock(t, db, variantB.ID))
	require.Equal(t, 7, variantStock(t, db, untouched.ID))
}

func TestRestockHandlerIgnoresEmptyItemList(t *testing.T) {
	t.Parallel()

	db := setupInventoryTestDB(t)
	svc := newTestService(t, db)
	handler, err := NewRestockHandler(svc, gormTxRunner{db: db}, newHandlerLogger())
	require.NoError(t, err)

	require.NoError(t, handler.handleOrderCanceled(context.Background(), events.OrderCanceled{OrderID: uuid.New()}))
}

func TestRestockHandlerRollsBackWholeEventOnFailure(t *testing.T) {
	t.Parallel()

	db := setupInventoryTestDB(t)
	storeID := uuid.New()
	variantA := seedVariant(t, db, storeID, 0)

	svc := newTestService(t, db)
	handler, err := NewRestockHandler(svc, gormTxRunner{db: db}, newHandlerLogger())
	require.NoError(t, err)

	event := events.OrderCanceled{
		OrderID: uuid.New(),
		Items: []events.ItemSnapshot{
			{VariantID: variantA.ID, Quantity: 2},
			{VariantID: uuid.New(), Quantity: 1}, // unknown variant
		},
	}
	require.Error(t, handler.handleOrderCanceled(context.Background(), event))

	// The successful first increment is rolled back with the failed second.
	require.Equal(t, 0, variantStock(t, db, variantA.ID))
}

package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/CarlosPavajeau/cetus/internal/inventory"
	"github.com/CarlosPavajeau/cetus/pkg/db/models"
	"github.com/CarlosPavajeau/cetus/pkg/enums"
	pkgerrors "github.com/CarlosPavajeau/cetus/pkg/errors"
	"github.com/CarlosPavajeau/cetus/pkg/events"
	"github.com/CarlosPavajeau/cetus/pkg/pagination"
)

func TestCreateReservesStockAndPublishesOrderCreated(t *testing.T) {
	t.Parallel()

	db := setupOrdersTestDB(t)
	svc, bus := newTestService(t, db)

	storeID := uuid.New()
	belt := seedSaleVariant(t, db, storeID, "Belt 40 pulgadas", 150, 10)
	gorra := seedSaleVariant(t, db, storeID, "Gorra negra", 80, 4)

	order, err := svc.Create(context.Background(), CreateOrderInput{
		StoreID:       storeID,
		CustomerName:  "Laura Gomez",
		CustomerEmail: "laura@example.com",
		DeliveryFee:   decimal.NewFromInt(20),
		Items: []CreateOrderItemInput{
			{VariantID: belt.ID, Quantity: 2},
			{VariantID: gorra.ID, Quantity: 1},
		},
	})
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusPendingPayment, order.Status)
	require.EqualValues(t, 1, order.OrderNumber)
	require.Len(t, order.Items, 2)

	// subtotal 2*150 + 1*80 = 380, total 400 with delivery fee.
	require.True(t, order.Subtotal.Equal(decimal.NewFromInt(380)), "subtotal = %s", order.Subtotal)
	require.True(t, order.Total.Equal(decimal.NewFromInt(400)), "total = %s", order.Total)

	require.Equal(t, 8, variantStock(t, db, belt.ID))
	require.Equal(t, 3, variantStock(t, db, gorra.ID))

	published := drainBus(t, bus)
	require.Len(t, published, 1)
	created, ok := published[0].(events.OrderCreated)
	require.True(t, ok, "expected OrderCreated, got %T", published[0])
	require.Equal(t, order.ID, created.OrderID)
	require.Len(t, created.Items, 2)
}

func TestCreateCapturesPriceAtOrderTime(t *testing.T) {
	t.Parallel()

	db := setupOrdersTestDB(t)
	svc, _ := newTestService(t, db)

	storeID := uuid.New()
	belt := seedSaleVariant(t, db, storeID, "Belt 40 pulgadas", 150, 5)

	order, err := svc.Create(context.Background(), CreateOrderInput{
		StoreID:       storeID,
		CustomerName:  "Laura Gomez",
		CustomerEmail: "laura@example.com",
		Items:         []CreateOrderItemInput{{VariantID: belt.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	// A later catalog price change must not touch the stored line item.
	require.NoError(t, db.Exec(`UPDATE variants SET price = 999 WHERE id = ?`, belt.ID).Error)

	reloaded, err := svc.FindByID(context.Background(), storeID, order.ID)
	require.NoError(t, err)
	require.True(t, reloaded.Items[0].Price.Equal(decimal.NewFromInt(150)))
}

func TestCreateInsufficientStockRollsBackEverything(t *testing.T) {
	t.Parallel()

	db := setupOrdersTestDB(t)
	svc, bus := newTestService(t, db)

	storeID := uuid.New()
	belt := seedSaleVariant(t, db, storeID, "Belt 40 pulgadas", 150, 10)
	gorra := seedSaleVariant(t, db, storeID, "Gorra negra", 80, 1)

	_, err := svc.Create(context.Background(), CreateOrderInput{
		StoreID:       storeID,
		CustomerName:  "Laura Gomez",
		CustomerEmail: "laura@example.com",
		Items: []CreateOrderItemInput{
			{VariantID: belt.ID, Quantity: 2},
			{VariantID: gorra.ID, Quantity: 3},
		},
	})
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeInsufficientStock, typed.Code())

	details, ok := typed.Details().([]map[string]any)
	require.True(t, ok, "expected per-variant details, got %T", typed.Details())
	require.Len(t, details, 1)
	require.Equal(t, gorra.ID.String(), details[0]["variant_id"])
	require.Equal(t, 3, details[0]["requested"])
	require.Equal(t, 1, details[0]["available"])

	// All-or-nothing: the belt decrement rolled back too.
	require.Equal(t, 10, variantStock(t, db, belt.ID))
	require.Equal(t, 1, variantStock(t, db, gorra.ID))

	var count int64
	require.NoError(t, db.Table("orders").Count(&count).Error)
	require.Zero(t, count)
	require.Empty(t, drainBus(t, bus))
}

func TestCreateRejectsForeignAndUnknownVariants(t *testing.T) {
	t.Parallel()

	db := setupOrdersTestDB(t)
	svc, bus := newTestService(t, db)

	storeID := uuid.New()
	foreign := seedSaleVariant(t, db, uuid.New(), "Ajena", 10, 50)

	_, err := svc.Create(context.Background(), CreateOrderInput{
		StoreID:       storeID,
		CustomerName:  "Laura Gomez",
		CustomerEmail: "laura@example.com",
		Items: []CreateOrderItemInput{
			{VariantID: foreign.ID, Quantity: 1},
			{VariantID: uuid.New(), Quantity: 1},
		},
	})
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeConflict, typed.Code())

	details, ok := typed.Details().([]map[string]any)
	require.True(t, ok)
	reasons := make(map[string]string, len(details))
	for _, row := range details {
		reasons[row["variant_id"].(string)] = row["reason"].(string)
	}
	require.Equal(t, string(inventory.FailureWrongStore), reasons[foreign.ID.String()])

	require.Equal(t, 50, variantStock(t, db, foreign.ID))
	require.Empty(t, drainBus(t, bus))
}

func TestCreateCollapsesDuplicateVariantLines(t *testing.T) {
	t.Parallel()

	db := setupOrdersTestDB(t)
	svc, _ := newTestService(t, db)

	storeID := uuid.New()
	belt := seedSaleVariant(t, db, storeID, "Belt 40 pulgadas", 150, 5)

	order, err := svc.Create(context.Background(), CreateOrderInput{
		StoreID:       storeID,
		CustomerName:  "Laura Gomez",
		CustomerEmail: "laura@example.com",
		Items: []CreateOrderItemInput{
			{VariantID: belt.ID, Quantity: 2},
			{VariantID: belt.ID, Quantity: 1},
		},
	})
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	require.Equal(t, 3, order.Items[0].Quantity)
	require.Equal(t, 2, variantStock(t, db, belt.ID))
}

func TestCreateRejectsExcessiveDiscount(t *testing.T) {
	t.Parallel()

	db := setupOrdersTestDB(t)
	svc, bus := newTestService(t, db)

	storeID := uuid.New()
	belt := seedSaleVariant(t, db, storeID, "Belt 40 pulgadas", 150, 5)

	_, err := svc.Create(context.Background(), CreateOrderInput{
		StoreID:       storeID,
		CustomerName:  "Laura Gomez",
		CustomerEmail: "laura@example.com",
		Discount:      decimal.NewFromInt(500),
		Items:         []CreateOrderItemInput{{VariantID: belt.ID, Quantity: 1}},
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())

	// Validation failed after the reservation, so the rollback must restore it.
	require.Equal(t, 5, variantStock(t, db, belt.ID))
	require.Empty(t, drainBus(t, bus))
}

func TestOrderNumbersAreSequentialPerStore(t *testing.T) {
	t.Parallel()

	db := setupOrdersTestDB(t)
	svc, _ := newTestService(t, db)

	storeA := uuid.New()
	storeB := uuid.New()
	variantA := seedSaleVariant(t, db, storeA, "Belt", 150, 50)
	variantB := seedSaleVariant(t, db, storeB, "Gorra", 80, 50)

	input := func(storeID uuid.UUID, variantID uuid.UUID) CreateOrderInput {
		return CreateOrderInput{
			StoreID:       storeID,
			CustomerName:  "Laura Gomez",
			CustomerEmail: "laura@example.com",
			Items:         []CreateOrderItemInput{{VariantID: variantID, Quantity: 1}},
		}
	}

	first, err := svc.Create(context.Background(), input(storeA, variantA.ID))
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), input(storeA, variantA.ID))
	require.NoError(t, err)
	other, err := svc.Create(context.Background(), input(storeB, variantB.ID))
	require.NoError(t, err)

	require.EqualValues(t, 1, first.OrderNumber)
	require.EqualValues(t, 2, second.OrderNumber)
	require.EqualValues(t, 1, other.OrderNumber)
}

func createPendingOrder(t *testing.T, svc Service, storeID, variantID uuid.UUID) *models.Order {
	t.Helper()
	order, err := svc.Create(context.Background(), CreateOrderInput{
		StoreID:       storeID,
		CustomerName:  "Laura Gomez",
		CustomerEmail: "laura@example.com",
		Items:         []CreateOrderItemInput{{VariantID: variantID, Quantity: 1}},
	})
	require.NoError(t, err)
	return order
}

func TestConfirmPaymentPersistsAndPublishesOrderPaid(t *testing.T) {
	t.Parallel()

	db := setupOrdersTestDB(t)
	svc, bus := newTestService(t, db)

	storeID := uuid.New()
	belt := seedSaleVariant(t, db, storeID, "Belt", 150, 5)
	order := createPendingOrder(t, svc, storeID, belt.ID)
	drainBus(t, bus)

	confirmed, err := svc.ConfirmPayment(context.Background(), storeID, order.ID, "wompi-123")
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusPaymentConfirmed, confirmed.Status)
	require.NotNil(t, confirmed.TransactionID)
	require.Equal(t, "wompi-123", *confirmed.TransactionID)

	reloaded, err := svc.FindByID(context.Background(), storeID, order.ID)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusPaymentConfirmed, reloaded.Status)
	require.NotNil(t, reloaded.TransactionID)

	published := drainBus(t, bus)
	require.Len(t, published, 1)
	paid, ok := published[0].(events.OrderPaid)
	require.True(t, ok, "expected OrderPaid, got %T", published[0])
	require.Equal(t, "wompi-123", paid.TransactionID)
}

func TestCancelPublishesEventWithItemSnapshots(t *testing.T) {
	t.Parallel()

	db := setupOrdersTestDB(t)
	svc, bus := newTestService(t, db)

	storeID := uuid.New()
	belt := seedSaleVariant(t, db, storeID, "Belt", 150, 5)
	order := createPendingOrder(t, svc, storeID, belt.ID)
	drainBus(t, bus)

	canceled, err := svc.Cancel(context.Background(), storeID, order.ID)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusCanceled, canceled.Status)
	require.NotNil(t, canceled.CanceledAt)

	published := drainBus(t, bus)
	require.Len(t, published, 1)
	event, ok := published[0].(events.OrderCanceled)
	require.True(t, ok, "expected OrderCanceled, got %T", published[0])
	require.Len(t, event.Items, 1)
	require.Equal(t, belt.ID, event.Items[0].VariantID)
}

func TestCancelingTerminalOrderFailsAndPublishesNothing(t *testing.T) {
	t.Parallel()

	db := setupOrdersTestDB(t)
	svc, bus := newTestService(t, db)

	storeID := uuid.New()
	belt := seedSaleVariant(t, db, storeID, "Belt", 150, 5)
	order := createPendingOrder(t, svc, storeID, belt.ID)

	_, err := svc.Cancel(context.Background(), storeID, order.ID)
	require.NoError(t, err)
	drainBus(t, bus)

	_, err = svc.Cancel(context.Background(), storeID, order.ID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
	require.Empty(t, drainBus(t, bus))
}

func TestDeliverFromShippedViaUpdateStatus(t *testing.T) {
	t.Parallel()

	db := setupOrdersTestDB(t)
	svc, bus := newTestService(t, db)

	storeID := uuid.New()
	belt := seedSaleVariant(t, db, storeID, "Belt", 150, 5)
	order := createPendingOrder(t, svc, storeID, belt.ID)

	_, err := svc.ConfirmPayment(context.Background(), storeID, order.ID, "wompi-9")
	require.NoError(t, err)
	_, err = svc.UpdateStatus(context.Background(), storeID, order.ID, enums.OrderStatusProcessing)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(context.Background(), storeID, order.ID, enums.OrderStatusShipped)
	require.NoError(t, err)
	drainBus(t, bus)

	delivered, err := svc.Deliver(context.Background(), storeID, order.ID)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusDelivered, delivered.Status)
	require.NotNil(t, delivered.DeliveredAt)

	published := drainBus(t, bus)
	require.Len(t, published, 1)
	_, ok := published[0].(events.OrderDelivered)
	require.True(t, ok, "expected OrderDelivered, got %T", published[0])
}

func TestFindByIDHidesForeignStoreOrders(t *testing.T) {
	t.Parallel()

	db := setupOrdersTestDB(t)
	svc, _ := newTestService(t, db)

	storeID := uuid.New()
	belt := seedSaleVariant(t, db, storeID, "Belt", 150, 5)
	order := createPendingOrder(t, svc, storeID, belt.ID)

	_, err := svc.FindByID(context.Background(), uuid.New(), order.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestListByStorePaginatesWithCursor(t *testing.T) {
	t.Parallel()

	db := setupOrdersTestDB(t)
	svc, _ := newTestService(t, db)

	storeID := uuid.New()
	belt := seedSaleVariant(t, db, storeID, "Belt", 150, 50)
	for i := 0; i < 5; i++ {
		createPendingOrder(t, svc, storeID, belt.ID)
	}

	firstPage, next, err := svc.ListByStore(context.Background(), storeID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, firstPage, 2)
	require.NotEmpty(t, next)

	secondPage, _, err := svc.ListByStore(context.Background(), storeID, pagination.Params{Limit: 2, Cursor: next})
	require.NoError(t, err)
	require.Len(t, secondPage, 2)

	seen := map[uuid.UUID]bool{}
	for _, row := range append(firstPage, secondPage...) {
		require.False(t, seen[row.ID], "page overlap on order %s", row.ID)
		seen[row.ID] = true
	}
}

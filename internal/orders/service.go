package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/CarlosPavajeau/cetus/internal/inventory"
	pkgdb "github.com/CarlosPavajeau/cetus/pkg/db"
	"github.com/CarlosPavajeau/cetus/pkg/db/models"
	"github.com/CarlosPavajeau/cetus/pkg/enums"
	pkgerrors "github.com/CarlosPavajeau/cetus/pkg/errors"
	"github.com/CarlosPavajeau/cetus/pkg/events"
	"github.com/CarlosPavajeau/cetus/pkg/pagination"
)

// Service exposes the order lifecycle: creation with atomic stock
// reservation, and the guarded status transitions. Every mutation runs inside
// a unit of work so the events it raises reach the bus only after commit.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	FindByID(ctx context.Context, storeID, orderID uuid.UUID) (*models.Order, error)
	ListByStore(ctx context.Context, storeID uuid.UUID, params pagination.Params) ([]models.Order, string, error)
	ConfirmPayment(ctx context.Context, storeID, orderID uuid.UUID, transactionID string) (*models.Order, error)
	Cancel(ctx context.Context, storeID, orderID uuid.UUID) (*models.Order, error)
	Deliver(ctx context.Context, storeID, orderID uuid.UUID) (*models.Order, error)
	UpdateStatus(ctx context.Context, storeID, orderID uuid.UUID, status enums.OrderStatus) (*models.Order, error)
}

type service struct {
	repo Repository
	uow  *events.UnitOfWork
	now  func() time.Time
}

// NewService builds the orders service with the required dependencies.
func NewService(repo Repository, uow *events.UnitOfWork) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if uow == nil {
		return nil, fmt.Errorf("unit of work required")
	}
	return &service{repo: repo, uow: uow, now: time.Now}, nil
}

// CreateOrderItemInput is one requested line of a new order.
type CreateOrderItemInput struct {
	VariantID uuid.UUID `json:"variantId" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

// CreateOrderInput carries everything needed to place an order.
type CreateOrderInput struct {
	StoreID       uuid.UUID              `json:"-"`
	CustomerName  string                 `json:"customerName" validate:"required,max=256"`
	CustomerEmail string                 `json:"customerEmail" validate:"required,email"`
	CustomerPhone *string                `json:"customerPhone,omitempty" validate:"omitempty,max=32"`
	Address       *string                `json:"address,omitempty" validate:"omitempty,max=512"`
	Discount      decimal.Decimal        `json:"discount"`
	DeliveryFee   decimal.Decimal        `json:"deliveryFee"`
	Items         []CreateOrderItemInput `json:"items" validate:"required,min=1,dive"`
}

// Create places a new order. Catalog prices are captured into the line items,
// stock for every line is reserved atomically, and the per-store order number
// is allocated, all inside one transaction. A reservation failure rolls the
// whole thing back and surfaces per-variant reasons to the caller.
func (s *service) Create(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if input.StoreID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must have at least one item")
	}
	if input.Discount.IsNegative() || input.DeliveryFee.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount and delivery fee must not be negative")
	}

	quantities := make(map[uuid.UUID]int, len(input.Items))
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive").
				WithDetails(map[string]any{"variant_id": item.VariantID.String()})
		}
		// Duplicate variant lines collapse into one reservation row.
		quantities[item.VariantID] += item.Quantity
	}

	var order *models.Order
	err := s.uow.Execute(ctx, func(tx *gorm.DB, rec *events.Recorder) error {
		repo := s.repo.WithTx(tx)

		ids := make([]uuid.UUID, 0, len(quantities))
		for id := range quantities {
			ids = append(ids, id)
		}
		variants, err := repo.FindVariantsForSale(ctx, input.StoreID, ids)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variants")
		}
		byID := make(map[uuid.UUID]SaleVariant, len(variants))
		for _, v := range variants {
			byID[v.VariantID] = v
		}

		result, err := inventory.TryReserve(ctx, tx, inventory.ReservationRequest{
			StoreID:    input.StoreID,
			Quantities: quantities,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve stock")
		}
		if !result.Success {
			return reservationError(result)
		}

		number, err := repo.NextOrderNumber(ctx, input.StoreID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate order number")
		}

		now := s.now()
		subtotal := decimal.Zero
		items := make([]models.OrderItem, 0, len(quantities))
		for _, id := range result.ReservedIDs {
			variant, ok := byID[id]
			if !ok {
				return pkgerrors.New(pkgerrors.CodeDependency, "reserved variant missing from catalog load")
			}
			qty := quantities[id]
			items = append(items, models.OrderItem{
				VariantID:   id,
				ProductName: variant.ProductName,
				Quantity:    qty,
				Price:       variant.Price,
			})
			subtotal = subtotal.Add(variant.Price.Mul(decimal.NewFromInt(int64(qty))))
		}

		total := subtotal.Sub(input.Discount).Add(input.DeliveryFee)
		if total.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "discount exceeds order subtotal")
		}

		order = &models.Order{
			OrderNumber:   number,
			StoreID:       input.StoreID,
			Status:        enums.OrderStatusPendingPayment,
			CustomerName:  input.CustomerName,
			CustomerEmail: input.CustomerEmail,
			CustomerPhone: input.CustomerPhone,
			Address:       input.Address,
			Subtotal:      subtotal,
			Discount:      input.Discount,
			DeliveryFee:   input.DeliveryFee,
			Total:         total,
			Items:         items,
		}
		if err := repo.Create(ctx, order); err != nil {
			// Two concurrent creates can race for the same per-store order
			// number; the unique constraint makes the loser retryable.
			if pkgdb.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "order number already taken, retry")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
		}

		order.Raise(events.OrderCreated{
			OrderID:       order.ID,
			OrderNumber:   order.OrderNumber,
			StoreID:       order.StoreID,
			CustomerName:  order.CustomerName,
			CustomerEmail: order.CustomerEmail,
			Total:         order.Total,
			Items:         snapshotItems(order.Items),
			OccurredAt:    now,
		})
		rec.Track(order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// reservationError converts a failed reservation into the typed conflict the
// API contract promises, with one detail row per failed variant.
func reservationError(result inventory.ReservationResult) error {
	details := make([]map[string]any, 0, len(result.Failed))
	insufficientOnly := true
	for _, failure := range result.Failed {
		row := map[string]any{
			"variant_id": failure.VariantID.String(),
			"reason":     string(failure.Reason),
		}
		if failure.Reason == inventory.FailureInsufficientStock {
			row["requested"] = failure.Requested
			row["available"] = failure.Available
		} else {
			insufficientOnly = false
		}
		details = append(details, row)
	}

	code := pkgerrors.CodeConflict
	message := "some items cannot be ordered"
	if insufficientOnly {
		code = pkgerrors.CodeInsufficientStock
		message = "insufficient stock for requested items"
	}
	return pkgerrors.New(code, message).WithDetails(details)
}

func (s *service) FindByID(ctx context.Context, storeID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if storeID != uuid.Nil && order.StoreID != storeID {
		// Tenant mismatch is indistinguishable from absence on the outside.
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func (s *service) ListByStore(ctx context.Context, storeID uuid.UUID, params pagination.Params) ([]models.Order, string, error) {
	if storeID == uuid.Nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	rows, next, err := s.repo.ListByStore(ctx, storeID, params)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return rows, next, nil
}

func (s *service) ConfirmPayment(ctx context.Context, storeID, orderID uuid.UUID, transactionID string) (*models.Order, error) {
	if transactionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id required")
	}
	return s.transition(ctx, storeID, orderID, enums.OrderStatusPaymentConfirmed, func(order *models.Order) {
		order.TransactionID = &transactionID
	})
}

func (s *service) Cancel(ctx context.Context, storeID, orderID uuid.UUID) (*models.Order, error) {
	return s.transition(ctx, storeID, orderID, enums.OrderStatusCanceled, nil)
}

func (s *service) Deliver(ctx context.Context, storeID, orderID uuid.UUID) (*models.Order, error) {
	return s.transition(ctx, storeID, orderID, enums.OrderStatusDelivered, nil)
}

// UpdateStatus moves the order to an arbitrary (but guarded) status. It is
// the generic transition endpoint; the named operations above are sugar over
// the same guard.
func (s *service) UpdateStatus(ctx context.Context, storeID, orderID uuid.UUID, status enums.OrderStatus) (*models.Order, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}
	return s.transition(ctx, storeID, orderID, status, nil)
}

// transition loads the order inside a unit of work, applies the mutation and
// the guarded status change, persists it, and tracks the aggregate so its
// events flush after commit.
func (s *service) transition(ctx context.Context, storeID, orderID uuid.UUID, to enums.OrderStatus, mutate func(*models.Order)) (*models.Order, error) {
	var order *models.Order
	err := s.uow.Execute(ctx, func(tx *gorm.DB, rec *events.Recorder) error {
		repo := s.repo.WithTx(tx)

		loaded, err := repo.FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if storeID != uuid.Nil && loaded.StoreID != storeID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}

		if mutate != nil {
			mutate(loaded)
		}
		if err := Transition(loaded, to, s.now()); err != nil {
			return err
		}
		if err := repo.UpdateStatus(ctx, loaded); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order status")
		}

		order = loaded
		rec.Track(loaded)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

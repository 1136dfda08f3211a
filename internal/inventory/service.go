package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/CarlosPavajeau/cetus/pkg/db/models"
	"github.com/CarlosPavajeau/cetus/pkg/enums"
	pkgerrors "github.com/CarlosPavajeau/cetus/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service owns the compensating stock mutations: restocks triggered by
// cancellations and manual corrections. Both paths append to the
// inventory_transactions audit trail; the reservation hot path does not.
type Service interface {
	Restock(ctx context.Context, tx *gorm.DB, input RestockInput) error
	Adjust(ctx context.Context, input AdjustInput) (*models.InventoryTransaction, error)
	Transactions(ctx context.Context, variantID uuid.UUID, limit int) ([]models.InventoryTransaction, error)
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds the inventory service with the required dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

// RestockInput describes one compensating increment inside a caller-owned
// transaction.
type RestockInput struct {
	VariantID uuid.UUID
	Quantity  int
	Reason    enums.InventoryReason
	OrderID   *uuid.UUID
}

func (s *service) Restock(ctx context.Context, tx *gorm.DB, input RestockInput) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for restock")
	}
	if input.Quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "restock quantity must be positive")
	}
	if !input.Reason.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid inventory reason")
	}

	repo := s.repo.WithTx(tx)
	affected, err := repo.IncrementStock(ctx, input.VariantID, input.Quantity)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restock variant")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "variant not found or deleted")
	}

	stockAfter, err := repo.CurrentStock(ctx, input.VariantID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read stock after restock")
	}

	row := models.InventoryTransaction{
		VariantID:  input.VariantID,
		Quantity:   input.Quantity,
		StockAfter: stockAfter,
		Reason:     input.Reason,
		OrderID:    input.OrderID,
	}
	if err := repo.CreateTransaction(ctx, &row); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record inventory transaction")
	}
	return nil
}

// AdjustInput describes a manual stock correction. Delta may be negative; a
// negative delta is refused when it would take stock below zero.
type AdjustInput struct {
	VariantID   uuid.UUID
	StoreID     uuid.UUID
	Delta       int
	Reason      enums.InventoryReason
	ActorUserID *uuid.UUID
}

func (s *service) Adjust(ctx context.Context, input AdjustInput) (*models.InventoryTransaction, error) {
	if input.VariantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant id required")
	}
	if input.Delta == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delta must be non-zero")
	}
	if !input.Reason.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid inventory reason")
	}

	var row models.InventoryTransaction
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		storeID, err := repo.FindVariantStore(ctx, input.VariantID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant store")
		}
		if input.StoreID != uuid.Nil && storeID != input.StoreID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "variant does not belong to store")
		}

		var affected int64
		if input.Delta > 0 {
			affected, err = repo.IncrementStock(ctx, input.VariantID, input.Delta)
		} else {
			affected, err = repo.DecrementStockIfAvailable(ctx, input.VariantID, -input.Delta)
		}
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "adjust stock")
		}
		if affected == 0 {
			if input.Delta < 0 {
				return pkgerrors.New(pkgerrors.CodeInsufficientStock, "adjustment would take stock below zero")
			}
			return pkgerrors.New(pkgerrors.CodeNotFound, "variant not found or deleted")
		}

		stockAfter, err := repo.CurrentStock(ctx, input.VariantID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read stock after adjustment")
		}

		row = models.InventoryTransaction{
			VariantID:   input.VariantID,
			Quantity:    input.Delta,
			StockAfter:  stockAfter,
			Reason:      input.Reason,
			ActorUserID: input.ActorUserID,
		}
		return repo.CreateTransaction(ctx, &row)
	})
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (s *service) Transactions(ctx context.Context, variantID uuid.UUID, limit int) ([]models.InventoryTransaction, error) {
	if variantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant id required")
	}
	rows, err := s.repo.ListTransactions(ctx, variantID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list inventory transactions")
	}
	return rows, nil
}

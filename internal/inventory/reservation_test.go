package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	pkgerrors "github.com/CarlosPavajeau/cetus/pkg/errors"
)

func TestTryReserveDecrementsEveryRequestedVariant(t *testing.T) {
	t.Parallel()

	db := setupInventoryTestDB(t)
	ctx := context.Background()
	storeID := uuid.New()

	variantA := seedVariant(t, db, storeID, 5)
	variantB := seedVariant(t, db, storeID, 2)

	err := db.Transaction(func(tx *gorm.DB) error {
		result, err := TryReserve(ctx, tx, ReservationRequest{
			StoreID: storeID,
			Quantities: map[uuid.UUID]int{
				variantA.ID: 3,
				variantB.ID: 2,
			},
		})
		require.NoError(t, err)
		require.True(t, result.Success)
		require.Len(t, result.ReservedIDs, 2)
		require.Empty(t, result.Failed)
		return nil
	})
	require.NoError(t, err)

	require.Equal(t, 2, variantStock(t, db, variantA.ID))
	require.Equal(t, 0, variantStock(t, db, variantB.ID))
}

func TestTryReserveEmptyRequestSucceedsTrivially(t *testing.T) {
	t.Parallel()

	db := setupInventoryTestDB(t)
	result, err := TryReserve(context.Background(), db, ReservationRequest{StoreID: uuid.New()})
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Empty(t, result.ReservedIDs)
	require.Empty(t, result.Failed)
}

func TestTryReserveRejectsNonPositiveQuantities(t *testing.T) {
	t.Parallel()

	db := setupInventoryTestDB(t)
	storeID := uuid.New()
	variant := seedVariant(t, db, storeID, 5)

	_, err := TryReserve(context.Background(), db, ReservationRequest{
		StoreID:    storeID,
		Quantities: map[uuid.UUID]int{variant.ID: 0},
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestTryReserveClassifiesEveryFailureMode(t *testing.T) {
	t.Parallel()

	db := setupInventoryTestDB(t)
	ctx := context.Background()
	storeID := uuid.New()

	lowStock := seedVariant(t, db, storeID, 1)
	deleted := seedVariant(t, db, storeID, 10)
	softDeleteVariant(t, db, deleted.ID)
	foreign := seedVariant(t, db, uuid.New(), 10)
	missing := uuid.New()
	healthy := seedVariant(t, db, storeID, 10)

	request := ReservationRequest{
		StoreID: storeID,
		Quantities: map[uuid.UUID]int{
			lowStock.ID: 3,
			deleted.ID:  1,
			foreign.ID:  1,
			missing:     1,
			healthy.ID:  4,
		},
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		result, err := TryReserve(ctx, tx, request)
		require.NoError(t, err)
		require.False(t, result.Success)
		require.Equal(t, []uuid.UUID{healthy.ID}, result.ReservedIDs)
		require.Len(t, result.Failed, 4)

		reasons := map[uuid.UUID]ReservationFailure{}
		for _, failure := range result.Failed {
			reasons[failure.VariantID] = failure
		}
		require.Equal(t, FailureInsufficientStock, reasons[lowStock.ID].Reason)
		require.Equal(t, 3, reasons[lowStock.ID].Requested)
		require.Equal(t, 1, reasons[lowStock.ID].Available)
		require.Equal(t, FailureDeleted, reasons[deleted.ID].Reason)
		require.Equal(t, FailureWrongStore, reasons[foreign.ID].Reason)
		require.Equal(t, FailureNotFound, reasons[missing].Reason)

		// The caller rolls back on partial failure.
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, "partial reservation")
	})
	require.Error(t, err)

	// After rollback no net stock change is observable for any variant.
	require.Equal(t, 1, variantStock(t, db, lowStock.ID))
	require.Equal(t, 10, variantStock(t, db, healthy.ID))
	require.Equal(t, 10, variantStock(t, db, foreign.ID))
}

func TestTryReserveClassificationIsIdempotent(t *testing.T) {
	t.Parallel()

	db := setupInventoryTestDB(t)
	ctx := context.Background()
	storeID := uuid.New()
	variant := seedVariant(t, db, storeID, 2)

	request := ReservationRequest{
		StoreID:    storeID,
		Quantities: map[uuid.UUID]int{variant.ID: 5},
	}

	for attempt := 0; attempt < 2; attempt++ {
		err := db.Transaction(func(tx *gorm.DB) error {
			result, err := TryReserve(ctx, tx, request)
			require.NoError(t, err)
			require.False(t, result.Success)
			require.Len(t, result.Failed, 1)
			require.Equal(t, FailureInsufficientStock, result.Failed[0].Reason)
			require.Equal(t, 2, result.Failed[0].Available)
			return gorm.ErrInvalidTransaction
		})
		require.Error(t, err)
	}
}

// Two requests of 3 units against a stock of 5: exactly one wins, the loser
// observes the remaining stock, and stock never goes negative.
func TestTryReserveCompetingRequestsNeverOversell(t *testing.T) {
	t.Parallel()

	db := setupInventoryTestDB(t)
	ctx := context.Background()
	storeID := uuid.New()
	variant := seedVariant(t, db, storeID, 5)

	request := ReservationRequest{
		StoreID:    storeID,
		Quantities: map[uuid.UUID]int{variant.ID: 3},
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		result, err := TryReserve(ctx, tx, request)
		require.NoError(t, err)
		require.True(t, result.Success)
		return nil
	})
	require.NoError(t, err)

	err = db.Transaction(func(tx *gorm.DB) error {
		result, err := TryReserve(ctx, tx, request)
		require.NoError(t, err)
		require.False(t, result.Success)
		require.Equal(t, []uuid.UUID{variant.ID}, result.FailedIDs())
		require.Equal(t, FailureInsufficientStock, result.Failed[0].Reason)
		require.Equal(t, 2, result.Failed[0].Available)
		return gorm.ErrInvalidTransaction
	})
	require.Error(t, err)

	require.Equal(t, 2, variantStock(t, db, variant.ID))
}

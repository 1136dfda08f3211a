package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/CarlosPavajeau/cetus/api/responses"
	"github.com/CarlosPavajeau/cetus/api/validators"
	"github.com/CarlosPavajeau/cetus/internal/inventory"
	"github.com/CarlosPavajeau/cetus/pkg/enums"
	pkgerrors "github.com/CarlosPavajeau/cetus/pkg/errors"
	"github.com/CarlosPavajeau/cetus/pkg/logger"
)

func variantIDFromRequest(r *http.Request) (uuid.UUID, error) {
	variantID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid variant id")
	}
	return variantID, nil
}

type stockAdjustmentRequest struct {
	Delta  int    `json:"delta" validate:"required"`
	Reason string `json:"reason" validate:"required"`
}

// AdjustStock applies a manual stock correction to a variant of the active
// store and returns the audit row it produced.
func AdjustStock(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		variantID, err := variantIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body stockAdjustmentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		reason := enums.InventoryReason(body.Reason)
		if !reason.IsValid() {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "invalid inventory reason"))
			return
		}

		row, err := svc.Adjust(r.Context(), inventory.AdjustInput{
			VariantID: variantID,
			StoreID:   storeID,
			Delta:     body.Delta,
			Reason:    reason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

// ListInventoryTransactions returns a variant's recent audit trail.
func ListInventoryTransactions(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		variantID, err := variantIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.Transactions(r.Context(), variantID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

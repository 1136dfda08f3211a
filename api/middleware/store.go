package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/CarlosPavajeau/cetus/api/responses"
	pkgerrors "github.com/CarlosPavajeau/cetus/pkg/errors"
	"github.com/CarlosPavajeau/cetus/pkg/logger"
)

const storeIDHeader = "X-Store-Id"

type storeIDKey struct{}

// StoreContext resolves the tenant from the X-Store-Id header. Requests
// without a valid store id never reach the handlers.
func StoreContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(storeIDHeader))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeUnauthorized, "store context missing"))
				return
			}
			storeID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "invalid store id"))
				return
			}

			ctx := context.WithValue(r.Context(), storeIDKey{}, storeID)
			if logg != nil {
				ctx = logg.WithStoreID(ctx, storeID.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// StoreIDFromContext returns the tenant resolved by StoreContext.
func StoreIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	storeID, ok := ctx.Value(storeIDKey{}).(uuid.UUID)
	return storeID, ok
}

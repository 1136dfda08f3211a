package middleware

import (
	"fmt"
	"net/http"

	"github.com/CarlosPavajeau/cetus/api/responses"
	pkgerrors "github.com/CarlosPavajeau/cetus/pkg/errors"
	"github.com/CarlosPavajeau/cetus/pkg/logger"
)

// Recoverer converts a handler panic into a logged 500 response.
// http.ErrAbortHandler is re-raised so deliberate connection aborts keep
// net/http's own semantics.
func Recoverer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				err := fmt.Errorf("panic: %v", rec)
				ctx := r.Context()
				if logg != nil {
					ctx = logg.WithFields(ctx, map[string]any{
						"panic":  rec,
						"method": r.Method,
						"path":   r.URL.Path,
					})
					logg.Error(ctx, "request handler panicked", err)
				}
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "panic"))
			}()
			next.ServeHTTP(w, r)
		})
	}
}

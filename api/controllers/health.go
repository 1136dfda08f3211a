package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/CarlosPavajeau/cetus/api/responses"
	"github.com/CarlosPavajeau/cetus/pkg/config"
	"github.com/CarlosPavajeau/cetus/pkg/logger"
)

// Pinger is any dependency that can report liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Healthz reports service health plus the reachability of each backing store.
// A failing dependency flips the status code to 503 but still names the
// healthy parts.
func Healthz(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := http.StatusOK
		checks := map[string]string{}
		for name, dep := range deps {
			if dep == nil {
				checks[name] = "not configured"
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				checks[name] = "unreachable"
				status = http.StatusServiceUnavailable
				if logg != nil {
					logg.Error(logg.WithField(ctx, "dependency", name), "health check failed", err)
				}
				continue
			}
			checks[name] = "ok"
		}

		payload := map[string]any{
			"status": "ok",
			"env":    cfg.App.Env,
			"checks": checks,
		}
		if status != http.StatusOK {
			payload["status"] = "degraded"
		}
		responses.WriteSuccessStatus(w, status, payload)
	}
}

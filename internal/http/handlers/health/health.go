// Package health reports liveness and the reachability of backing services.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/response"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/sl"
)

// Pinger is a dependency the service needs to answer requests.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	log    *slog.Logger
	checks map[string]Pinger
}

// New builds the handler. Each named check is pinged on every request.
func New(log *slog.Logger, checks map[string]Pinger) *Handler {
	return &Handler{
		log:    log,
		checks: checks,
	}
}

// ServeHTTP godoc
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	results := map[string]string{"status": "ok"}
	for name, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			h.log.Error("health check failed", slog.String("op", op), slog.String("check", name), sl.Err(err))
			results[name] = "down"
			results["status"] = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "up"
	}

	render.Status(r, status)
	render.JSON(w, r, response.OKWithData(results))
}

// Package health отдаёт состояние зависимостей бота: Postgres и, если включён, Redis.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/connect-bot/internal/http-server/response"
	"github.com/magabrotheeeer/connect-bot/internal/lib/sl"
)

// Checker проверяет одну зависимость.
type Checker func(ctx context.Context) error

type Handler struct {
	log     *slog.Logger
	checks  map[string]Checker
	timeout time.Duration
}

// New создаёт обработчик. timeout ограничивает все проверки вместе.
func New(log *slog.Logger, timeout time.Duration, checks map[string]Checker) *Handler {
	return &Handler{
		log:     log,
		checks:  checks,
		timeout: timeout,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"
	log := h.log.With(slog.String("op", op))

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	healthy := true
	results := make(map[string]string, len(names))
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			log.Warn("dependency check failed", slog.String("dependency", name), sl.Err(err))
			results[name] = err.Error()
			healthy = false
			continue
		}
		results[name] = "ok"
	}

	if !healthy {
		render.Status(r, http.StatusServiceUnavailable)
	}
	render.JSON(w, r, response.Health(results, healthy))
}

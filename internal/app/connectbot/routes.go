// Package connectbot собирает бота из компонентов и управляет его жизненным циклом.
package connectbot

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/magabrotheeeer/connect-bot/internal/http-server/handlers/health"
	"github.com/magabrotheeeer/connect-bot/internal/http-server/mware"
)

// RegisterRoutes регистрирует служебные маршруты: метрики и healthcheck.
func RegisterRoutes(r chi.Router, logger *slog.Logger, registry *prometheus.Registry, checkTimeout time.Duration, checks map[string]health.Checker) {
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		mware.Logger(logger),
		middleware.Recoverer,
	)

	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	r.Get("/healthz", health.New(logger, checkTimeout, checks).ServeHTTP)
}

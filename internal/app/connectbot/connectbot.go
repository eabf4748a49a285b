package connectbot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/connect-bot/internal/bot"
	"github.com/magabrotheeeer/connect-bot/internal/cache"
	"github.com/magabrotheeeer/connect-bot/internal/config"
	"github.com/magabrotheeeer/connect-bot/internal/http-server/handlers/health"
	"github.com/magabrotheeeer/connect-bot/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/connect-bot/internal/lib/sl"
	"github.com/magabrotheeeer/connect-bot/internal/metrics"
	"github.com/magabrotheeeer/connect-bot/internal/migrations"
	"github.com/magabrotheeeer/connect-bot/internal/services/feed"
	"github.com/magabrotheeeer/connect-bot/internal/services/notify"
	"github.com/magabrotheeeer/connect-bot/internal/session"
	"github.com/magabrotheeeer/connect-bot/internal/sheets"
	"github.com/magabrotheeeer/connect-bot/internal/storage"
	"github.com/magabrotheeeer/connect-bot/internal/telegram"
)

// Сколько ждать доработки очередей и хуков при остановке.
const shutdownTimeout = 15 * time.Second

type App struct {
	logger   *slog.Logger
	server   *http.Server
	poller   *telegram.Poller
	lanes    *bot.Dispatcher
	notifier *notify.Dispatcher

	// stopHandlers отменяет контекст обработчиков, если очереди не успели доработать.
	stopHandlers context.CancelFunc
	closers      []namedCloser
}

type namedCloser struct {
	name string
	c    io.Closer
}

// New подключает хранилища и внешние сервисы и собирает бота.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (app *App, err error) {
	a := &App{logger: logger}
	defer func() {
		if err != nil {
			a.closeAll()
		}
	}()

	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, namedCloser{"postgres", db})

	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}
	// круги просмотра ленты начинаются заново после каждого запуска
	if err = db.ClearAllViewed(ctx); err != nil {
		return nil, err
	}

	m := metrics.New()
	checks := map[string]health.Checker{"postgres": db.Ping}

	sessions, err := a.sessionStore(ctx, cfg, checks)
	if err != nil {
		return nil, err
	}

	client, err := telegram.New(cfg.BotToken, cfg.Telegram, cfg.AdminID, component(logger, "telegram"))
	if err != nil {
		return nil, err
	}

	hooks, err := a.hooks(ctx, cfg, client)
	if err != nil {
		return nil, err
	}
	a.notifier = notify.NewDispatcher(component(logger, "notify"), cfg.NotifyTimeout, client, m, hooks...)

	selector := feed.NewSelector(db, cfg.OrderLifetime, component(logger, "feed"), feed.WithMetrics(m))
	b := bot.New(bot.Deps{
		Store:        db,
		Sessions:     sessions,
		Feed:         selector,
		Notifier:     a.notifier,
		Messages:     client,
		Metrics:      m,
		Log:          component(logger, "bot"),
		ApplyTimeout: cfg.TelegramTimeout,
	})

	// обработчики переживают отмену ctx, чтобы очереди доработали при остановке
	handlerCtx, stop := context.WithCancel(context.WithoutCancel(ctx))
	a.stopHandlers = stop
	a.lanes = bot.NewDispatcher(handlerCtx, b, component(logger, "dispatcher"), m, cfg.RatePerSecond, cfg.Burst)
	a.poller = client.NewPoller(cfg.PollTimeout, a.lanes, component(logger, "poller"))

	router := chi.NewRouter()
	RegisterRoutes(router, component(logger, "http-server"), m.Registry, cfg.TimeoutHTTP, checks)

	a.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return a, nil
}

func (a *App) sessionStore(ctx context.Context, cfg *config.Config, checks map[string]health.Checker) (session.Store, error) {
	if cfg.SessionBackend != config.SessionBackendRedis {
		return session.NewMemory(), nil
	}

	c, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, namedCloser{"redis", c})
	checks["redis"] = c.Ping
	return session.NewRedis(c, cfg.SessionTTL), nil
}

// hooks собирает действия после сохранения. Зеркало в таблицах и события
// в брокере подключаются, только если настроены.
func (a *App) hooks(ctx context.Context, cfg *config.Config, poster notify.Poster) ([]notify.Hook, error) {
	var hooks []notify.Hook

	if cfg.SheetsEnabled() {
		client, err := sheets.New(ctx, cfg.CredentialsPath, sheets.Settings{
			SpreadsheetID: cfg.SpreadsheetID,
			UsersSheet:    cfg.UsersSheet,
			OrdersSheet:   cfg.OrdersSheet,
		})
		if err != nil {
			return nil, err
		}
		hooks = append(hooks, notify.NewSheetHook(client))
	} else {
		a.logger.Warn("google sheets mirror is disabled")
	}

	hooks = append(hooks, notify.NewChannelHook(poster, notify.Group{
		ChatID:            cfg.GroupID,
		NetworkingTopicID: cfg.NetworkingTopicID,
		OrdersTopicID:     cfg.OrdersTopicID,
	}))

	if cfg.EventsEnabled() {
		publisher, err := rabbitmq.NewPublisher(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, namedCloser{"rabbitmq", publisher})
		hooks = append(hooks, notify.NewEventsHook(publisher))
	}

	return hooks, nil
}

// Run запускает опрос Telegram и HTTP‑сервер и работает до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	pollCtx, stopPolling := context.WithCancel(ctx)
	defer stopPolling()

	pollDone := make(chan error, 1)
	go func() {
		pollDone <- a.poller.Run(pollCtx)
	}()

	httpDone := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		httpDone <- err
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-pollDone:
		pollDone <- nil
		if runErr != nil {
			runErr = fmt.Errorf("polling: %w", runErr)
		}
	case runErr = <-httpDone:
		httpDone <- nil
		if runErr != nil {
			runErr = fmt.Errorf("http server: %w", runErr)
		}
	}

	a.logger.Info("shutting down")
	stopPolling()
	<-pollDone

	return errors.Join(runErr, a.shutdown(httpDone))
}

// shutdown дорабатывает очереди пользователей и хуки, затем останавливает
// HTTP‑сервер и закрывает подключения.
func (a *App) shutdown(httpDone <-chan error) error {
	drained := make(chan struct{})
	go func() {
		a.lanes.Close()
		a.notifier.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-time.After(shutdownTimeout):
		a.logger.Warn("shutdown timeout exceeded, canceling handlers")
		a.stopHandlers()
	}
	a.stopHandlers()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := a.server.Shutdown(ctx)
	if httpErr := <-httpDone; httpErr != nil {
		err = errors.Join(err, httpErr)
	}

	a.closeAll()
	return err
}

func (a *App) closeAll() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.c.Close(); err != nil {
			a.logger.Error("failed to close", slog.String("resource", c.name), sl.Err(err))
		}
	}
	a.closers = nil
}

func component(logger *slog.Logger, name string) *slog.Logger {
	return logger.With(slog.String("component", name))
}

// Package feed выбирает следующий заказ для ленты исполнителя.
//
// Каждый показанный заказ отмечается как просмотренный. Когда непросмотренные
// заказы заканчиваются, у зрителя начинается новый круг: отметки стираются и
// выборка повторяется один раз, исключая только заказ, который сейчас на экране.
package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/connect-bot/internal/lib/sl"
	"github.com/magabrotheeeer/connect-bot/internal/metrics"
	"github.com/magabrotheeeer/connect-bot/internal/models"
	"github.com/magabrotheeeer/connect-bot/internal/storage"
)

// ErrExhausted — подходящих заказов нет даже после начала нового круга.
var ErrExhausted = errors.New("feed exhausted")

// Repository описывает методы хранилища, нужные ленте.
type Repository interface {
	ViewedOrderIDs(ctx context.Context, viewerID int64) ([]int64, error)
	MarkViewed(ctx context.Context, viewerID, orderID int64) error
	ClearViewed(ctx context.Context, viewerID int64) error
	// NextOpenOrder возвращает storage.ErrNotFound, если подходящего заказа нет.
	NextOpenOrder(ctx context.Context, filter models.FeedFilter) (*models.FeedOrder, error)
}

// Pick — выбранный заказ. Recycled означает, что круг просмотра начат заново.
type Pick struct {
	Order    *models.FeedOrder
	Recycled bool
}

// Selector выбирает заказы для ленты.
type Selector struct {
	repo     Repository
	lifetime time.Duration
	now      func() time.Time
	metrics  *metrics.Metrics
	log      *slog.Logger
}

// Option настраивает Selector.
type Option func(*Selector)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(s *Selector) { s.now = now }
}

// WithMetrics включает счётчики выборок.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Selector) { s.metrics = m }
}

// NewSelector создаёт Selector. lifetime — сколько заказ остаётся в ленте после создания.
func NewSelector(repo Repository, lifetime time.Duration, log *slog.Logger, opts ...Option) *Selector {
	s := &Selector{
		repo:     repo,
		lifetime: lifetime,
		now:      time.Now,
		log:      log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Next возвращает следующий заказ для viewerID. cursor — id заказа на экране (0, если его нет).
func (s *Selector) Next(ctx context.Context, viewerID, cursor int64) (Pick, error) {
	const op = "feed.Next"

	seen, err := s.repo.ViewedOrderIDs(ctx, viewerID)
	if err != nil {
		return Pick{}, fmt.Errorf("%s: %w", op, err)
	}

	filter := models.FeedFilter{
		ViewerID: viewerID,
		Since:    s.now().Add(-s.lifetime),
		Exclude:  seen,
	}
	order, err := s.find(ctx, filter)
	if err != nil {
		return Pick{}, fmt.Errorf("%s: %w", op, err)
	}
	if order != nil {
		return s.pick(ctx, viewerID, order, false)
	}

	if err = s.repo.ClearViewed(ctx, viewerID); err != nil {
		return Pick{}, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Debug("feed epoch reset", sl.UserID(viewerID))

	filter.Exclude = nil
	if cursor > 0 {
		filter.Exclude = []int64{cursor}
	}
	order, err = s.find(ctx, filter)
	if err != nil {
		return Pick{}, fmt.Errorf("%s: %w", op, err)
	}
	if order == nil {
		s.metrics.FeedPick(metrics.PickExhausted)
		return Pick{}, ErrExhausted
	}
	return s.pick(ctx, viewerID, order, true)
}

func (s *Selector) find(ctx context.Context, filter models.FeedFilter) (*models.FeedOrder, error) {
	order, err := s.repo.NextOpenOrder(ctx, filter)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *Selector) pick(ctx context.Context, viewerID int64, order *models.FeedOrder, recycled bool) (Pick, error) {
	const op = "feed.pick"
	if err := s.repo.MarkViewed(ctx, viewerID, order.ID); err != nil {
		return Pick{}, fmt.Errorf("%s: %w", op, err)
	}
	if recycled {
		s.metrics.FeedPick(metrics.PickRecycled)
	} else {
		s.metrics.FeedPick(metrics.PickFresh)
	}
	return Pick{Order: order, Recycled: recycled}, nil
}

// Package notify выполняет побочные действия после сохранения данных:
// зеркало в Google Таблицах, публикацию в группе и событие в RabbitMQ.
//
// Каждый хук запускается в своей горутине со своим таймаутом. Ошибка или паника
// одного хука не влияет на другие и на пользователя: она пишется в лог,
// учитывается в метриках и отправляется администратору.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/magabrotheeeer/connect-bot/internal/lib/sl"
	"github.com/magabrotheeeer/connect-bot/internal/metrics"
	"github.com/magabrotheeeer/connect-bot/internal/models"
)

// ErrSkipped возвращается хуком, которому нечего делать с событием. Это не ошибка.
var ErrSkipped = errors.New("skipped")

// Kind — тип события.
type Kind string

const (
	KindUserRegistered Kind = "user.registered"
	KindOrderCreated   Kind = "order.created"
)

// Event описывает сохранённую сущность.
type Event struct {
	Kind Kind
	// User — новый пользователь или, для заказа, его автор.
	User  *models.User
	Order *models.Order
	// Publish — пользователь согласился опубликовать профиль в группе.
	Publish bool
}

// EntityID возвращает id пользователя или заказа в зависимости от типа события.
func (e Event) EntityID() int64 {
	switch {
	case e.Kind == KindOrderCreated && e.Order != nil:
		return e.Order.ID
	case e.User != nil:
		return e.User.ID
	}
	return 0
}

func (e Event) entityTitle() string {
	if e.Kind == KindOrderCreated {
		return "Заказ"
	}
	return "Пользователь"
}

// Hook — побочное действие после сохранения.
type Hook interface {
	Name() string
	// Action описывает действие для текста алерта: «Не удалось <action>».
	Action(e Event) string
	Handle(ctx context.Context, e Event) error
}

// Alerter отправляет сообщение администратору.
type Alerter interface {
	Alert(ctx context.Context, text string) error
}

// Dispatcher запускает хуки, не дожидаясь их завершения.
type Dispatcher struct {
	hooks   []Hook
	alerter Alerter
	timeout time.Duration
	metrics *metrics.Metrics
	log     *slog.Logger

	wg sync.WaitGroup
}

// NewDispatcher создаёт диспетчер. alerter может быть nil — тогда алерты не отправляются.
func NewDispatcher(log *slog.Logger, timeout time.Duration, alerter Alerter, m *metrics.Metrics, hooks ...Hook) *Dispatcher {
	return &Dispatcher{
		hooks:   hooks,
		alerter: alerter,
		timeout: timeout,
		metrics: m,
		log:     log,
	}
}

// Dispatch запускает все хуки для события и сразу возвращается.
func (d *Dispatcher) Dispatch(e Event) {
	for _, h := range d.hooks {
		d.wg.Add(1)
		go func(h Hook) {
			defer d.wg.Done()
			d.run(h, e)
		}(h)
	}
}

// Wait дожидается завершения запущенных хуков.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) run(h Hook, e Event) {
	log := d.log.With(
		slog.String("hook", h.Name()),
		slog.String("kind", string(e.Kind)),
		slog.Int64("entity_id", e.EntityID()),
	)

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	err := d.safeHandle(ctx, h, e)
	switch {
	case err == nil:
		d.metrics.HookRun(h.Name(), metrics.HookOK)
		log.Debug("hook done")
	case errors.Is(err, ErrSkipped):
		d.metrics.HookRun(h.Name(), metrics.HookSkipped)
		log.Warn("hook skipped", sl.Err(err))
	default:
		d.metrics.HookRun(h.Name(), metrics.HookFailed)
		log.Error("hook failed", sl.Err(err))
		d.alert(AlertText(h.Action(e), e.entityTitle(), e.EntityID(), err))
	}
}

func (d *Dispatcher) safeHandle(ctx context.Context, h Hook, e Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return h.Handle(ctx, e)
}

func (d *Dispatcher) alert(text string) {
	if d.alerter == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	if err := d.alerter.Alert(ctx, text); err != nil {
		d.log.Error("failed to alert admin", sl.Err(err))
	}
}

// AlertText собирает сообщение администратору о сбое.
func AlertText(action, entity string, id int64, err error) string {
	return fmt.Sprintf("⚠️ Не удалось %s.\n\n%s: %d\nОшибка: %v", action, entity, id, err)
}

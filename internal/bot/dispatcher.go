package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/connect-bot/internal/lib/sl"
	"github.com/magabrotheeeer/connect-bot/internal/metrics"
)

// Время, после которого ограничитель молчащего пользователя удаляется.
const limiterIdle = 10 * time.Minute

// Handler обрабатывает одно событие.
type Handler interface {
	Handle(ctx context.Context, ev Event)
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Dispatcher раздаёт события по очередям пользователей: события одного
// пользователя обрабатываются строго по порядку, разных пользователей параллельно.
// Слишком частые события пользователя отбрасываются.
type Dispatcher struct {
	ctx     context.Context
	handler Handler
	log     *slog.Logger
	metrics *metrics.Metrics
	limit   rate.Limit
	burst   int

	mu        sync.Mutex
	lanes     map[int64][]Event
	limiters  map[int64]*limiterEntry
	lastSweep time.Time
	closed    bool
	wg        sync.WaitGroup
}

// NewDispatcher создаёт диспетчер. ctx передаётся обработчику и должен жить
// дольше опроса обновлений, чтобы очереди успели доработать при остановке.
// perSecond <= 0 отключает ограничение частоты.
func NewDispatcher(ctx context.Context, h Handler, log *slog.Logger, m *metrics.Metrics, perSecond float64, burst int) *Dispatcher {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	if burst < 1 {
		burst = 1
	}
	return &Dispatcher{
		ctx:      ctx,
		handler:  h,
		log:      log,
		metrics:  m,
		limit:    limit,
		burst:    burst,
		lanes:    make(map[int64][]Event),
		limiters: make(map[int64]*limiterEntry),
	}
}

// Submit ставит событие в очередь пользователя. Возвращает false, если событие
// отброшено ограничителем или диспетчер уже закрыт.
func (d *Dispatcher) Submit(ev Event) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return false
	}

	now := time.Now()
	if !d.allow(ev.UserID, now) {
		d.metrics.UpdateDropped()
		d.log.Warn("update dropped by rate limiter", sl.UserID(ev.UserID), slog.String("kind", ev.Kind()))
		return false
	}

	queue, running := d.lanes[ev.UserID]
	d.lanes[ev.UserID] = append(queue, ev)
	if !running {
		d.wg.Add(1)
		go d.drain(ev.UserID)
	}
	return true
}

// Close перестаёт принимать события и ждёт, пока очереди опустеют.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) drain(userID int64) {
	defer d.wg.Done()
	for {
		d.mu.Lock()
		queue := d.lanes[userID]
		if len(queue) == 0 {
			delete(d.lanes, userID)
			d.mu.Unlock()
			return
		}
		ev := queue[0]
		d.lanes[userID] = queue[1:]
		d.mu.Unlock()

		d.handle(ev)
	}
}

func (d *Dispatcher) handle(ev Event) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("handler panicked", sl.UserID(ev.UserID), sl.Err(fmt.Errorf("panic: %v", r)))
		}
	}()
	d.handler.Handle(d.ctx, ev)
}

// allow вызывается под d.mu.
func (d *Dispatcher) allow(userID int64, now time.Time) bool {
	if d.limit == rate.Inf {
		return true
	}

	if now.Sub(d.lastSweep) > limiterIdle {
		for id, e := range d.limiters {
			if now.Sub(e.lastSeen) > limiterIdle {
				delete(d.limiters, id)
			}
		}
		d.lastSweep = now
	}

	e, ok := d.limiters[userID]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(d.limit, d.burst)}
		d.limiters[userID] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

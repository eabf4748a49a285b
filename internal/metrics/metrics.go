// Package metrics регистрирует счётчики Prometheus бота на отдельном реестре.
// Все методы безопасны для nil‑получателя, поэтому в тестах метрики можно не создавать.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "connectbot"

// Результаты выборки из ленты.
const (
	PickFresh     = "fresh"
	PickRecycled  = "recycled"
	PickExhausted = "exhausted"
)

// Результаты выполнения хуков уведомлений.
const (
	HookOK      = "ok"
	HookSkipped = "skipped"
	HookFailed  = "failed"
)

// Metrics хранит счётчики бота.
type Metrics struct {
	Registry *prometheus.Registry

	updates        *prometheus.CounterVec
	updatesDropped prometheus.Counter
	feedPicks      *prometheus.CounterVec
	hookRuns       *prometheus.CounterVec
	registrations  prometheus.Counter
	ordersCreated  prometheus.Counter
}

// New создаёт реестр и регистрирует в нём счётчики, метрики процесса и Go runtime.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		updates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "updates_total",
			Help:      "Incoming updates by kind.",
		}, []string{"kind"}),
		updatesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "updates_dropped_total",
			Help:      "Updates dropped by the per-user rate limiter.",
		}),
		feedPicks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_picks_total",
			Help:      "Feed selections by result.",
		}, []string{"result"}),
		hookRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hook_runs_total",
			Help:      "Post-commit notification hook runs.",
		}, []string{"hook", "result"}),
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Completed registrations.",
		}),
		ordersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Created orders.",
		}),
	}

	reg.MustRegister(
		m.updates, m.updatesDropped, m.feedPicks, m.hookRuns, m.registrations, m.ordersCreated,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Update(kind string) {
	if m == nil {
		return
	}
	m.updates.WithLabelValues(kind).Inc()
}

func (m *Metrics) UpdateDropped() {
	if m == nil {
		return
	}
	m.updatesDropped.Inc()
}

func (m *Metrics) FeedPick(result string) {
	if m == nil {
		return
	}
	m.feedPicks.WithLabelValues(result).Inc()
}

func (m *Metrics) HookRun(hook, result string) {
	if m == nil {
		return
	}
	m.hookRuns.WithLabelValues(hook, result).Inc()
}

func (m *Metrics) Registered() {
	if m == nil {
		return
	}
	m.registrations.Inc()
}

func (m *Metrics) OrderCreated() {
	if m == nil {
		return
	}
	m.ordersCreated.Inc()
}

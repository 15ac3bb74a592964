package store

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Notifier receives user feedback messages emitted by the stores.
type Notifier interface {
	Success(msg string)
	Error(msg string)
	Info(msg string)
}

// Metrics counts snapshot persistence failures by slot and operation.
type Metrics struct {
	failures *prometheus.CounterVec
}

// NewMetrics registers the store collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_snapshot_failures_total",
			Help: "Snapshot loads and saves that failed and were recovered locally.",
		}, []string{"slot", "op"}),
	}
	reg.MustRegister(m.failures)
	return m
}

func (m *Metrics) fail(slot, op string) {
	if m != nil {
		m.failures.WithLabelValues(slot, op).Inc()
	}
}

type config struct {
	notifier Notifier
	logger   *slog.Logger
	metrics  *Metrics
	now      func() time.Time
}

// Option configures a store.
type Option func(*config)

// WithNotifier emits feedback messages after mutations.
func WithNotifier(n Notifier) Option {
	return func(c *config) { c.notifier = n }
}

// WithLogger sets the logger used for recovered persistence failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithMetrics counts recovered persistence failures.
func WithMetrics(m *Metrics) Option {
	return func(c *config) { c.metrics = m }
}

// WithClock overrides the time source used for wishlist timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *config) { c.now = now }
}

func newConfig(opts []Option) config {
	c := config{
		notifier: nopNotifier{},
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Error(string)   {}
func (nopNotifier) Info(string)    {}

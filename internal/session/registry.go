package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/utafrali/storefront/internal/notify"
	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/internal/store"
)

// Session holds one shopper's stores. Its fields may only be used inside
// Registry.With, which serializes every call on the session.
type Session struct {
	ID       string
	Cart     *store.CartStore
	Wishlist *store.WishlistStore
	Toasts   *notify.Bus

	mu       sync.Mutex
	loaded   bool
	lastSeen time.Time
}

// Config tunes a Registry.
type Config struct {
	// IdleTTL is how long an unused session stays in memory. Its snapshots
	// remain in the SnapshotStore and are restored on the next request.
	IdleTTL time.Duration
	// SweepInterval is how often Run looks for idle sessions.
	SweepInterval time.Duration
	// ToastTTL is how long feedback messages stay active.
	ToastTTL time.Duration
	// ToastLimit caps the active feedback messages per session.
	ToastLimit int
}

// DefaultConfig returns the registry defaults.
func DefaultConfig() Config {
	return Config{
		IdleTTL:       30 * time.Minute,
		SweepInterval: time.Minute,
		ToastTTL:      notify.DefaultTTL,
		ToastLimit:    notify.DefaultLimit,
	}
}

// Registry creates sessions on first use and evicts idle ones.
type Registry struct {
	cfg       Config
	snapshots repository.SnapshotStore
	logger    *slog.Logger
	metrics   *store.Metrics
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// Option configures a Registry.
type Option func(*Registry)

// WithMetrics exports the live session count and store failure counters.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(r *Registry) {
		r.metrics = store.NewMetrics(reg)
		reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "storefront_sessions_active",
			Help: "Sessions currently held in memory.",
		}, func() float64 { return float64(r.Len()) }))
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// NewRegistry creates a Registry persisting to snapshots.
func NewRegistry(snapshots repository.SnapshotStore, cfg Config, l *slog.Logger, opts ...Option) *Registry {
	def := DefaultConfig()
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = def.IdleTTL
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = def.SweepInterval
	}
	if cfg.ToastTTL <= 0 {
		cfg.ToastTTL = def.ToastTTL
	}
	if cfg.ToastLimit <= 0 {
		cfg.ToastLimit = def.ToastLimit
	}

	r := &Registry{
		cfg:       cfg,
		snapshots: snapshots,
		logger:    l,
		now:       time.Now,
		sessions:  make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// With runs fn with exclusive access to the session id, creating and
// restoring it first if needed.
func (r *Registry) With(ctx context.Context, id string, fn func(*Session) error) error {
	s := r.acquire(id)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		r.load(ctx, s)
	}
	err := fn(s)

	r.mu.Lock()
	s.lastSeen = r.now()
	r.mu.Unlock()
	return err
}

func (r *Registry) acquire(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		s = &Session{ID: id}
		r.sessions[id] = s
	}
	s.lastSeen = r.now()
	return s
}

func (r *Registry) load(ctx context.Context, s *Session) {
	l := r.logger.With(slog.String("session_id", s.ID))
	s.Toasts = notify.NewBus(
		notify.WithTTL(r.cfg.ToastTTL),
		notify.WithLimit(r.cfg.ToastLimit),
		notify.WithClock(r.now),
	)

	opts := []store.Option{
		store.WithLogger(l),
		store.WithNotifier(s.Toasts),
		store.WithMetrics(r.metrics),
		store.WithClock(r.now),
	}
	s.Cart = store.NewCartStore(ctx, store.SessionSnapshot(r.snapshots, s.ID, repository.SlotCart), opts...)
	s.Wishlist = store.NewWishlistStore(ctx, store.SessionSnapshot(r.snapshots, s.ID, repository.SlotWishlist), opts...)
	s.loaded = true

	l.DebugContext(ctx, "session restored",
		slog.Int("cart_items", s.Cart.TotalItems()),
		slog.Int("wishlist_items", s.Wishlist.TotalItems()),
	)
}

// Len returns the number of sessions held in memory.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep evicts sessions idle for longer than IdleTTL and returns how many
// were evicted. Sessions in use are skipped.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	evicted := 0
	for id, s := range r.sessions {
		if now.Sub(s.lastSeen) <= r.cfg.IdleTTL {
			continue
		}
		if !s.mu.TryLock() {
			continue
		}
		delete(r.sessions, id)
		s.mu.Unlock()
		evicted++
	}
	return evicted
}

// Run sweeps idle sessions every SweepInterval until ctx is cancelled.
func (r *Registry) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.cfg.SweepInterval)
	defer ticker.Stop()

	r.logger.Info("session janitor started",
		slog.Duration("idle_ttl", r.cfg.IdleTTL),
		slog.Duration("interval", r.cfg.SweepInterval),
	)
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("session janitor stopped")
			return nil
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.logger.Debug("evicted idle sessions", slog.Int("count", n))
			}
		}
	}
}

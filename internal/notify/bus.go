package notify

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL is how long a toast stays visible.
const DefaultTTL = 3 * time.Second

// DefaultLimit is the number of toasts a Bus keeps.
const DefaultLimit = 20

// Kind is the severity of a toast.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// Toast is one feedback message.
type Toast struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"type"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Bus is a stack of auto-expiring toasts for one session. Expiry is
// evaluated lazily against the clock, so no timers are held.
type Bus struct {
	mu     sync.Mutex
	toasts []Toast
	ttl    time.Duration
	limit  int
	now    func() time.Time
	newID  func() string
}

// Option configures a Bus.
type Option func(*Bus)

// WithTTL sets how long toasts stay active. Values <= 0 are ignored.
func WithTTL(d time.Duration) Option {
	return func(b *Bus) {
		if d > 0 {
			b.ttl = d
		}
	}
}

// WithLimit caps the number of active toasts; the oldest are dropped first.
func WithLimit(n int) Option {
	return func(b *Bus) { b.limit = n }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(b *Bus) { b.now = now }
}

// NewBus creates an empty Bus.
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		ttl:   DefaultTTL,
		limit: DefaultLimit,
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Success pushes a success toast.
func (b *Bus) Success(msg string) { b.Push(KindSuccess, msg) }

// Error pushes an error toast.
func (b *Bus) Error(msg string) { b.Push(KindError, msg) }

// Info pushes an info toast.
func (b *Bus) Info(msg string) { b.Push(KindInfo, msg) }

// Push adds a toast and returns it.
func (b *Bus) Push(kind Kind, msg string) Toast {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	t := Toast{
		ID:        b.newID(),
		Kind:      kind,
		Message:   msg,
		CreatedAt: now,
		ExpiresAt: now.Add(b.ttl),
	}
	b.prune(now)
	b.toasts = append(b.toasts, t)
	if b.limit > 0 && len(b.toasts) > b.limit {
		b.toasts = slices.Delete(b.toasts, 0, len(b.toasts)-b.limit)
	}
	return t
}

// Active returns the unexpired toasts, oldest first.
func (b *Bus) Active() []Toast {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.prune(b.now())
	return slices.Clone(b.toasts)
}

// Dismiss removes the toast with id. It reports whether one was active.
func (b *Bus) Dismiss(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.prune(b.now())
	n := len(b.toasts)
	b.toasts = slices.DeleteFunc(b.toasts, func(t Toast) bool { return t.ID == id })
	return len(b.toasts) < n
}

func (b *Bus) prune(now time.Time) {
	b.toasts = slices.DeleteFunc(b.toasts, func(t Toast) bool { return !now.Before(t.ExpiresAt) })
}

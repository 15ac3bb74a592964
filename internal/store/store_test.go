package store

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/internal/repository/memory"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
)

// flakySnapshot wraps a Snapshot and fails on demand.
type flakySnapshot struct {
	Snapshot
	loadErr   error
	saveErr   error
	deleteErr error
	saves     int
}

func (f *flakySnapshot) Load(ctx context.Context) ([]byte, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.Snapshot.Load(ctx)
}

func (f *flakySnapshot) Save(ctx context.Context, data []byte) error {
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.Snapshot.Save(ctx, data)
}

func (f *flakySnapshot) Delete(ctx context.Context) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.Snapshot.Delete(ctx)
}

type recordingNotifier struct {
	messages []string
}

func (n *recordingNotifier) Success(msg string) { n.messages = append(n.messages, "success:"+msg) }
func (n *recordingNotifier) Error(msg string)   { n.messages = append(n.messages, "error:"+msg) }
func (n *recordingNotifier) Info(msg string)    { n.messages = append(n.messages, "info:"+msg) }

func phone(id string, price float64) domain.CartProduct {
	return domain.CartProduct{ID: domain.ProductID(id), Name: "Phone", Model: "Model " + id, Price: price, Category: "phones"}
}

func TestCartStore_AddTwice(t *testing.T) {
	ctx := context.Background()
	snap := SessionSnapshot(memory.NewSnapshotStore(), "s1", repository.SlotCart)
	cart := NewCartStore(ctx, snap)

	cart.Add(ctx, phone("1", 10))
	cart.Add(ctx, phone("1", 10))

	assert.Equal(t, 2, cart.TotalItems())
	assert.Equal(t, "20", cart.Total().String())
	assert.Equal(t, 2, cart.Quantity("1"))
	assert.True(t, cart.Contains("1"))
	assert.False(t, cart.Contains("2"))
}

func TestCartStore_PersistsAndRestores(t *testing.T) {
	ctx := context.Background()
	snapshots := memory.NewSnapshotStore()
	cart := NewCartStore(ctx, SessionSnapshot(snapshots, "s1", repository.SlotCart))

	cart.Add(ctx, phone("1", 19.99))
	cart.Add(ctx, phone("2", 5))
	cart.UpdateQuantity(ctx, "2", 4)

	reloaded := NewCartStore(ctx, SessionSnapshot(snapshots, "s1", repository.SlotCart))
	if diff := cmp.Diff(cart.Items(), reloaded.Items(),
		cmpopts.SortSlices(func(a, b domain.CartLineItem) bool { return a.ID < b.ID })); diff != "" {
		t.Errorf("restored cart mismatch (-saved +restored):\n%s", diff)
	}

	raw, err := snapshots.Get(ctx, "s1", repository.SlotCart)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"id":1,`)
}

func TestCartStore_UpdateQuantityZeroRemoves(t *testing.T) {
	ctx := context.Background()
	cart := NewCartStore(ctx, SessionSnapshot(memory.NewSnapshotStore(), "s1", repository.SlotCart))

	cart.Add(ctx, phone("1", 10))
	cart.UpdateQuantity(ctx, "1", 0)
	assert.False(t, cart.Contains("1"))

	cart.Remove(ctx, "1")
	cart.Clear(ctx)
	assert.Empty(t, cart.Items())
}

func TestCartStore_ClearDeletesSnapshot(t *testing.T) {
	ctx := context.Background()
	snapshots := memory.NewSnapshotStore()
	cart := NewCartStore(ctx, SessionSnapshot(snapshots, "s1", repository.SlotCart))
	cart.Add(ctx, phone("1", 10))
	cart.Clear(ctx)

	_, err := snapshots.Get(ctx, "s1", repository.SlotCart)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Zero(t, NewCartStore(ctx, SessionSnapshot(snapshots, "s1", repository.SlotCart)).TotalItems())

	cart.Clear(ctx)
	assert.Empty(t, cart.Items(), "clearing an empty cart is harmless")
}

func TestCartStore_ClearFallsBackToEmptySnapshot(t *testing.T) {
	ctx := context.Background()
	snapshots := memory.NewSnapshotStore()
	snap := &flakySnapshot{
		Snapshot:  SessionSnapshot(snapshots, "s1", repository.SlotCart),
		deleteErr: errors.New("read-only replica"),
	}
	metrics := NewMetrics(prometheus.NewRegistry())
	cart := NewCartStore(ctx, snap, WithLogger(logger.Discard()), WithMetrics(metrics))
	cart.Add(ctx, phone("1", 10))
	cart.Clear(ctx)

	raw, err := snapshots.Get(ctx, "s1", repository.SlotCart)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.failures.WithLabelValues("cart", "delete")))
}

func TestCartStore_CorruptSnapshotStartsEmpty(t *testing.T) {
	ctx := context.Background()
	snapshots := memory.NewSnapshotStore()
	require.NoError(t, snapshots.Put(ctx, "s1", repository.SlotCart, []byte(`{not json`)))

	var buf bytes.Buffer
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	cart := NewCartStore(ctx, SessionSnapshot(snapshots, "s1", repository.SlotCart),
		WithLogger(logger.NewWithWriter("test", "debug", &buf)),
		WithMetrics(metrics),
	)

	assert.Zero(t, cart.TotalItems())
	assert.Contains(t, buf.String(), "discarding corrupt snapshot")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.failures.WithLabelValues("cart", "decode")))

	cart.Add(ctx, phone("1", 10))
	assert.Equal(t, 1, NewCartStore(ctx, SessionSnapshot(snapshots, "s1", repository.SlotCart)).TotalItems())
}

func TestCartStore_RestoreRepairsSnapshot(t *testing.T) {
	ctx := context.Background()
	snapshots := memory.NewSnapshotStore()
	require.NoError(t, snapshots.Put(ctx, "s1", repository.SlotCart, []byte(
		`[{"id":1,"price":10,"quantity":1},{"id":"1","price":10,"quantity":2},{"id":2,"quantity":0}]`)))

	cart := NewCartStore(ctx, SessionSnapshot(snapshots, "s1", repository.SlotCart))
	require.Len(t, cart.Items(), 1)
	assert.Equal(t, 3, cart.Quantity("1"))
}

func TestCartStore_LoadFailureStartsEmpty(t *testing.T) {
	ctx := context.Background()
	snap := &flakySnapshot{
		Snapshot: SessionSnapshot(memory.NewSnapshotStore(), "s1", repository.SlotCart),
		loadErr:  errors.New("connection refused"),
	}
	cart := NewCartStore(ctx, snap, WithLogger(logger.Discard()))
	assert.Zero(t, cart.TotalItems())
}

func TestCartStore_SaveFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	snap := &flakySnapshot{
		Snapshot: SessionSnapshot(memory.NewSnapshotStore(), "s1", repository.SlotCart),
		saveErr:  errors.New("quota exceeded"),
	}
	cart := NewCartStore(ctx, snap, WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	cart.Add(ctx, phone("1", 10))
	cart.Add(ctx, phone("1", 10))

	assert.Equal(t, 2, cart.Quantity("1"), "memory stays authoritative")
	assert.Equal(t, 2, snap.saves)
	assert.Contains(t, buf.String(), "quota exceeded")
}

func TestCartStore_AddNotifies(t *testing.T) {
	ctx := context.Background()
	n := &recordingNotifier{}
	cart := NewCartStore(ctx, SessionSnapshot(memory.NewSnapshotStore(), "s1", repository.SlotCart), WithNotifier(n))

	cart.Add(ctx, phone("1", 10))
	assert.Equal(t, []string{"info:Model 1 added to cart!"}, n.messages)
}

func entry(id string) domain.WishlistEntry {
	return domain.WishlistEntry{ID: domain.ProductID(id), Name: "Item " + id, Brand: "Apple", Price: 100}
}

func TestWishlistStore_AddTwiceIsIdempotent(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	n := &recordingNotifier{}
	w := NewWishlistStore(ctx, SessionSnapshot(memory.NewSnapshotStore(), "s1", repository.SlotWishlist),
		WithClock(func() time.Time { return now }), WithNotifier(n))

	assert.True(t, w.Add(ctx, entry("7")))
	assert.False(t, w.Add(ctx, entry("7")))

	assert.Equal(t, 1, w.TotalItems())
	got, ok := w.Get("7")
	require.True(t, ok)
	assert.Equal(t, now, got.AddedAt)
	assert.Equal(t, []string{"success:Added to wishlist"}, n.messages)
}

func TestWishlistStore_ToggleAndRemove(t *testing.T) {
	ctx := context.Background()
	w := NewWishlistStore(ctx, SessionSnapshot(memory.NewSnapshotStore(), "s1", repository.SlotWishlist))

	assert.True(t, w.Toggle(ctx, entry("1")))
	assert.True(t, w.Contains("1"))
	assert.False(t, w.Toggle(ctx, entry("1")))
	assert.False(t, w.Contains("1"))

	w.Add(ctx, entry("2"))
	assert.True(t, w.Remove(ctx, "2"))
	assert.False(t, w.Remove(ctx, "2"))

	w.Add(ctx, entry("3"))
	w.Clear(ctx)
	assert.Zero(t, w.TotalItems())
}

func TestWishlistStore_ClearDeletesSnapshot(t *testing.T) {
	ctx := context.Background()
	snapshots := memory.NewSnapshotStore()
	w := NewWishlistStore(ctx, SessionSnapshot(snapshots, "s1", repository.SlotWishlist))
	w.Add(ctx, entry("1"))

	_, err := snapshots.Get(ctx, "s1", repository.SlotWishlist)
	require.NoError(t, err)

	w.Clear(ctx)
	_, err = snapshots.Get(ctx, "s1", repository.SlotWishlist)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestWishlistStore_PersistsAndRestores(t *testing.T) {
	ctx := context.Background()
	snapshots := memory.NewSnapshotStore()
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	w := NewWishlistStore(ctx, SessionSnapshot(snapshots, "s1", repository.SlotWishlist),
		WithClock(func() time.Time { clock = clock.Add(time.Minute); return clock }))

	w.Add(ctx, entry("1"))
	w.Add(ctx, entry("2"))

	reloaded := NewWishlistStore(ctx, SessionSnapshot(snapshots, "s1", repository.SlotWishlist))
	if diff := cmp.Diff(w.Items(), reloaded.Items()); diff != "" {
		t.Errorf("restored wishlist mismatch (-saved +restored):\n%s", diff)
	}
}

func TestWishlistStore_CorruptSnapshotStartsEmpty(t *testing.T) {
	ctx := context.Background()
	snapshots := memory.NewSnapshotStore()
	require.NoError(t, snapshots.Put(ctx, "s1", repository.SlotWishlist, []byte(`[{"id":1,"addedAt":"not a time"}]`)))

	w := NewWishlistStore(ctx, SessionSnapshot(snapshots, "s1", repository.SlotWishlist), WithLogger(logger.Discard()))
	assert.Zero(t, w.TotalItems())
}

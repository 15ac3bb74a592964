package store

import (
	"context"
	"slices"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
)

// WishlistStore owns one shopper's wishlist. Like CartStore it is not safe
// for concurrent use.
type WishlistStore struct {
	cfg      config
	snap     Snapshot
	wishlist domain.Wishlist
}

// NewWishlistStore restores the wishlist from snap. Missing or corrupt data
// starts an empty wishlist.
func NewWishlistStore(ctx context.Context, snap Snapshot, opts ...Option) *WishlistStore {
	cfg := newConfig(opts)
	items := restore[domain.WishlistEntry](ctx, cfg, snap, string(repository.SlotWishlist))
	return &WishlistStore{
		cfg:      cfg,
		snap:     snap,
		wishlist: domain.NormalizeWishlist(items),
	}
}

func (s *WishlistStore) apply(ctx context.Context, e domain.WishlistEvent) {
	s.wishlist = domain.ReduceWishlist(s.wishlist, e)
	persist(ctx, s.cfg, s.snap, string(repository.SlotWishlist), s.wishlist.Items)
}

// Add saves entry, stamping AddedAt with the current time. It reports
// false when the id was already saved, in which case nothing changes.
func (s *WishlistStore) Add(ctx context.Context, entry domain.WishlistEntry) bool {
	if s.wishlist.Contains(entry.ID) {
		return false
	}
	entry.AddedAt = s.cfg.now().UTC()
	s.apply(ctx, domain.WishlistItemAdded{Entry: entry})
	s.cfg.notifier.Success("Added to wishlist")
	return true
}

// Remove deletes the entry for id. It reports whether an entry was removed.
func (s *WishlistStore) Remove(ctx context.Context, id domain.ProductID) bool {
	if !s.wishlist.Contains(id) {
		return false
	}
	s.apply(ctx, domain.WishlistItemRemoved{ID: id})
	s.cfg.notifier.Success("Removed from wishlist")
	return true
}

// Toggle removes entry when saved and adds it otherwise. It reports whether
// the entry is saved afterwards.
func (s *WishlistStore) Toggle(ctx context.Context, entry domain.WishlistEntry) bool {
	if s.Remove(ctx, entry.ID) {
		return false
	}
	return s.Add(ctx, entry)
}

// Clear empties the wishlist and deletes its snapshot.
func (s *WishlistStore) Clear(ctx context.Context) {
	s.wishlist = domain.ReduceWishlist(s.wishlist, domain.WishlistCleared{})
	discard[domain.WishlistEntry](ctx, s.cfg, s.snap, string(repository.SlotWishlist))
	s.cfg.notifier.Success("Wishlist cleared")
}

// Contains reports whether id is saved.
func (s *WishlistStore) Contains(id domain.ProductID) bool { return s.wishlist.Contains(id) }

// Get returns the saved entry for id.
func (s *WishlistStore) Get(id domain.ProductID) (domain.WishlistEntry, bool) {
	i := slices.IndexFunc(s.wishlist.Items, func(e domain.WishlistEntry) bool { return e.ID == id })
	if i < 0 {
		return domain.WishlistEntry{}, false
	}
	return s.wishlist.Items[i], true
}

// TotalItems is the number of saved entries.
func (s *WishlistStore) TotalItems() int { return s.wishlist.TotalItems() }

// Items returns a copy of the entries in insertion order.
func (s *WishlistStore) Items() []domain.WishlistEntry { return slices.Clone(s.wishlist.Items) }

// Wishlist returns a copy of the current wishlist.
func (s *WishlistStore) Wishlist() domain.Wishlist { return domain.Wishlist{Items: s.Items()} }

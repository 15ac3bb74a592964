package domain

import (
	"slices"
	"time"
)

// WishlistEntry is a saved product reference.
type WishlistEntry struct {
	ID       ProductID `json:"id" validate:"required"`
	Name     string    `json:"name"`
	Model    string    `json:"model"`
	Price    float64   `json:"price" validate:"gte=0"`
	Images   []string  `json:"images"`
	Category string    `json:"category"`
	Brand    string    `json:"brand"`
	AddedAt  time.Time `json:"addedAt"`
}

// Wishlist holds entries with set semantics on ID, in insertion order.
type Wishlist struct {
	Items []WishlistEntry `json:"items"`
}

// WishlistEvent is a state transition applied by ReduceWishlist.
type WishlistEvent interface {
	isWishlistEvent()
}

// WishlistItemAdded appends Entry unless its ID is already present.
type WishlistItemAdded struct{ Entry WishlistEntry }

// WishlistItemRemoved deletes the entry for ID if present.
type WishlistItemRemoved struct{ ID ProductID }

// WishlistCleared empties the wishlist.
type WishlistCleared struct{}

func (WishlistItemAdded) isWishlistEvent()   {}
func (WishlistItemRemoved) isWishlistEvent() {}
func (WishlistCleared) isWishlistEvent()     {}

// ReduceWishlist returns the wishlist that results from applying e to w.
// It never mutates w.
func ReduceWishlist(w Wishlist, e WishlistEvent) Wishlist {
	switch e := e.(type) {
	case WishlistItemAdded:
		if w.Contains(e.Entry.ID) {
			return Wishlist{Items: slices.Clone(w.Items)}
		}
		entry := e.Entry
		entry.Images = nonNilStrings(entry.Images)
		return Wishlist{Items: append(slices.Clone(w.Items), entry)}

	case WishlistItemRemoved:
		return Wishlist{Items: slices.DeleteFunc(slices.Clone(w.Items), func(we WishlistEntry) bool {
			return we.ID == e.ID
		})}

	case WishlistCleared:
		return Wishlist{}
	}
	return Wishlist{Items: slices.Clone(w.Items)}
}

// Contains reports whether id is saved.
func (w Wishlist) Contains(id ProductID) bool {
	return slices.ContainsFunc(w.Items, func(we WishlistEntry) bool { return we.ID == id })
}

// TotalItems is the number of entries.
func (w Wishlist) TotalItems() int {
	return len(w.Items)
}

// NormalizeWishlist repairs a snapshot read back from storage: entries
// without an ID are dropped and only the first entry per ID is kept.
func NormalizeWishlist(items []WishlistEntry) Wishlist {
	out := make([]WishlistEntry, 0, len(items))
	seen := make(map[ProductID]struct{}, len(items))
	for _, we := range items {
		if we.ID == "" {
			continue
		}
		if _, dup := seen[we.ID]; dup {
			continue
		}
		seen[we.ID] = struct{}{}
		we.Images = nonNilStrings(we.Images)
		out = append(out, we)
	}
	return Wishlist{Items: out}
}

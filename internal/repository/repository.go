package repository

import (
	"context"

	"github.com/utafrali/storefront/internal/domain"
)

// Slot names one of a session's durable snapshots.
type Slot string

const (
	SlotCart     Slot = "cart"
	SlotWishlist Slot = "wishlist"
)

// SnapshotStore is durable key/value storage for serialized store
// snapshots, partitioned by session.
type SnapshotStore interface {
	// Get returns the stored snapshot, or an apperrors.ErrNotFound error
	// when the slot has never been written.
	Get(ctx context.Context, sessionID string, slot Slot) ([]byte, error)

	// Put overwrites the snapshot in the slot.
	Put(ctx context.Context, sessionID string, slot Slot, data []byte) error

	// Delete removes the snapshot. Deleting a missing slot is not an error.
	Delete(ctx context.Context, sessionID string, slot Slot) error
}

// ProductSource fetches the full product catalog.
type ProductSource interface {
	FetchProducts(ctx context.Context) ([]domain.Product, error)
}

// Pinger is implemented by backends that can report their own health.
type Pinger interface {
	Ping(ctx context.Context) error
}

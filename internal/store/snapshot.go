package store

import (
	"context"

	"github.com/utafrali/storefront/internal/repository"
)

// Snapshot is the persistence adapter of one store: a single durable slot
// holding the serialized entry collection.
type Snapshot interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
	Delete(ctx context.Context) error
}

// SessionSnapshot binds a slot of a session to a Snapshot.
func SessionSnapshot(s repository.SnapshotStore, sessionID string, slot repository.Slot) Snapshot {
	return &sessionSnapshot{store: s, sessionID: sessionID, slot: slot}
}

type sessionSnapshot struct {
	store     repository.SnapshotStore
	sessionID string
	slot      repository.Slot
}

func (s *sessionSnapshot) Load(ctx context.Context) ([]byte, error) {
	return s.store.Get(ctx, s.sessionID, s.slot)
}

func (s *sessionSnapshot) Save(ctx context.Context, data []byte) error {
	return s.store.Put(ctx, s.sessionID, s.slot, data)
}

func (s *sessionSnapshot) Delete(ctx context.Context) error {
	return s.store.Delete(ctx, s.sessionID, s.slot)
}

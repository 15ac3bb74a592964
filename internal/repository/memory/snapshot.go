package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

type key struct {
	session string
	slot    repository.Slot
}

// SnapshotStore implements repository.SnapshotStore in process memory.
// Snapshots do not survive a restart.
type SnapshotStore struct {
	mu   sync.RWMutex
	data map[key][]byte
}

// NewSnapshotStore creates an empty in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{data: make(map[key][]byte)}
}

// Get returns a copy of the stored snapshot.
func (s *SnapshotStore) Get(_ context.Context, sessionID string, slot repository.Slot) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.data[key{sessionID, slot}]
	if !ok {
		return nil, apperrors.NotFound("snapshot", sessionID+"/"+string(slot))
	}
	return slices.Clone(data), nil
}

// Put stores a copy of data.
func (s *SnapshotStore) Put(_ context.Context, sessionID string, slot repository.Slot, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key{sessionID, slot}] = slices.Clone(data)
	return nil
}

// Delete removes the snapshot if present.
func (s *SnapshotStore) Delete(_ context.Context, sessionID string, slot repository.Slot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key{sessionID, slot})
	return nil
}

// Len returns the number of stored snapshots.
func (s *SnapshotStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

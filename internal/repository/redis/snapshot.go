package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

const keyPrefix = "storefront:"

// SnapshotStore implements repository.SnapshotStore using Redis strings.
// Every write refreshes the key's TTL.
type SnapshotStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSnapshotStore creates a Redis-backed snapshot store. A ttl of 0 keeps
// snapshots forever.
func NewSnapshotStore(client *redis.Client, ttl time.Duration) *SnapshotStore {
	return &SnapshotStore{
		client: client,
		ttl:    ttl,
	}
}

func key(sessionID string, slot repository.Slot) string {
	return keyPrefix + sessionID + ":" + string(slot)
}

// Get retrieves a snapshot.
func (s *SnapshotStore) Get(ctx context.Context, sessionID string, slot repository.Slot) ([]byte, error) {
	data, err := s.client.Get(ctx, key(sessionID, slot)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NotFound("snapshot", sessionID+"/"+string(slot))
		}
		return nil, fmt.Errorf("redis get snapshot: %w", err)
	}
	return data, nil
}

// Put stores a snapshot with the configured TTL.
func (s *SnapshotStore) Put(ctx context.Context, sessionID string, slot repository.Slot, data []byte) error {
	if err := s.client.Set(ctx, key(sessionID, slot), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set snapshot: %w", err)
	}
	return nil
}

// Delete removes a snapshot.
func (s *SnapshotStore) Delete(ctx context.Context, sessionID string, slot repository.Slot) error {
	if err := s.client.Del(ctx, key(sessionID, slot)).Err(); err != nil {
		return fmt.Errorf("redis del snapshot: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (s *SnapshotStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/pkg/database"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// SnapshotStore implements repository.SnapshotStore on the
// storefront_snapshots table.
type SnapshotStore struct {
	db     DBTX
	tracer database.QueryTracer
}

// NewSnapshotStore creates a PostgreSQL-backed snapshot store.
func NewSnapshotStore(db DBTX, tracer database.QueryTracer) *SnapshotStore {
	return &SnapshotStore{db: db, tracer: tracer}
}

// Get retrieves a snapshot.
func (s *SnapshotStore) Get(ctx context.Context, sessionID string, slot repository.Slot) (data []byte, err error) {
	query := `SELECT data FROM storefront_snapshots WHERE session_id = $1 AND slot = $2`

	ctx, done := s.tracer.Start(ctx, "select", query)
	defer func() { done(err) }()

	if err := s.db.QueryRow(ctx, query, sessionID, string(slot)).Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("snapshot", sessionID+"/"+string(slot))
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return data, nil
}

// Put upserts a snapshot.
func (s *SnapshotStore) Put(ctx context.Context, sessionID string, slot repository.Slot, data []byte) (err error) {
	query := `
		INSERT INTO storefront_snapshots (session_id, slot, data, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (session_id, slot)
		DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`

	ctx, done := s.tracer.Start(ctx, "upsert", query)
	defer func() { done(err) }()

	if _, err := s.db.Exec(ctx, query, sessionID, string(slot), data); err != nil {
		return fmt.Errorf("put snapshot: %w", err)
	}
	return nil
}

// Delete removes a snapshot.
func (s *SnapshotStore) Delete(ctx context.Context, sessionID string, slot repository.Slot) (err error) {
	query := `DELETE FROM storefront_snapshots WHERE session_id = $1 AND slot = $2`

	ctx, done := s.tracer.Start(ctx, "delete", query)
	defer func() { done(err) }()

	if _, err := s.db.Exec(ctx, query, sessionID, string(slot)); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (s *SnapshotStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

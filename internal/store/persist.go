package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// restore reads a JSON array snapshot. A missing slot, a failed read and a
// corrupt snapshot all yield nil; only the latter two are logged.
func restore[T any](ctx context.Context, c config, snap Snapshot, slot string) []T {
	data, err := snap.Load(ctx)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			c.metrics.fail(slot, "load")
			c.logger.WarnContext(ctx, "snapshot load failed, starting empty",
				slog.String("slot", slot),
				slog.String("error", err.Error()),
			)
		}
		return nil
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		c.metrics.fail(slot, "decode")
		c.logger.ErrorContext(ctx, "discarding corrupt snapshot",
			slog.String("slot", slot),
			slog.String("error", apperrors.Corrupt(slot, err).Error()),
		)
		return nil
	}
	return items
}

// persist writes the full entry collection. Failures are logged and
// swallowed; the in-memory state stays authoritative.
func persist[T any](ctx context.Context, c config, snap Snapshot, slot string, items []T) {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err == nil {
		err = snap.Save(ctx, data)
	}
	if err != nil {
		c.metrics.fail(slot, "save")
		c.logger.WarnContext(ctx, "snapshot save failed",
			slog.String("slot", slot),
			slog.String("error", err.Error()),
		)
	}
}

// discard removes the slot of a cleared store. If the delete fails an empty
// collection is written instead, so the old entries are not restored.
func discard[T any](ctx context.Context, c config, snap Snapshot, slot string) {
	if err := snap.Delete(ctx); err != nil {
		c.metrics.fail(slot, "delete")
		c.logger.WarnContext(ctx, "snapshot delete failed",
			slog.String("slot", slot),
			slog.String("error", err.Error()),
		)
		persist[T](ctx, c, snap, slot, nil)
	}
}

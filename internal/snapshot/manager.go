// Package snapshot drives the persistence and migration protocol around
// process replacement: project the authoritative state, commit it to a
// durable blob store before suspension, and rebuild a live store (indexes
// rederived, legacy owners backfilled) after resumption.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/yourorg/adminstate/internal/domain"
	"github.com/yourorg/adminstate/internal/observability/metrics"
	"github.com/yourorg/adminstate/internal/store"
)

// Manager serializes the store into the blob store and back.
type Manager struct {
	blobs  domain.BlobStore
	logger *slog.Logger
}

// NewManager creates a snapshot manager.
func NewManager(blobs domain.BlobStore, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{blobs: blobs, logger: logger}
}

// Save projects the full authoritative state and commits it durably. A save
// failure is fatal to the lifecycle transition: the caller must abort the
// suspension rather than lose data, so the error is returned unsoftened.
func (m *Manager) Save(ctx context.Context, st *store.Store) error {
	start := time.Now()

	blob, err := json.Marshal(st.Stable())
	if err != nil {
		metrics.ObserveSnapshot("save", "error", time.Since(start))
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := m.blobs.Save(ctx, blob); err != nil {
		metrics.ObserveSnapshot("save", "error", time.Since(start))
		return fmt.Errorf("commit snapshot: %w", err)
	}

	metrics.ObserveSnapshot("save", "ok", time.Since(start))
	m.logger.Info("snapshot committed",
		slog.Int("bytes", len(blob)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// Restore loads the snapshot and rebuilds a live store: secondary indexes
// are rederived from the primary mappings and any contact or deal without an
// owner is backfilled with the first known admin. When no snapshot exists an
// empty store is returned rather than an error.
func (m *Manager) Restore(ctx context.Context, clock domain.Clock) (*store.Store, error) {
	start := time.Now()

	blob, found, err := m.blobs.Load(ctx)
	if err != nil {
		metrics.ObserveSnapshot("restore", "error", time.Since(start))
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if !found {
		m.logger.Info("no snapshot found, starting empty")
		metrics.ObserveSnapshot("restore", "empty", time.Since(start))
		return store.New(clock), nil
	}

	var stable store.Stable
	if err := json.Unmarshal(blob, &stable); err != nil {
		metrics.ObserveSnapshot("restore", "error", time.Since(start))
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	st := store.FromStable(stable, clock)

	if owner, ok := st.FirstAdmin(); ok {
		if migrated := st.MigrateOwnership(owner); migrated > 0 {
			m.logger.Info("backfilled record ownership",
				slog.Int("records", migrated),
				slog.String("owner", string(owner)),
			)
		}
	}

	metrics.ObserveSnapshot("restore", "ok", time.Since(start))
	m.logger.Info("state restored from snapshot",
		slog.Int("bytes", len(blob)),
		slog.Int("snapshot_version", stable.Version),
		slog.Duration("elapsed", time.Since(start)),
	)
	return st, nil
}

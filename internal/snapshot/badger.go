package snapshot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

// snapshotKey is the single key the blob lives under; the store is scoped to
// one process, so there is nothing else to key by.
var snapshotKey = []byte("adminstate/snapshot")

// BadgerStore is the default durable blob store: an embedded BadgerDB
// directory, no external service required.
type BadgerStore struct {
	db *badger.DB
}

// BadgerConfig configures the embedded store.
type BadgerConfig struct {
	// Dir is the BadgerDB directory. Ignored when InMemory is set.
	Dir string
	// InMemory skips disk persistence; used by tests.
	InMemory bool
	// Logger receives BadgerDB's own log output. Nil disables it.
	Logger *slog.Logger
}

// NewBadgerStore opens (or creates) the embedded database. Writes are
// synchronous: a reported commit must survive power loss.
func NewBadgerStore(cfg BadgerConfig) (*BadgerStore, error) {
	opts := badger.DefaultOptions(cfg.Dir).
		WithInMemory(cfg.InMemory).
		WithSyncWrites(!cfg.InMemory).
		WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", cfg.Dir, err)
	}
	return &BadgerStore{db: db}, nil
}

// Save writes the blob under the snapshot key.
func (b *BadgerStore) Save(_ context.Context, blob []byte) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(snapshotKey, blob)
	})
	if err != nil {
		return fmt.Errorf("badger set: %w", err)
	}
	return nil
}

// Load reads the blob, reporting found=false when no snapshot exists yet.
func (b *BadgerStore) Load(_ context.Context) ([]byte, bool, error) {
	var blob []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(snapshotKey)
		if err != nil {
			return err
		}
		blob, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("badger get: %w", err)
	}
	return blob, true, nil
}

// Close releases the database.
func (b *BadgerStore) Close() error {
	return b.db.Close()
}

// badgerLogger adapts slog to BadgerDB's logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

package storage

import (
	"context"
	"errors"
	"fmt"

	"daybook/config"
)

// ErrNoValue is returned by Slot.Get when nothing is stored under a key
var ErrNoValue = errors.New("no value stored")

// Slot is a durable key-value slot holding opaque blobs.
// This allows swapping between a JSON file, SQLite, PostgreSQL or memory.
type Slot interface {
	// Get returns the blob stored under key, or ErrNoValue.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put replaces the blob under key. A failed Put leaves the previous blob intact.
	Put(ctx context.Context, key string, data []byte) error

	// Lifecycle
	Close() error
}

// Open creates the slot selected by cfg.Storage.Backend
func Open(ctx context.Context, cfg *config.Config) (Slot, error) {
	switch cfg.Storage.Backend {
	case config.BackendFile:
		return NewFileSlot(cfg.DataPath())
	case config.BackendSQLite:
		return NewSQLiteSlot(cfg.DataPath())
	case config.BackendPostgres:
		return NewPgSlot(ctx, cfg.Storage.DSN)
	case config.BackendMemory:
		return NewMemorySlot(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

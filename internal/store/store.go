// Package store persists conversation messages. Two backends exist: SQLite
// (default) and Badger. Neither exposes an update operation; messages are
// append-only and removed only by pruning.
package store

import (
	"context"
	"fmt"
)

// Store is the message persistence adapter. QueryByUser makes no ordering
// promise; callers sort.
type Store interface {
	Append(ctx context.Context, msg Message) error
	QueryByUser(ctx context.Context, userID string) ([]Message, error)
	BatchDelete(ctx context.Context, ids []string) error
	Close() error
}

// Open constructs the backend named by the configuration.
func Open(backend, path string) (Store, error) {
	switch backend {
	case "", "sqlite":
		return OpenSQLite(path)
	case "badger":
		return OpenBadger(path)
	default:
		return nil, fmt.Errorf("unknown history backend %q", backend)
	}
}

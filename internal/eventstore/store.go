package eventstore

import (
	"context"
	"time"
)

// Store persists build events. SQLiteStore is the only implementation; tests
// use it with an in-memory database.
type Store interface {
	// Append records one event of a build invocation.
	Append(ctx context.Context, buildID, eventType string, payload []byte, metadata map[string]string) error

	// GetByBuildID returns the events of one build in the order they were appended.
	GetByBuildID(ctx context.Context, buildID string) ([]Event, error)

	// GetRange returns events whose timestamp falls in [start, end].
	GetRange(ctx context.Context, start, end time.Time) ([]Event, error)

	Close() error
}

// Emit appends ev to store under its build ID.
func Emit(ctx context.Context, store Store, ev Event) error {
	return store.Append(ctx, ev.BuildID(), ev.Type(), ev.Payload(), ev.Metadata())
}

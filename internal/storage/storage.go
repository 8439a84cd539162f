// Package storage persists converted soundings in a SQLite archive so that
// sessions can be listed and re-read later, e.g. for quick-look rendering.
package storage

import (
	"context"

	"github.com/skysonde/dataflash-met/internal/sounding"
)

// Store provides an interface for managing the sounding archive. It handles
// sessions and their per-second observations. All operations that write to
// the database should be considered atomic.
type Store interface {
	// CreateSession registers a new conversion run and returns its unique
	// identifier. sourceLog is the base name of the input flight log; config
	// is the optional engine configuration and can be a string, []byte, or a
	// JSON-serializable object.
	CreateSession(ctx context.Context, sourceLog string, config any) (sessionID int64, err error)

	// Session retrieves a stored session by its ID.
	Session(ctx context.Context, id int64) (session *SoundingSession, err error)

	// Sessions returns all stored sessions ordered by creation time.
	Sessions(ctx context.Context) (sessions []*SoundingSession, err error)

	// StoreObservations saves every row of the assembled table for the given
	// session in a single transaction. NaN values are stored as NULL.
	StoreObservations(ctx context.Context, sessionID int64, table *sounding.Table) error

	// Observations returns an iterator over the stored rows of a session in
	// time order, optionally restricted by the reader options.
	Observations(ctx context.Context, sessionID int64, opts ...ReaderOption) (ObservationReader, error)

	// Close releases all database connections and resources. After Close is
	// called, the store instance cannot be reused. It is safe to call Close
	// multiple times.
	Close() error
}

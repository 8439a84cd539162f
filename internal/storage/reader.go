package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/skysonde/dataflash-met/internal/sounding"
)

// ObservationReader provides an iterator-based interface for reading stored
// observations of one session in time order.
type ObservationReader interface {
	// Next advances the iterator and returns true if there is another
	// observation to read, false when the iteration is complete or if an
	// error occurred.
	Next(ctx context.Context) bool

	// Current returns the current observation. If called after Next()
	// returns false, the behavior is undefined.
	Current() sounding.Row

	// Error returns any error that occurred during iteration. When Next()
	// returns false, Error() distinguishes end of data from a failure.
	Error() error

	// Close releases the resources associated with the reader. After Close
	// is called, the reader should not be used.
	Close() error
}

// ReaderOption configures an ObservationReader with filtering criteria.
type ReaderOption func(*sqliteObservationReader)

// WithStartTime excludes observations before the given whole-second Unix
// timestamp.
func WithStartTime(t float64) ReaderOption {
	return func(r *sqliteObservationReader) {
		r.startTime = &t
	}
}

// WithEndTime excludes observations after the given whole-second Unix
// timestamp.
func WithEndTime(t float64) ReaderOption {
	return func(r *sqliteObservationReader) {
		r.endTime = &t
	}
}

// WithTimeRange restricts the reader to [startTime, endTime].
func WithTimeRange(startTime, endTime float64) ReaderOption {
	return func(r *sqliteObservationReader) {
		r.startTime = &startTime
		r.endTime = &endTime
	}
}

type sqliteObservationReader struct {
	db        *sql.DB
	sessionID int64

	startTime *float64
	endTime   *float64

	current sounding.Row
	rows    *sql.Rows
	err     error
}

func newSqliteObservationReader(ctx context.Context, db *sql.DB, sessionID int64, opts ...ReaderOption) (*sqliteObservationReader, error) {
	r := &sqliteObservationReader{
		db:        db,
		sessionID: sessionID,
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.init(ctx); err != nil {
		return nil, fmt.Errorf("initializing reader: %w", err)
	}
	return r, nil
}

func (r *sqliteObservationReader) init(ctx context.Context) (err error) {
	if r.startTime == nil || r.endTime == nil {
		if err = r.initTimeBounds(ctx); err != nil {
			return fmt.Errorf("setting up filters: %w", err)
		}
	}

	stmt, err := r.db.PrepareContext(ctx, selectObservationsSQL)
	if err != nil {
		return fmt.Errorf("preparing query: %w", err)
	}
	defer closeWithError(stmt, &err)

	rows, err := stmt.QueryContext(ctx, r.sessionID, r.startTime, r.endTime)
	if err != nil {
		return fmt.Errorf("querying observations: %w", err)
	}

	r.rows = rows
	return nil
}

// initTimeBounds fills unset time filters with the session's actual bounds.
func (r *sqliteObservationReader) initTimeBounds(ctx context.Context) (err error) {
	stmt, err := r.db.PrepareContext(ctx, selectTimeBoundsSQL)
	if err != nil {
		return err
	}
	defer closeWithError(stmt, &err)

	var minTime, maxTime sql.NullFloat64
	if err = stmt.QueryRowContext(ctx, r.sessionID).Scan(&minTime, &maxTime); err != nil {
		return err
	}

	if r.startTime == nil {
		r.startTime = &minTime.Float64
	}
	if r.endTime == nil {
		r.endTime = &maxTime.Float64
	}
	return nil
}

func (r *sqliteObservationReader) Next(ctx context.Context) bool {
	if r.err != nil || r.rows == nil {
		return false
	}
	if err := ctx.Err(); err != nil {
		r.err = err
		return false
	}
	if !r.rows.Next() {
		return false
	}

	var o observationData
	if err := r.rows.Scan(
		&o.Obs,
		&o.Time,
		&o.Latitude,
		&o.Longitude,
		&o.Altitude,
		&o.AirTemp,
		&o.DewPoint,
		&o.RelHum,
		&o.AirPress,
	); err != nil {
		r.err = err
		return false
	}

	r.current = toRow(&o)
	return true
}

func (r *sqliteObservationReader) Current() sounding.Row {
	return r.current
}

func (r *sqliteObservationReader) Error() error {
	if r.err != nil {
		return r.err
	}
	if r.rows != nil {
		return r.rows.Err()
	}
	return nil
}

func (r *sqliteObservationReader) Close() error {
	if r.rows == nil {
		return nil
	}
	return r.rows.Close()
}

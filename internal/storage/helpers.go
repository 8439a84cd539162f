package storage

import (
	"database/sql"
	"errors"
	"math"

	"github.com/skysonde/dataflash-met/internal/sounding"
)

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}

func rollbackWithError(rb interface{ Rollback() error }, err *error) {
	if cErr := rb.Rollback(); cErr != nil && !isTxDone(cErr) && *err == nil {
		*err = cErr
	}
}

func isTxDone(err error) bool {
	return errors.Is(err, sql.ErrTxDone)
}

// toNullFloat maps NaN to NULL: the archive never stores NaN literals.
func toNullFloat(v float64) sql.NullFloat64 {
	return sql.NullFloat64{
		Float64: v,
		Valid:   !math.IsNaN(v),
	}
}

// fromNullFloat maps NULL back to NaN.
func fromNullFloat(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

func toObservationData(sessionID int64, row sounding.Row) *observationData {
	return &observationData{
		SessionID: sessionID,
		Obs:       int64(row.Obs),
		Time:      row.Time,
		Latitude:  toNullFloat(row.Lat),
		Longitude: toNullFloat(row.Lon),
		Altitude:  toNullFloat(row.Alt),
		AirTemp:   toNullFloat(row.AirTemp),
		DewPoint:  toNullFloat(row.DewPoint),
		RelHum:    toNullFloat(row.RelHum),
		AirPress:  toNullFloat(row.AirPress),
	}
}

func toRow(o *observationData) sounding.Row {
	nan := math.NaN()
	return sounding.Row{
		Obs:       int(o.Obs),
		Time:      o.Time,
		Lat:       fromNullFloat(o.Latitude),
		Lon:       fromNullFloat(o.Longitude),
		Alt:       fromNullFloat(o.Altitude),
		AirTemp:   fromNullFloat(o.AirTemp),
		DewPoint:  fromNullFloat(o.DewPoint),
		RelHum:    fromNullFloat(o.RelHum),
		AirPress:  fromNullFloat(o.AirPress),
		Gpt:       nan,
		GptHeight: nan,
		WindSpeed: nan,
		WindDir:   nan,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(r rowScanner) (*SoundingSession, error) {
	var sess SoundingSession
	var config sql.NullString
	if err := r.Scan(&sess.ID, &sess.CreatedAt, &sess.SourceLog, &config); err != nil {
		return nil, err
	}
	if config.Valid {
		sess.Config = &config.String
	}
	return &sess, nil
}

package storage

import (
	"database/sql"
	"time"
)

// SoundingSession describes one converted flight log stored in the archive.
type SoundingSession struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"createdAt"`        // When the conversion ran
	SourceLog string    `json:"sourceLog"`        // Base name of the input log
	Config    *string   `json:"config,omitempty"` // Engine configuration in JSON format
}

// observationData mirrors one observations row. NaN table values are stored
// as NULL so the archive stays queryable with plain SQL aggregates.
type observationData struct {
	ID        int64
	SessionID int64
	Obs       int64
	Time      float64
	Latitude  sql.NullFloat64
	Longitude sql.NullFloat64
	Altitude  sql.NullFloat64
	AirTemp   sql.NullFloat64
	DewPoint  sql.NullFloat64
	RelHum    sql.NullFloat64
	AirPress  sql.NullFloat64
}

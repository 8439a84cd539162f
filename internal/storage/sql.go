package storage

import (
	_ "embed"
)

const (
	insertSessionSQL = `
INSERT INTO sessions (
                      created_at,
                      source_log,
                      config)
VALUES (CURRENT_TIMESTAMP, ?, ?)`

	selectSessionSQL = `
SELECT
    id,
    created_at,
    source_log,
    config
FROM sessions
WHERE
    id = ?`

	selectSessionsSQL = `
SELECT
    id,
    created_at,
    source_log,
    config
FROM sessions
ORDER BY created_at, id`

	insertObservationSQL = `
INSERT INTO observations (session_id,
                          obs,
                          time,
                          latitude,
                          longitude,
                          altitude,
                          air_temperature,
                          dew_point,
                          relative_humidity,
                          air_pressure)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	selectObservationsSQL = `
SELECT
    obs,
    time,
    latitude,
    longitude,
    altitude,
    air_temperature,
    dew_point,
    relative_humidity,
    air_pressure
FROM observations
WHERE
    session_id = ?
    AND time BETWEEN ? AND ?
ORDER BY time`

	selectTimeBoundsSQL = `
SELECT
    MIN(time),
    MAX(time)
FROM observations
WHERE session_id = ?`
)

//go:embed schema.sql
var initSchemaSQL string

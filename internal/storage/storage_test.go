package storage

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/skysonde/dataflash-met/internal/sounding"
)

func testTable() *sounding.Table {
	nan := math.NaN()
	return &sounding.Table{Rows: []sounding.Row{
		{
			Obs: 1, Lat: -33.86, Lon: 151.21, Alt: 120, Time: 10,
			AirTemp: 22, DewPoint: 13.875, RelHum: 60, AirPress: 1013.25,
			Gpt: nan, GptHeight: nan, WindSpeed: nan, WindDir: nan,
		},
		{
			Obs: 2, Lat: nan, Lon: nan, Alt: nan, Time: 11,
			AirTemp: nan, DewPoint: nan, RelHum: nan, AirPress: nan,
			Gpt: nan, GptHeight: nan, WindSpeed: nan, WindDir: nan,
		},
	}}
}

func TestSqliteStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewSqliteStore(filepath.Join(t.TempDir(), "soundings.sqlite"))
	defer func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	}()

	sessionID, err := store.CreateSession(ctx, "flight_0042.bin", map[string]int{"smoothingWindow": 9})
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	table := testTable()
	if err = store.StoreObservations(ctx, sessionID, table); err != nil {
		t.Fatalf("StoreObservations() error = %v", err)
	}

	session, err := store.Session(ctx, sessionID)
	if err != nil {
		t.Fatalf("Session() error = %v", err)
	}
	if session.SourceLog != "flight_0042.bin" {
		t.Errorf("session source log = %q, want flight_0042.bin", session.SourceLog)
	}
	if session.Config == nil {
		t.Errorf("session config is nil, want stored JSON")
	}

	reader, err := store.Observations(ctx, sessionID)
	if err != nil {
		t.Fatalf("Observations() error = %v", err)
	}
	defer reader.Close()

	var got []sounding.Row
	for reader.Next(ctx) {
		got = append(got, reader.Current())
	}
	if err = reader.Error(); err != nil {
		t.Fatalf("reader error = %v", err)
	}

	// NaN goes in as NULL and comes back out as NaN.
	if diff := cmp.Diff(table.Rows, got, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("observations mismatch (-want +got):\n%s", diff)
	}
}

func TestSqliteStore_ObservationsTimeRange(t *testing.T) {
	ctx := context.Background()
	store := NewSqliteStore(filepath.Join(t.TempDir(), "soundings.sqlite"))
	defer store.Close()

	sessionID, err := store.CreateSession(ctx, "flight_0042.bin", nil)
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if err = store.StoreObservations(ctx, sessionID, testTable()); err != nil {
		t.Fatalf("StoreObservations() error = %v", err)
	}

	reader, err := store.Observations(ctx, sessionID, WithTimeRange(11, 11))
	if err != nil {
		t.Fatalf("Observations() error = %v", err)
	}
	defer reader.Close()

	var times []float64
	for reader.Next(ctx) {
		times = append(times, reader.Current().Time)
	}
	if err = reader.Error(); err != nil {
		t.Fatalf("reader error = %v", err)
	}

	if len(times) != 1 || times[0] != 11 {
		t.Errorf("filtered times = %v, want [11]", times)
	}
}

func TestSqliteStore_Sessions(t *testing.T) {
	ctx := context.Background()
	store := NewSqliteStore(filepath.Join(t.TempDir(), "soundings.sqlite"))
	defer store.Close()

	for _, name := range []string{"a.bin", "b.bin"} {
		if _, err := store.CreateSession(ctx, name, nil); err != nil {
			t.Fatalf("CreateSession(%s) error = %v", name, err)
		}
	}

	sessions, err := store.Sessions(ctx)
	if err != nil {
		t.Fatalf("Sessions() error = %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("session count = %d, want 2", len(sessions))
	}
	if sessions[0].SourceLog != "a.bin" || sessions[1].SourceLog != "b.bin" {
		t.Errorf("sessions = %v, %v", sessions[0].SourceLog, sessions[1].SourceLog)
	}
}

package metfile

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/skysonde/dataflash-met/internal/sounding"
)

func sampleTable() *sounding.Table {
	nan := math.NaN()
	return &sounding.Table{Rows: []sounding.Row{
		{
			Obs: 1, Lat: -33.8612345, Lon: 151.2109876, Alt: 120.25, Time: 10,
			AirTemp: 22.123456, DewPoint: 13.9, RelHum: 60, AirPress: 1013.25,
			Gpt: nan, GptHeight: nan, WindSpeed: nan, WindDir: nan,
		},
		{
			Obs: 2, Lat: nan, Lon: nan, Alt: nan, Time: 11,
			AirTemp: nan, DewPoint: nan, RelHum: nan, AirPress: nan,
			Gpt: nan, GptHeight: nan, WindSpeed: nan, WindDir: nan,
		},
	}}
}

func TestWriteTable_Format(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTable(&buf, sampleTable()); err != nil {
		t.Fatalf("WriteTable() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("line count = %d, want header + 2 rows", len(lines))
	}

	if lines[0] != "obs,lat,lon,altitude,time,air_temp,dew_point,rel_hum,air_press,gpt,gpt_height,wind_speed,wind_dir" {
		t.Errorf("header = %q", lines[0])
	}

	if want := "1,-33.8612345,151.2109876,120.25,10.00,22.123456,13.900000,60.000000,1013.250000,NaN,NaN,NaN,NaN"; lines[1] != want {
		t.Errorf("row 1 = %q, want %q", lines[1], want)
	}

	// A fully-missing row is all NaN literals after the index and time.
	if want := "2,NaN,NaN,NaN,11.00,NaN,NaN,NaN,NaN,NaN,NaN,NaN,NaN"; lines[2] != want {
		t.Errorf("row 2 = %q, want %q", lines[2], want)
	}
}

func TestWriteTable_RoundTrip(t *testing.T) {
	table := sampleTable()

	var buf bytes.Buffer
	if err := WriteTable(&buf, table); err != nil {
		t.Fatalf("WriteTable() error = %v", err)
	}

	got, err := ReadTable(&buf)
	if err != nil {
		t.Fatalf("ReadTable() error = %v", err)
	}

	// Observation indices and time buckets survive the round trip exactly;
	// float columns survive to the written precision.
	for i, row := range got.Rows {
		if row.Obs != table.Rows[i].Obs {
			t.Errorf("row %d: obs = %d, want %d", i, row.Obs, table.Rows[i].Obs)
		}
		if row.Time != table.Rows[i].Time {
			t.Errorf("row %d: time = %v, want %v", i, row.Time, table.Rows[i].Time)
		}
	}

	if diff := cmp.Diff(table.Rows, got.Rows, cmpopts.EquateNaNs(), cmpopts.EquateApprox(0, 1e-6)); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestReadTable_RejectsMalformedInput(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"wrong header", "a,b,c\n"},
		{"short row", "obs,lat,lon,altitude,time,air_temp,dew_point,rel_hum,air_press,gpt,gpt_height,wind_speed,wind_dir\n1,2,3\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ReadTable(strings.NewReader(tc.input)); err == nil {
				t.Errorf("ReadTable(%q) succeeded, want error", tc.input)
			}
		})
	}
}

// Package metfile writes the assembled observation table to its two on-disk
// forms: a comma-separated text table and a NetCDF dataset.
package metfile

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/skysonde/dataflash-met/internal/sounding"
)

const textHeader = "obs,lat,lon,altitude,time,air_temp,dew_point,rel_hum,air_press,gpt,gpt_height,wind_speed,wind_dir"

// WriteTable writes the table in the text form: a header row followed by one
// line per observation. Missing values are written literally as NaN, which
// %f formatting produces for free.
func WriteTable(w io.Writer, t *sounding.Table) error {
	bw := bufio.NewWriter(w)

	if _, err := fmt.Fprintln(bw, textHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, row := range t.Rows {
		_, err := fmt.Fprintf(bw, "%d,%.7f,%.7f,%.2f,%.2f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f\n",
			row.Obs,
			row.Lat, row.Lon, row.Alt,
			row.Time,
			row.AirTemp, row.DewPoint, row.RelHum, row.AirPress,
			row.Gpt, row.GptHeight, row.WindSpeed, row.WindDir,
		)
		if err != nil {
			return fmt.Errorf("writing observation %d: %w", row.Obs, err)
		}
	}

	return bw.Flush()
}

// ReadTable parses a table previously written by WriteTable. It exists for
// verification of written output; numeric precision is whatever the text form
// retains.
func ReadTable(r io.Reader) (*sounding.Table, error) {
	scanner := bufio.NewScanner(r)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("reading header: %w", err)
		}
		return nil, fmt.Errorf("empty table")
	}
	if got := strings.TrimSpace(scanner.Text()); got != textHeader {
		return nil, fmt.Errorf("unexpected header: %q", got)
	}

	var table sounding.Table
	line := 1
	for scanner.Scan() {
		line++
		row, err := parseRow(scanner.Text())
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		table.Rows = append(table.Rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading table: %w", err)
	}

	return &table, nil
}

func parseRow(s string) (sounding.Row, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 13 {
		return sounding.Row{}, fmt.Errorf("expected 13 columns, got %d", len(parts))
	}

	obs, err := strconv.Atoi(parts[0])
	if err != nil {
		return sounding.Row{}, fmt.Errorf("parsing obs: %w", err)
	}

	values := make([]float64, 12)
	for i, p := range parts[1:] {
		// strconv.ParseFloat accepts the literal NaN.
		if values[i], err = strconv.ParseFloat(p, 64); err != nil {
			return sounding.Row{}, fmt.Errorf("parsing column %d: %w", i+1, err)
		}
	}

	return sounding.Row{
		Obs:       obs,
		Lat:       values[0],
		Lon:       values[1],
		Alt:       values[2],
		Time:      values[3],
		AirTemp:   values[4],
		DewPoint:  values[5],
		RelHum:    values[6],
		AirPress:  values[7],
		Gpt:       values[8],
		GptHeight: values[9],
		WindSpeed: values[10],
		WindDir:   values[11],
	}, nil
}

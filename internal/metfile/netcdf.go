package metfile

import (
	"fmt"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/batchatco/go-native-netcdf/netcdf/cdf"
	"github.com/batchatco/go-native-netcdf/netcdf/util"

	"github.com/skysonde/dataflash-met/internal/sounding"
)

// ncVariable pairs a CF-style variable definition with the table column that
// feeds it.
type ncVariable struct {
	name         string
	units        string
	standardName string
	extra        map[string]string
	column       func(sounding.Row) float64
}

var ncVariables = []ncVariable{
	{"latitude", "degrees_north", "latitude", nil,
		func(r sounding.Row) float64 { return r.Lat }},
	{"longitude", "degrees_east", "longitude", nil,
		func(r sounding.Row) float64 { return r.Lon }},
	{"altitude", "meters", "altitude", map[string]string{"positive": "up"},
		func(r sounding.Row) float64 { return r.Alt }},
	{"air_temperature", "degree_Celsius", "air_temperature", nil,
		func(r sounding.Row) float64 { return r.AirTemp }},
	{"dew_point_temperature", "degree_Celsius", "dew_point_temperature", nil,
		func(r sounding.Row) float64 { return r.DewPoint }},
	{"relative_humidity", "percent", "relative_humidity", nil,
		func(r sounding.Row) float64 { return r.RelHum }},
	{"air_pressure", "hPa", "air_pressure", nil,
		func(r sounding.Row) float64 { return r.AirPress }},
}

// WriteNetCDF writes the table as a NetCDF classic dataset with a single time
// dimension, a double-typed time coordinate in seconds since the Unix epoch,
// an observation coordinate, and one data variable per meteorological column.
func WriteNetCDF(path string, t *sounding.Table) (err error) {
	cw, err := cdf.OpenWriter(path)
	if err != nil {
		return fmt.Errorf("creating NetCDF file: %w", err)
	}
	defer func() {
		if cErr := cw.Close(); cErr != nil && err == nil {
			err = fmt.Errorf("closing NetCDF file: %w", cErr)
		}
	}()

	times := make([]float64, t.Len())
	obs := make([]int32, t.Len())
	for i, row := range t.Rows {
		times[i] = row.Time
		obs[i] = int32(row.Obs)
	}

	timeAttrs, err := attributes(map[string]string{
		"units":         "seconds since 1970-01-01 00:00:00",
		"standard_name": "time",
		"long_name":     "Time",
	})
	if err != nil {
		return err
	}
	if err = cw.AddVar("time", api.Variable{
		Values:     times,
		Dimensions: []string{"time"},
		Attributes: timeAttrs,
	}); err != nil {
		return fmt.Errorf("writing time coordinate: %w", err)
	}

	if err = cw.AddVar("observation", api.Variable{
		Values:     obs,
		Dimensions: []string{"time"},
	}); err != nil {
		return fmt.Errorf("writing observation coordinate: %w", err)
	}

	for _, v := range ncVariables {
		values := make([]float64, t.Len())
		for i, row := range t.Rows {
			values[i] = v.column(row)
		}

		attrs := map[string]string{
			"units":         v.units,
			"standard_name": v.standardName,
		}
		for k, val := range v.extra {
			attrs[k] = val
		}

		am, err := attributes(attrs)
		if err != nil {
			return err
		}
		if err = cw.AddVar(v.name, api.Variable{
			Values:     values,
			Dimensions: []string{"time"},
			Attributes: am,
		}); err != nil {
			return fmt.Errorf("writing variable %s: %w", v.name, err)
		}
	}

	return nil
}

func attributes(attrs map[string]string) (api.AttributeMap, error) {
	keys := make([]string, 0, len(attrs))
	values := make(map[string]any, len(attrs))

	// Stable attribute order: units first, then standard_name, then the rest.
	for _, k := range []string{"units", "standard_name", "long_name", "positive"} {
		if v, ok := attrs[k]; ok {
			keys = append(keys, k)
			values[k] = v
		}
	}

	am, err := util.NewOrderedMap(keys, values)
	if err != nil {
		return nil, fmt.Errorf("building attributes: %w", err)
	}
	return am, nil
}

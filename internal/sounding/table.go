package sounding

// Row is a single per-second observation. Rows are created with every numeric
// field NaN and populated field-by-field by the aggregator; once the table is
// assembled they are never mutated.
//
// Gpt, GptHeight, WindSpeed and WindDir are reserved for later processing
// stages and always hold NaN.
type Row struct {
	Obs  int     // 1-based observation index in bucket order
	Lat  float64 // Degrees north
	Lon  float64 // Degrees east
	Alt  float64 // Meters above mean sea level
	Time float64 // Whole-second Unix timestamp (the bucket key)

	AirTemp  float64 // Combined air temperature in degrees Celsius
	DewPoint float64 // Dew point temperature in degrees Celsius
	RelHum   float64 // Relative humidity in percent
	AirPress float64 // Static pressure in hPa

	Gpt       float64
	GptHeight float64
	WindSpeed float64
	WindDir   float64
}

// Table is the assembled observation table: one row per bucket key in
// ascending order, no two rows sharing a key. It is the sole artifact handed
// to the output writers.
type Table struct {
	Rows []Row
}

// Len returns the number of observations.
func (t *Table) Len() int {
	return len(t.Rows)
}

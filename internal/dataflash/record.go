// Package dataflash decodes ArduPilot DataFlash (.bin) flight logs into
// typed, timestamped records. The format is self-describing: FMT records at
// the head of the log define the name, length and field layout of every other
// record type.
package dataflash

// Record is one decoded log message. Fields holds every numeric field by
// column name, already scaled to its engineering unit; string-typed columns
// are not carried because downstream consumers only align numeric channels.
type Record struct {
	Timestamp float64 // Absolute seconds since Unix epoch (see Decoder)
	Type      string  // Message name, e.g. "GPS", "BARO"
	Fields    map[string]float64
}

// Field returns the named numeric field and whether it was present in the
// record. Absent and present-but-NaN are therefore distinguishable.
func (r Record) Field(name string) (float64, bool) {
	v, ok := r.Fields[name]
	return v, ok
}

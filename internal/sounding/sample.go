package sounding

// Channel identifies the sensor category a classified sample belongs to.
// Each channel has its own reduction policy in the aggregator.
type Channel string

const (
	ChannelPosition    Channel = "position"
	ChannelPressure    Channel = "pressure"
	ChannelTemperature Channel = "temperature"
	ChannelHumidity    Channel = "humidity"
	ChannelInertial    Channel = "inertial"
)

// PositionSample is a single positioning fix. All three fields are required
// at classification time; a fix missing any of them is dropped.
type PositionSample struct {
	Timestamp float64 // Seconds since Unix epoch
	Lat       float64 // Latitude in degrees
	Lon       float64 // Longitude in degrees
	Alt       float64 // Altitude in meters above mean sea level
}

// PressureSample is a barometric reading. Temp is nil when the record
// carried no temperature field, which is distinct from a present-but-NaN
// reading.
type PressureSample struct {
	Timestamp float64
	Pressure  float64  // Static pressure in hPa
	Temp      *float64 // Optional sensor temperature in degrees Celsius
}

// TemperatureSample holds up to three sub-channel readings from a dedicated
// temperature sensor. Missing sub-readings are NaN. Only the primary
// sub-channel feeds the combined temperature pool.
type TemperatureSample struct {
	Timestamp float64
	Temps     [3]float64 // Degrees Celsius, NaN where the sub-sensor is absent
}

// HumiditySample is a relative humidity reading with its accompanying
// temperature. Multi-sensor records are pre-averaged into a single pair
// before leaving the classifier.
type HumiditySample struct {
	Timestamp float64
	Humidity  float64 // Relative humidity in percent
	Temp      float64 // Degrees Celsius, NaN when the sensor reported none
}

// InertialSample is the temperature reading of an inertial measurement unit.
type InertialSample struct {
	Timestamp float64
	Temp      float64 // Degrees Celsius
}

// Channels holds all classified samples of one decoded session, grouped by
// channel in original decode order. The zero value is ready to use.
type Channels struct {
	Position    []PositionSample
	Pressure    []PressureSample
	Temperature []TemperatureSample
	Humidity    []HumiditySample
	Inertial    []InertialSample
}

// Total returns the number of classified samples across all channels.
func (c *Channels) Total() int {
	return len(c.Position) + len(c.Pressure) + len(c.Temperature) + len(c.Humidity) + len(c.Inertial)
}

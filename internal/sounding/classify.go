package sounding

import (
	"math"

	"github.com/skysonde/dataflash-met/internal/dataflash"
)

const (
	// DefaultKelvinThreshold is the value above which a temperature field is
	// assumed to be in Kelvin and converted to Celsius. Atmospheric readings
	// never exceed 200 in either unit within a flight envelope, which makes
	// the threshold safe for both.
	DefaultKelvinThreshold = 200.0

	kelvinOffset = 273.15
)

// WithKelvinThreshold overrides the Kelvin-detection threshold applied to
// temperature fields accompanying pressure records.
func WithKelvinThreshold(threshold float64) func(*Classifier) {
	return func(c *Classifier) {
		c.kelvinThreshold = threshold
	}
}

// Classifier routes decoded records into typed sample channels. It is a pure
// function from record to zero-or-one sample; records of unrecognized type or
// with incomplete fields are dropped.
//
// The classifier requires record timestamps to be the decoder's absolute
// per-record Unix time. It performs no time reconstruction of its own.
type Classifier struct {
	kelvinThreshold float64
}

// NewClassifier creates a Classifier with default settings.
func NewClassifier(options ...func(*Classifier)) *Classifier {
	c := Classifier{
		kelvinThreshold: DefaultKelvinThreshold,
	}
	for _, option := range options {
		option(&c)
	}
	return &c
}

// Classify routes a single decoded record into ch and returns the channel
// that accepted it, or the empty string when the record was dropped.
func (c *Classifier) Classify(rec dataflash.Record, ch *Channels) Channel {
	switch rec.Type {
	case "GPS":
		if c.classifyPosition(rec, ch) {
			return ChannelPosition
		}
	case "BARO", "SCALED_PRESSURE":
		if c.classifyPressure(rec, ch) {
			return ChannelPressure
		}
	case "TEMP", "TEMPERATURE":
		if c.classifyTemperature(rec, ch) {
			return ChannelTemperature
		}
	case "WXTP":
		if c.classifyWeatherTemperature(rec, ch) {
			return ChannelTemperature
		}
	case "HUM":
		if c.classifyHumidity(rec, ch) {
			return ChannelHumidity
		}
	case "WXRH":
		if c.classifyWeatherHumidity(rec, ch) {
			return ChannelHumidity
		}
	case "IMU":
		if c.classifyInertial(rec, ch) {
			return ChannelInertial
		}
	}
	return ""
}

func (c *Classifier) classifyPosition(rec dataflash.Record, ch *Channels) bool {
	lat, latOK := rec.Field("Lat")
	lon, lonOK := rec.Field("Lng")
	alt, altOK := rec.Field("Alt")
	if !latOK || !lonOK || !altOK {
		return false
	}

	ch.Position = append(ch.Position, PositionSample{
		Timestamp: rec.Timestamp,
		Lat:       lat,
		Lon:       lon,
		Alt:       alt,
	})
	return true
}

func (c *Classifier) classifyPressure(rec dataflash.Record, ch *Channels) bool {
	press, ok := rec.Field("Press")
	if !ok {
		if press, ok = rec.Field("press_abs"); !ok {
			return false
		}
	}

	sample := PressureSample{
		Timestamp: rec.Timestamp,
		Pressure:  press,
	}

	temp, ok := rec.Field("Temp")
	if !ok {
		temp, ok = rec.Field("temperature")
	}
	if ok {
		if temp > c.kelvinThreshold {
			temp -= kelvinOffset
		}
		sample.Temp = &temp
	}

	ch.Pressure = append(ch.Pressure, sample)
	return true
}

func (c *Classifier) classifyTemperature(rec dataflash.Record, ch *Channels) bool {
	primary, ok := rec.Field("Temp1")
	if !ok {
		return false
	}

	sample := TemperatureSample{
		Timestamp: rec.Timestamp,
		Temps:     [3]float64{primary, fieldOrNaN(rec, "Temp2"), fieldOrNaN(rec, "Temp3")},
	}
	ch.Temperature = append(ch.Temperature, sample)
	return true
}

// classifyWeatherTemperature handles the dedicated weather payload sensor,
// which reports up to three sub-channels in Kelvin.
func (c *Classifier) classifyWeatherTemperature(rec dataflash.Record, ch *Channels) bool {
	sample := TemperatureSample{
		Timestamp: rec.Timestamp,
		Temps: [3]float64{
			fieldOrNaN(rec, "t0") - kelvinOffset,
			fieldOrNaN(rec, "t1") - kelvinOffset,
			fieldOrNaN(rec, "t2") - kelvinOffset,
		},
	}
	ch.Temperature = append(ch.Temperature, sample)
	return true
}

func (c *Classifier) classifyHumidity(rec dataflash.Record, ch *Channels) bool {
	hum, ok := rec.Field("Humidity")
	if !ok {
		return false
	}

	ch.Humidity = append(ch.Humidity, HumiditySample{
		Timestamp: rec.Timestamp,
		Humidity:  hum,
		Temp:      fieldOrNaN(rec, "Temp"),
	})
	return true
}

// classifyWeatherHumidity handles multi-sensor relative humidity records.
// Sub-sensor readings are pre-averaged into one humidity and one temperature
// value before entering the channel; temperatures arrive in Kelvin.
func (c *Classifier) classifyWeatherHumidity(rec dataflash.Record, ch *Channels) bool {
	rh := nanMean([]float64{
		fieldOrNaN(rec, "rh0"),
		fieldOrNaN(rec, "rh1"),
		fieldOrNaN(rec, "rh2"),
	})
	if math.IsNaN(rh) {
		return false
	}

	temp := nanMean([]float64{
		fieldOrNaN(rec, "t0") - kelvinOffset,
		fieldOrNaN(rec, "t1") - kelvinOffset,
		fieldOrNaN(rec, "t2") - kelvinOffset,
	})

	ch.Humidity = append(ch.Humidity, HumiditySample{
		Timestamp: rec.Timestamp,
		Humidity:  rh,
		Temp:      temp,
	})
	return true
}

func (c *Classifier) classifyInertial(rec dataflash.Record, ch *Channels) bool {
	temp, ok := rec.Field("Temp")
	if !ok {
		return false
	}

	ch.Inertial = append(ch.Inertial, InertialSample{
		Timestamp: rec.Timestamp,
		Temp:      temp,
	})
	return true
}

func fieldOrNaN(rec dataflash.Record, name string) float64 {
	if v, ok := rec.Field(name); ok {
		return v
	}
	return math.NaN()
}

package sounding

import (
	"math"
	"testing"

	"github.com/skysonde/dataflash-met/internal/dataflash"
)

func record(typ string, fields map[string]float64) dataflash.Record {
	return dataflash.Record{Timestamp: 100.5, Type: typ, Fields: fields}
}

func TestClassifier_Position(t *testing.T) {
	c := NewClassifier()

	var ch Channels
	got := c.Classify(record("GPS", map[string]float64{
		"Lat": -33.86, "Lng": 151.21, "Alt": 120,
	}), &ch)
	if got != ChannelPosition || len(ch.Position) != 1 {
		t.Fatalf("GPS record not classified as position")
	}

	s := ch.Position[0]
	if s.Lat != -33.86 || s.Lon != 151.21 || s.Alt != 120 {
		t.Errorf("position sample = %+v", s)
	}

	// Missing altitude means the fix is incomplete and must be dropped.
	got = c.Classify(record("GPS", map[string]float64{"Lat": -33.86, "Lng": 151.21}), &ch)
	if got != "" || len(ch.Position) != 1 {
		t.Errorf("incomplete GPS record was not dropped")
	}
}

func TestClassifier_PressureKelvinConversion(t *testing.T) {
	c := NewClassifier()

	var ch Channels
	// Temperature above the threshold is Kelvin and converts to Celsius.
	c.Classify(record("BARO", map[string]float64{"Press": 1013.25, "Temp": 295.15}), &ch)
	// Below the threshold it is already Celsius and stays put.
	c.Classify(record("BARO", map[string]float64{"Press": 1010.0, "Temp": 21.5}), &ch)
	// No temperature field at all: absent, not NaN.
	c.Classify(record("SCALED_PRESSURE", map[string]float64{"press_abs": 1008.0}), &ch)

	if len(ch.Pressure) != 3 {
		t.Fatalf("pressure samples = %d, want 3", len(ch.Pressure))
	}

	if got := *ch.Pressure[0].Temp; math.Abs(got-22.0) > 1e-9 {
		t.Errorf("Kelvin temperature converted to %v, want 22", got)
	}
	if got := *ch.Pressure[1].Temp; got != 21.5 {
		t.Errorf("Celsius temperature changed to %v, want 21.5", got)
	}
	if ch.Pressure[2].Temp != nil {
		t.Errorf("missing temperature field produced %v, want nil", *ch.Pressure[2].Temp)
	}
}

func TestClassifier_TemperatureSubChannels(t *testing.T) {
	c := NewClassifier()

	var ch Channels
	c.Classify(record("TEMP", map[string]float64{"Temp1": 20.5}), &ch)

	if len(ch.Temperature) != 1 {
		t.Fatalf("temperature samples = %d, want 1", len(ch.Temperature))
	}

	s := ch.Temperature[0]
	if s.Temps[0] != 20.5 {
		t.Errorf("primary reading = %v, want 20.5", s.Temps[0])
	}
	// Missing sub-readings are NaN, not an error.
	if !math.IsNaN(s.Temps[1]) || !math.IsNaN(s.Temps[2]) {
		t.Errorf("missing sub-readings = (%v, %v), want NaN", s.Temps[1], s.Temps[2])
	}
}

func TestClassifier_WeatherTemperatureKelvin(t *testing.T) {
	c := NewClassifier()

	var ch Channels
	c.Classify(record("WXTP", map[string]float64{"t0": 293.15, "t1": 294.15}), &ch)

	s := ch.Temperature[0]
	if math.Abs(s.Temps[0]-20.0) > 1e-9 || math.Abs(s.Temps[1]-21.0) > 1e-9 {
		t.Errorf("converted readings = (%v, %v), want (20, 21)", s.Temps[0], s.Temps[1])
	}
	if !math.IsNaN(s.Temps[2]) {
		t.Errorf("missing t2 = %v, want NaN", s.Temps[2])
	}
}

func TestClassifier_WeatherHumidityPreAveraged(t *testing.T) {
	c := NewClassifier()

	var ch Channels
	// One of three humidity sub-sensors is missing; the present pair is
	// averaged and the temperatures likewise (after Kelvin conversion).
	c.Classify(record("WXRH", map[string]float64{
		"rh0": 58, "rh1": 62,
		"t0": 294.15, "t1": 296.15,
	}), &ch)

	if len(ch.Humidity) != 1 {
		t.Fatalf("humidity samples = %d, want 1", len(ch.Humidity))
	}

	s := ch.Humidity[0]
	if s.Humidity != 60 {
		t.Errorf("pre-averaged humidity = %v, want 60", s.Humidity)
	}
	if math.Abs(s.Temp-22.0) > 1e-9 {
		t.Errorf("pre-averaged temperature = %v, want 22", s.Temp)
	}
}

func TestClassifier_Inertial(t *testing.T) {
	c := NewClassifier()

	var ch Channels
	if got := c.Classify(record("IMU", map[string]float64{"Temp": 31.5, "GyrX": 0.01}), &ch); got != ChannelInertial {
		t.Fatalf("IMU record with temperature not classified")
	}
	if got := c.Classify(record("IMU", map[string]float64{"GyrX": 0.01}), &ch); got != "" {
		t.Errorf("IMU record without temperature was classified")
	}

	if len(ch.Inertial) != 1 || ch.Inertial[0].Temp != 31.5 {
		t.Errorf("inertial samples = %+v", ch.Inertial)
	}
}

func TestClassifier_DropsUnknownTypes(t *testing.T) {
	c := NewClassifier()

	var ch Channels
	if got := c.Classify(record("MODE", map[string]float64{"Mode": 3}), &ch); got != "" {
		t.Errorf("unknown record type was classified")
	}
	if ch.Total() != 0 {
		t.Errorf("channels total = %d, want 0", ch.Total())
	}
}

package sounding

import "math"

// Magnus approximation coefficients (Sonntag 1990).
const (
	magnusA = 17.62
	magnusB = 243.12 // degrees Celsius

	minRelHum = 0.1
	maxRelHum = 100.0
)

// DewPoint computes the dew point temperature in degrees Celsius from air
// temperature (Celsius) and relative humidity (percent) using the Magnus
// approximation. Relative humidity is clamped to [0.1, 100] before taking the
// logarithm so that non-positive inputs stay finite; no clamp is applied to
// the temperature. A NaN in either input yields NaN.
func DewPoint(tempC, relHum float64) float64 {
	rh := math.Min(math.Max(relHum, minRelHum), maxRelHum)
	alpha := (magnusA*tempC)/(magnusB+tempC) + math.Log(rh/maxRelHum)
	return (magnusB * alpha) / (magnusA - alpha)
}

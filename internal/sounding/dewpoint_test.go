package sounding

import (
	"math"
	"testing"
)

func TestDewPoint_Reference(t *testing.T) {
	// 20°C at 50% relative humidity is a standard reference point.
	got := DewPoint(20.0, 50.0)
	if math.Abs(got-9.27) > 0.05 {
		t.Errorf("DewPoint(20, 50) = %.4f, want ≈ 9.27", got)
	}
}

func TestDewPoint_Saturation(t *testing.T) {
	// At 100% relative humidity the dew point equals the air temperature.
	for _, tc := range []float64{-40, -10, 0, 15.5, 20, 35} {
		got := DewPoint(tc, 100.0)
		if math.Abs(got-tc) > 1e-9 {
			t.Errorf("DewPoint(%.1f, 100) = %v, want %v", tc, got, tc)
		}
	}
}

func TestDewPoint_ClampsHumidity(t *testing.T) {
	// Non-positive humidity is clamped to 0.1% instead of producing -Inf.
	for _, rh := range []float64{0, -5} {
		got := DewPoint(20.0, rh)
		if math.IsInf(got, 0) || math.IsNaN(got) {
			t.Errorf("DewPoint(20, %.1f) = %v, want a finite value", rh, got)
		}
	}

	if got, want := DewPoint(20.0, 150.0), DewPoint(20.0, 100.0); got != want {
		t.Errorf("DewPoint(20, 150) = %v, want clamped value %v", got, want)
	}
}

func TestDewPoint_NaNPropagation(t *testing.T) {
	nan := math.NaN()
	if got := DewPoint(nan, 50.0); !math.IsNaN(got) {
		t.Errorf("DewPoint(NaN, 50) = %v, want NaN", got)
	}
	if got := DewPoint(20.0, nan); !math.IsNaN(got) {
		t.Errorf("DewPoint(20, NaN) = %v, want NaN", got)
	}
}

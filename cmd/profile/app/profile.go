package app

import (
	"math"

	"github.com/skysonde/dataflash-met/internal/sounding"
)

// ProfilePoint is one observation reduced to what the quick-look needs.
type ProfilePoint struct {
	Alt      float64
	AirTemp  float64
	DewPoint float64
}

// ProfileData accumulates the vertical profile of a stored sounding along
// with the bounds used to scale the axes.
type ProfileData struct {
	Points []ProfilePoint

	AltMin, AltMax   float64
	TempMin, TempMax float64

	TimeStart, TimeEnd float64
}

func NewProfileData() *ProfileData {
	return &ProfileData{
		AltMin:  math.MaxFloat64,
		AltMax:  -math.MaxFloat64,
		TempMin: math.MaxFloat64,
		TempMax: -math.MaxFloat64,
	}
}

// Update folds one observation into the profile. Rows without an altitude
// cannot be placed on the vertical axis and are dropped; NaN temperatures are
// kept so that line segments break visibly where data is missing.
func (p *ProfileData) Update(row sounding.Row) {
	if math.IsNaN(row.Alt) {
		return
	}

	p.Points = append(p.Points, ProfilePoint{
		Alt:      row.Alt,
		AirTemp:  row.AirTemp,
		DewPoint: row.DewPoint,
	})

	p.AltMin = math.Min(p.AltMin, row.Alt)
	p.AltMax = math.Max(p.AltMax, row.Alt)

	for _, t := range []float64{row.AirTemp, row.DewPoint} {
		if math.IsNaN(t) {
			continue
		}
		p.TempMin = math.Min(p.TempMin, t)
		p.TempMax = math.Max(p.TempMax, t)
	}

	if p.TimeStart == 0 || row.Time < p.TimeStart {
		p.TimeStart = row.Time
	}
	if row.Time > p.TimeEnd {
		p.TimeEnd = row.Time
	}
}

// HasTemperature reports whether any point carries a plottable temperature.
func (p *ProfileData) HasTemperature() bool {
	return p.TempMax >= p.TempMin
}

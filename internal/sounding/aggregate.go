package sounding

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"
)

// ErrNoPositionData indicates that a decoded session contains no position
// fixes at all. Without them there is no master index and no table can be
// produced.
var ErrNoPositionData = errors.New("no position samples in session")

// Option configures the aggregation pipeline.
type Option func(*aggregator)

// WithPositionBoundsCheck rejects position fixes with latitude outside
// [-90, 90] or longitude outside [-180, 180]; the affected row keeps NaN
// position fields. Off by default: fixes are taken verbatim.
func WithPositionBoundsCheck() Option {
	return func(a *aggregator) {
		a.boundsCheck = true
	}
}

// WithSmoothingWindow overrides the width of the temperature moving average.
// The width must be odd; even values are widened by one.
func WithSmoothingWindow(window int) Option {
	return func(a *aggregator) {
		if window > 0 && window%2 == 0 {
			window++
		}
		a.smoothingWindow = window
	}
}

type aggregator struct {
	boundsCheck     bool
	smoothingWindow int
}

// BuildTable reduces classified channels into the per-second observation
// table. The master index is derived from the position channel alone; every
// other channel is aligned to it by whole-second bucket. Buckets with no
// qualifying samples for a field receive NaN, which then propagates through
// smoothing and the dew point computation.
//
// The combined temperature column pools samples from the temperature,
// inertial, pressure and humidity channels with equal weight, is smoothed,
// and only then feeds the dew point together with the unsmoothed humidity.
func BuildTable(ch *Channels, opts ...Option) (*Table, error) {
	a := aggregator{
		smoothingWindow: DefaultSmoothingWindow,
	}
	for _, opt := range opts {
		opt(&a)
	}
	return a.build(ch)
}

func (a *aggregator) build(ch *Channels) (*Table, error) {
	index := masterIndex(ch.Position)
	if len(index) == 0 {
		return nil, ErrNoPositionData
	}

	rows := make([]Row, len(index))
	for i, key := range index {
		rows[i] = emptyRow(i+1, key)
	}

	rank := make(map[BucketKey]int, len(index))
	for i, key := range index {
		rank[key] = i
	}

	a.aggregatePosition(ch.Position, rank, rows)
	aggregatePressure(ch.Pressure, rank, rows)
	aggregateHumidity(ch.Humidity, rank, rows)
	a.aggregateTemperature(ch, rank, rows)

	for i := range rows {
		rows[i].DewPoint = DewPoint(rows[i].AirTemp, rows[i].RelHum)
	}

	return &Table{Rows: rows}, nil
}

func emptyRow(obs int, key BucketKey) Row {
	nan := math.NaN()
	return Row{
		Obs:       obs,
		Lat:       nan,
		Lon:       nan,
		Alt:       nan,
		Time:      float64(key),
		AirTemp:   nan,
		DewPoint:  nan,
		RelHum:    nan,
		AirPress:  nan,
		Gpt:       nan,
		GptHeight: nan,
		WindSpeed: nan,
		WindDir:   nan,
	}
}

// aggregatePosition applies the first-wins policy: the earliest fix in decode
// order supplies the row's position verbatim.
func (a *aggregator) aggregatePosition(positions []PositionSample, rank map[BucketKey]int, rows []Row) {
	filled := make(map[BucketKey]struct{}, len(rows))
	for _, s := range positions {
		key := bucketOf(s.Timestamp)
		if _, ok := filled[key]; ok {
			continue
		}
		filled[key] = struct{}{}

		if a.boundsCheck && (s.Lat < -90 || s.Lat > 90 || s.Lon < -180 || s.Lon > 180) {
			continue
		}

		i := rank[key]
		rows[i].Lat = s.Lat
		rows[i].Lon = s.Lon
		rows[i].Alt = s.Alt
	}
}

func aggregatePressure(pressures []PressureSample, rank map[BucketKey]int, rows []Row) {
	pooled := make(map[BucketKey][]float64)
	for _, s := range pressures {
		key := bucketOf(s.Timestamp)
		if _, ok := rank[key]; !ok {
			continue
		}
		pooled[key] = append(pooled[key], s.Pressure)
	}
	for key, values := range pooled {
		rows[rank[key]].AirPress = nanMean(values)
	}
}

func aggregateHumidity(humidities []HumiditySample, rank map[BucketKey]int, rows []Row) {
	pooled := make(map[BucketKey][]float64)
	for _, s := range humidities {
		key := bucketOf(s.Timestamp)
		if _, ok := rank[key]; !ok {
			continue
		}
		pooled[key] = append(pooled[key], s.Humidity)
	}
	for key, values := range pooled {
		rows[rank[key]].RelHum = nanMean(values)
	}
}

// aggregateTemperature pools every temperature-bearing sample into one
// equally-weighted per-bucket mean, then smooths the resulting column.
// Channel naming does not imply priority: a dedicated sensor reading and a
// barometer's temperature sub-field count the same.
func (a *aggregator) aggregateTemperature(ch *Channels, rank map[BucketKey]int, rows []Row) {
	pooled := make(map[BucketKey][]float64)
	add := func(timestamp, value float64) {
		key := bucketOf(timestamp)
		if _, ok := rank[key]; !ok {
			return
		}
		pooled[key] = append(pooled[key], value)
	}

	for _, s := range ch.Temperature {
		add(s.Timestamp, s.Temps[0])
	}
	for _, s := range ch.Inertial {
		add(s.Timestamp, s.Temp)
	}
	for _, s := range ch.Pressure {
		if s.Temp != nil {
			add(s.Timestamp, *s.Temp)
		}
	}
	for _, s := range ch.Humidity {
		add(s.Timestamp, s.Temp)
	}

	if len(pooled) == 0 {
		return
	}

	temps := make([]float64, len(rows))
	for i := range rows {
		temps[i] = math.NaN()
	}
	for key, values := range pooled {
		temps[rank[key]] = nanMean(values)
	}

	temps = movingAverage(temps, a.smoothingWindow)
	for i := range rows {
		rows[i].AirTemp = temps[i]
	}
}

// nanMean is the arithmetic mean of the non-NaN values; it returns NaN when
// none remain.
func nanMean(values []float64) float64 {
	kept := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		return math.NaN()
	}
	return stat.Mean(kept, nil)
}

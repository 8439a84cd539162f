package sounding

// DefaultSmoothingWindow is the width of the centered moving average applied
// to the combined temperature column.
const DefaultSmoothingWindow = 9

// movingAverage applies a centered moving average of the given window width
// with nearest-edge replication: indices beyond either boundary repeat the
// boundary value instead of shrinking the window.
//
// NaN values are ordinary numeric inputs, so every window that contains one
// averages to NaN. This intentionally differs from the aggregator's
// NaN-ignoring mean: a gap in the aggregated series contaminates its whole
// smoothing neighborhood rather than being silently interpolated over.
//
// Series no longer than the window pass through unchanged.
func movingAverage(values []float64, window int) []float64 {
	n := len(values)
	if window < 2 || n <= window {
		return values
	}

	half := window / 2
	width := float64(2*half + 1)
	out := make([]float64, n)
	for i := range values {
		var sum float64
		for k := -half; k <= half; k++ {
			idx := i + k
			if idx < 0 {
				idx = 0
			} else if idx >= n {
				idx = n - 1
			}
			sum += values[idx]
		}
		out[i] = sum / width
	}
	return out
}

package calculator

import (
	"errors"
	"math"
)

// SMA computes the simple moving average column over the given window.
// The first window-1 entries are NaN.
func SMA(values []float64, window int) []float64 {
	out := nanColumn(len(values))
	if window <= 0 {
		return out
	}
	for i := window - 1; i < len(values); i++ {
		sum := 0.0
		for _, v := range values[i-window+1 : i+1] {
			sum += v
		}
		out[i] = sum / float64(window)
	}
	return out
}

// EMA computes the exponential moving average with smoothing factor
// 2/(span+1), seeded by the first value. Every entry is defined.
func EMA(values []float64, span int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	if span <= 0 {
		copy(out, values)
		return out
	}
	alpha := 2.0 / (float64(span) + 1.0)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// Latest returns the last entry of a column, or an error when it is
// missing or not yet defined.
func Latest(column []float64) (float64, error) {
	if len(column) == 0 {
		return 0, errors.New("empty indicator column")
	}
	v := column[len(column)-1]
	if math.IsNaN(v) {
		return 0, errors.New("not enough data for indicator")
	}
	return v, nil
}

func nanColumn(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

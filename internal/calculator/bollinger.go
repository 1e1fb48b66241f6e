package calculator

import "math"

// RollingStd computes the sample standard deviation (n-1) over the trailing
// window. The first window-1 entries are NaN.
func RollingStd(values []float64, window int) []float64 {
	out := nanColumn(len(values))
	if window < 2 {
		return out
	}
	mean := SMA(values, window)
	for i := window - 1; i < len(values); i++ {
		ss := 0.0
		for _, v := range values[i-window+1 : i+1] {
			d := v - mean[i]
			ss += d * d
		}
		out[i] = math.Sqrt(ss / float64(window-1))
	}
	return out
}

// Bollinger returns the mid, upper and lower bands: mid is SMA(window) and the
// bands sit k standard deviations either side.
func Bollinger(closes []float64, window int, k float64) (mid, upper, lower []float64) {
	mid = SMA(closes, window)
	std := RollingStd(closes, window)
	upper = nanColumn(len(closes))
	lower = nanColumn(len(closes))
	for i := range closes {
		if math.IsNaN(mid[i]) || math.IsNaN(std[i]) {
			continue
		}
		upper[i] = mid[i] + k*std[i]
		lower[i] = mid[i] - k*std[i]
	}
	return mid, upper, lower
}

package calculator

import "math"

// rsiEpsilon keeps the relative strength finite when the window has no losses.
const rsiEpsilon = 1e-9

// RSI computes the relative strength index column. Average gain and loss are
// plain means of the positive and negative close deltas over the trailing
// window, and RSI = 100 - 100/(1 + gain/(loss+eps)). Index 0 has no delta, so
// the first window entries are NaN. Values are always within [0, 100].
func RSI(closes []float64, window int) []float64 {
	out := nanColumn(len(closes))
	if window <= 0 || len(closes) < 2 {
		return out
	}

	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains[i] = change
		} else {
			losses[i] = -change
		}
	}

	avgGain := SMA(gains[1:], window)
	avgLoss := SMA(losses[1:], window)
	for i := range avgGain {
		if math.IsNaN(avgGain[i]) {
			continue
		}
		rs := avgGain[i] / (avgLoss[i] + rsiEpsilon)
		out[i+1] = 100.0 - 100.0/(1.0+rs)
	}
	return out
}

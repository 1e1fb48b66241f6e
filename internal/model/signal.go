package model

import "time"

// Strength is the qualitative conviction of a signal.
type Strength string

const (
	StrengthWeak     Strength = "Weak"
	StrengthModerate Strength = "Moderate"
	StrengthStrong   Strength = "Strong"
	// StrengthWait is only produced when there is not enough history to score.
	StrengthWait Strength = "Wait"
)

// Factor names a scoring factor in the breakdown.
type Factor string

const (
	FactorTrend    Factor = "trend"
	FactorRSI      Factor = "rsi"
	FactorMACD     Factor = "macd"
	FactorVolume   Factor = "volume"
	FactorIV       Factor = "iv"
	FactorEarnings Factor = "earningsDesc"
)

// Factors lists every breakdown factor in display order.
var Factors = []Factor{FactorTrend, FactorRSI, FactorMACD, FactorVolume, FactorIV, FactorEarnings}

// ScoreBreakdown maps a factor to a label carrying the regime and the applied delta.
type ScoreBreakdown map[Factor]string

// SignalResult is the output of the scoring engine. Treat it as immutable.
type SignalResult struct {
	CallScore int
	PutScore  int
	Strength  Strength
	Breakdown ScoreBreakdown
}

// WaitSignal is the neutral result for series too short to score.
func WaitSignal() SignalResult {
	return SignalResult{Strength: StrengthWait, Breakdown: ScoreBreakdown{}}
}

// Clone returns a copy that shares no map with r.
func (r SignalResult) Clone() SignalResult {
	out := r
	out.Breakdown = make(ScoreBreakdown, len(r.Breakdown))
	for k, v := range r.Breakdown {
		out.Breakdown[k] = v
	}
	return out
}

// SignalLogEntry is one row of the append-only signal history.
type SignalLogEntry struct {
	Timestamp time.Time
	Symbol    string
	CallScore int
	PutScore  int
	Strength  Strength
}

package model

// MockExpiry marks a synthetic options chain.
const MockExpiry = "MOCK"

// OptionContract is one strike on one side of the chain.
type OptionContract struct {
	Strike            float64 `json:"strike"`
	LastPrice         float64 `json:"lastPrice"`
	Volume            float64 `json:"volume"`
	OpenInterest      float64 `json:"openInterest"`
	ImpliedVolatility float64 `json:"impliedVolatility"`
}

// OptionsChain holds the nearest-expiry calls and puts for a symbol.
type OptionsChain struct {
	Calls  []OptionContract
	Puts   []OptionContract
	Expiry string // YYYY-MM-DD, or MockExpiry
}

// Empty reports whether the chain carries no contracts at all.
func (c *OptionsChain) Empty() bool {
	return c == nil || (len(c.Calls) == 0 && len(c.Puts) == 0)
}

// TotalVolume sums the traded volume of the given side.
func TotalVolume(contracts []OptionContract) float64 {
	sum := 0.0
	for _, c := range contracts {
		sum += c.Volume
	}
	return sum
}

// MeanIV averages implied volatility over contracts that report one.
// ok is false when no contract has a positive IV.
func MeanIV(contracts []OptionContract) (mean float64, ok bool) {
	var sum float64
	var n int
	for _, c := range contracts {
		if c.ImpliedVolatility > 0 {
			sum += c.ImpliedVolatility
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

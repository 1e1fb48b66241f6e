package strategy

import "fmt"

// Policy holds every tunable threshold of the scoring engine.
type Policy struct {
	BaseScore int `yaml:"base_score"`

	TrendDeadband float64 `yaml:"trend_deadband"` // fraction of SMA, e.g. 0.005
	TrendPoints   int     `yaml:"trend_points"`

	RSIOversold   float64 `yaml:"rsi_oversold"`
	RSIOverbought float64 `yaml:"rsi_overbought"`
	RSIPoints     int     `yaml:"rsi_points"`

	MACDPoints int `yaml:"macd_points"`

	FlowCallHeavyPct float64 `yaml:"flow_call_heavy_pct"`
	FlowPutHeavyPct  float64 `yaml:"flow_put_heavy_pct"`
	FlowPoints       int     `yaml:"flow_points"`

	IVLow   float64 `yaml:"iv_low"`
	IVHigh  float64 `yaml:"iv_high"`
	IVNudge int     `yaml:"iv_nudge"` // symmetric, 0 keeps IV informational

	EarningsCutoffDays int `yaml:"earnings_cutoff_days"`
	EarningsPenalty    int `yaml:"earnings_penalty"`

	StrongScore   int `yaml:"strong_score"`
	ModerateScore int `yaml:"moderate_score"`
}

// DefaultPolicy is the threshold set used unless configured otherwise.
var DefaultPolicy = Policy{
	BaseScore:          35,
	TrendDeadband:      0.005,
	TrendPoints:        15,
	RSIOversold:        38,
	RSIOverbought:      62,
	RSIPoints:          20,
	MACDPoints:         15,
	FlowCallHeavyPct:   55,
	FlowPutHeavyPct:    45,
	FlowPoints:         15,
	IVLow:              0.25,
	IVHigh:             0.55,
	IVNudge:            0,
	EarningsCutoffDays: 7,
	EarningsPenalty:    20,
	StrongScore:        80,
	ModerateScore:      65,
}

// MaxRawScore is the highest one-sided score before clamping.
func (p Policy) MaxRawScore() int {
	return p.BaseScore + p.TrendPoints + p.RSIPoints + p.MACDPoints + p.FlowPoints + p.IVNudge
}

// Validate checks that the thresholds are ordered consistently and that no
// score can exceed 100 before the earnings penalty applies.
func (p Policy) Validate() error {
	switch {
	case p.BaseScore < 0 || p.BaseScore > 100:
		return fmt.Errorf("policy.base_score must be within [0,100], got %d", p.BaseScore)
	case p.TrendDeadband < 0:
		return fmt.Errorf("policy.trend_deadband must not be negative")
	case p.RSIOversold >= p.RSIOverbought:
		return fmt.Errorf("policy.rsi_oversold (%.1f) must be below rsi_overbought (%.1f)", p.RSIOversold, p.RSIOverbought)
	case p.FlowPutHeavyPct >= p.FlowCallHeavyPct:
		return fmt.Errorf("policy.flow_put_heavy_pct (%.1f) must be below flow_call_heavy_pct (%.1f)", p.FlowPutHeavyPct, p.FlowCallHeavyPct)
	case p.IVLow >= p.IVHigh:
		return fmt.Errorf("policy.iv_low must be below iv_high")
	case p.IVNudge < 0:
		return fmt.Errorf("policy.iv_nudge must not be negative")
	case p.TrendPoints < 0 || p.RSIPoints < 0 || p.MACDPoints < 0 || p.FlowPoints < 0:
		return fmt.Errorf("policy factor points must not be negative")
	case p.MaxRawScore() > 100:
		return fmt.Errorf("policy base_score plus factor points and iv_nudge must not exceed 100, got %d", p.MaxRawScore())
	case p.EarningsPenalty < 0:
		return fmt.Errorf("policy.earnings_penalty must not be negative")
	case p.ModerateScore >= p.StrongScore:
		return fmt.Errorf("policy.moderate_score must be below strong_score")
	}
	return nil
}

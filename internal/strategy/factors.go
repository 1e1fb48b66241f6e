package strategy

import (
	"fmt"

	"OptionsSentinel/internal/model"
)

// factorScore is the contribution of one factor to both sides.
type factorScore struct {
	Factor model.Factor
	Call   int
	Put    int
	Label  string
}

// scoreTrend compares the latest close to SMA50 with a deadband either side.
func scoreTrend(close, sma float64, p Policy) factorScore {
	f := factorScore{Factor: model.FactorTrend}
	switch {
	case !model.Defined(sma):
		f.Label = "Warming Up"
	case close > sma*(1+p.TrendDeadband):
		f.Call = p.TrendPoints
		f.Label = fmt.Sprintf("Above MA50 (+%dc)", p.TrendPoints)
	case close < sma*(1-p.TrendDeadband):
		f.Put = p.TrendPoints
		f.Label = fmt.Sprintf("Below MA50 (+%dp)", p.TrendPoints)
	default:
		f.Label = "Near MA50"
	}
	return f
}

// scoreRSI rewards calls when oversold and puts when overbought.
func scoreRSI(rsi float64, p Policy) factorScore {
	f := factorScore{Factor: model.FactorRSI}
	switch {
	case !model.Defined(rsi):
		f.Label = "Warming Up"
	case rsi < p.RSIOversold:
		f.Call = p.RSIPoints
		f.Label = fmt.Sprintf("%d Oversold (+%dc)", int(rsi), p.RSIPoints)
	case rsi > p.RSIOverbought:
		f.Put = p.RSIPoints
		f.Label = fmt.Sprintf("%d Overbought (+%dp)", int(rsi), p.RSIPoints)
	default:
		f.Label = fmt.Sprintf("%d Neutral", int(rsi))
	}
	return f
}

// scoreMACD always assigns one side once both lines exist.
func scoreMACD(macd, signal float64, p Policy) factorScore {
	f := factorScore{Factor: model.FactorMACD}
	switch {
	case !model.Defined(macd) || !model.Defined(signal):
		f.Label = "Warming Up"
	case macd > signal:
		f.Call = p.MACDPoints
		f.Label = fmt.Sprintf("Bullish Cross (+%dc)", p.MACDPoints)
	default:
		f.Put = p.MACDPoints
		f.Label = fmt.Sprintf("Bearish Cross (+%dp)", p.MACDPoints)
	}
	return f
}

// scoreFlow measures the call share of total option volume.
func scoreFlow(chain *model.OptionsChain, p Policy) factorScore {
	f := factorScore{Factor: model.FactorVolume, Label: "No Flow"}
	if chain == nil {
		return f
	}
	callVol := model.TotalVolume(chain.Calls)
	putVol := model.TotalVolume(chain.Puts)
	if callVol+putVol <= 0 {
		return f
	}

	callPct := callVol / (callVol + putVol) * 100
	switch {
	case callPct > p.FlowCallHeavyPct:
		f.Call = p.FlowPoints
		f.Label = fmt.Sprintf("Call Heavy (+%dc)", p.FlowPoints)
	case callPct < p.FlowPutHeavyPct:
		f.Put = p.FlowPoints
		f.Label = fmt.Sprintf("Put Heavy (+%dp)", p.FlowPoints)
	default:
		f.Label = "Balanced Flow"
	}
	return f
}

// scoreIV classifies the mean call-side implied volatility. The regime is not
// directional, so any nudge is applied to both sides equally.
func scoreIV(chain *model.OptionsChain, p Policy) factorScore {
	f := factorScore{Factor: model.FactorIV, Label: "No Data"}
	if chain == nil {
		return f
	}
	iv, ok := model.MeanIV(chain.Calls)
	if !ok {
		return f
	}

	switch {
	case iv < p.IVLow:
		f.Label = fmt.Sprintf("Low IV (%.2f)", iv)
		if p.IVNudge > 0 {
			f.Call, f.Put = p.IVNudge, p.IVNudge
			f.Label += fmt.Sprintf(" (+%db)", p.IVNudge)
		}
	case iv > p.IVHigh:
		f.Label = fmt.Sprintf("High IV (%.2f)", iv)
		if p.IVNudge > 0 {
			f.Call, f.Put = -p.IVNudge, -p.IVNudge
			f.Label += fmt.Sprintf(" (-%db)", p.IVNudge)
		}
	default:
		f.Label = fmt.Sprintf("Normal Regime (%.2f)", iv)
	}
	return f
}

// scoreEarnings penalizes both sides when earnings are close.
func scoreEarnings(days int, p Policy) factorScore {
	f := factorScore{Factor: model.FactorEarnings}
	if days <= p.EarningsCutoffDays {
		f.Call, f.Put = -p.EarningsPenalty, -p.EarningsPenalty
		f.Label = fmt.Sprintf("CRITICAL (%dd) -%d Pnlty", days, p.EarningsPenalty)
		return f
	}
	f.Label = fmt.Sprintf("Safe (%dd)", days)
	return f
}

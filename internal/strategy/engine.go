// Package strategy turns indicators, option flow and earnings distance into
// call/put bias scores.
package strategy

import (
	"strings"

	"OptionsSentinel/internal/model"
)

// Score computes the call and put bias for the latest bar of series. It is a
// pure function of its inputs; series must already carry indicators (see
// calculator.Apply). chain may be nil when no options data is available.
// Fewer than two bars yields the neutral Wait result.
func Score(series *model.PriceSeries, chain *model.OptionsChain, earningsDays int, p Policy) model.SignalResult {
	if series == nil || len(series.Bars) < 2 {
		return model.WaitSignal()
	}

	last := len(series.Bars) - 1
	ind := series.Indicators
	factors := []factorScore{
		scoreTrend(series.Bars[last].Close, model.At(ind.SMA50, last), p),
		scoreRSI(model.At(ind.RSI14, last), p),
		scoreMACD(model.At(ind.MACD, last), model.At(ind.MACDSignal, last), p),
		scoreFlow(chain, p),
		scoreIV(chain, p),
		scoreEarnings(earningsDays, p),
	}

	callScore, putScore := p.BaseScore, p.BaseScore
	breakdown := make(model.ScoreBreakdown, len(factors))
	for _, f := range factors {
		callScore += f.Call
		putScore += f.Put
		breakdown[f.Factor] = f.Label
	}

	callScore, putScore = clamp(callScore), clamp(putScore)
	return model.SignalResult{
		CallScore: callScore,
		PutScore:  putScore,
		Strength:  classify(callScore, putScore, p),
		Breakdown: breakdown,
	}
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func classify(call, put int, p Policy) model.Strength {
	switch {
	case call >= p.StrongScore || put >= p.StrongScore:
		return model.StrengthStrong
	case call >= p.ModerateScore || put >= p.ModerateScore:
		return model.StrengthModerate
	default:
		return model.StrengthWeak
	}
}

// Sentiment is the tone of a breakdown label.
type Sentiment string

const (
	SentimentBullish Sentiment = "bullish"
	SentimentBearish Sentiment = "bearish"
	SentimentWarning Sentiment = "warning"
	SentimentNeutral Sentiment = "neutral"
)

// LabelSentiment classifies a breakdown label for display.
func LabelSentiment(label string) Sentiment {
	l := strings.ToLower(label)
	switch {
	case strings.Contains(l, "pnlty") || strings.Contains(l, "critical"):
		return SentimentWarning
	case strings.Contains(l, "c)") || strings.Contains(l, "low iv"):
		return SentimentBullish
	case strings.Contains(l, "p)") || strings.Contains(l, "high iv"):
		return SentimentBearish
	default:
		return SentimentNeutral
	}
}

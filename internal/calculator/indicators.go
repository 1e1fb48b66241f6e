// Package calculator derives technical indicator columns from price bars.
package calculator

import "OptionsSentinel/internal/model"

// Params sets the indicator windows.
type Params struct {
	SMAWindow       int
	RSIWindow       int
	MACDFast        int
	MACDSlow        int
	MACDSignal      int
	BollingerWindow int
	BollingerK      float64
}

// DefaultParams are SMA50, RSI14, MACD(12,26,9) and Bollinger(20,2).
var DefaultParams = Params{
	SMAWindow:       50,
	RSIWindow:       14,
	MACDFast:        12,
	MACDSlow:        26,
	MACDSignal:      9,
	BollingerWindow: 20,
	BollingerK:      2,
}

// Apply computes every indicator column for the series and stores it in
// series.Indicators, replacing any previous values. Bars are never touched,
// so calling Apply again on the same series yields identical columns.
func Apply(series *model.PriceSeries, p Params) {
	if series == nil {
		return
	}
	closes := series.Closes()

	ind := model.Indicators{
		SMA50: SMA(closes, p.SMAWindow),
		RSI14: RSI(closes, p.RSIWindow),
	}
	ind.MACD, ind.MACDSignal = MACD(closes, p.MACDFast, p.MACDSlow, p.MACDSignal)
	ind.BollingerMid, ind.BollingerUpper, ind.BollingerLower = Bollinger(closes, p.BollingerWindow, p.BollingerK)

	series.Indicators = ind
}

package model

import (
	"math"
	"time"
)

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Indicators holds derived columns aligned 1:1 with PriceSeries.Bars.
// A NaN entry means the rolling window was not yet filled at that bar.
type Indicators struct {
	SMA50          []float64
	RSI14          []float64
	MACD           []float64
	MACDSignal     []float64
	BollingerMid   []float64
	BollingerUpper []float64
	BollingerLower []float64
}

// PriceSeries holds the intraday bars of one symbol plus derived indicators.
type PriceSeries struct {
	Symbol     string
	Bars       []OHLCV
	FetchedAt  time.Time
	Indicators Indicators
}

// Closes returns the close column.
func (s *PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// LastPrice returns the latest close, or 0 for an empty series.
func (s *PriceSeries) LastPrice() float64 {
	if s == nil || len(s.Bars) == 0 {
		return 0
	}
	return s.Bars[len(s.Bars)-1].Close
}

// Undefined is the value stored in an indicator column before its window fills.
func Undefined() float64 { return math.NaN() }

// Defined reports whether an indicator value has been computed.
func Defined(v float64) bool { return !math.IsNaN(v) }

// At returns column[i], or NaN when the column is shorter than i+1.
func At(column []float64, i int) float64 {
	if i < 0 || i >= len(column) {
		return math.NaN()
	}
	return column[i]
}

package calculator

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"OptionsSentinel/internal/model"
)

func rampSeries(n int, start, step float64) *model.PriceSeries {
	bars := make([]model.OHLCV, n)
	t0 := time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)
	for i := range bars {
		c := start + float64(i)*step
		bars[i] = model.OHLCV{Time: t0.Add(time.Duration(i) * time.Minute), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 1000}
	}
	return &model.PriceSeries{Symbol: "TEST", Bars: bars}
}

func TestSMA(t *testing.T) {
	out := SMA([]float64{1, 2, 3, 4, 5}, 3)
	require.Len(t, out, 5)
	assert.True(t, math.IsNaN(out[0]))
	assert.True(t, math.IsNaN(out[1]))
	assert.InDelta(t, 2.0, out[2], 1e-12)
	assert.InDelta(t, 3.0, out[3], 1e-12)
	assert.InDelta(t, 4.0, out[4], 1e-12)
}

func TestSMA_WindowLongerThanInput(t *testing.T) {
	out := SMA([]float64{1, 2}, 50)
	require.Len(t, out, 2)
	for _, v := range out {
		assert.True(t, math.IsNaN(v))
	}
}

func TestEMA_SeededByFirstValue(t *testing.T) {
	out := EMA([]float64{10, 20}, 3)
	// alpha = 0.5
	assert.Equal(t, 10.0, out[0])
	assert.InDelta(t, 15.0, out[1], 1e-12)
}

func TestRSI_RangeOnRandomWalk(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	closes := make([]float64, 500)
	price := 100.0
	for i := range closes {
		price += rng.NormFloat64()
		closes[i] = price
	}
	out := RSI(closes, 14)
	defined := 0
	for i, v := range out {
		if i < 14 {
			assert.True(t, math.IsNaN(v), "index %d should be undefined", i)
			continue
		}
		require.False(t, math.IsNaN(v))
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 100.0)
		defined++
	}
	assert.Equal(t, 500-14, defined)
}

func TestRSI_Extremes(t *testing.T) {
	up := RSI(rampSeries(30, 100, 1).Closes(), 14)
	v, err := Latest(up)
	require.NoError(t, err)
	assert.Greater(t, v, 99.0)

	down := RSI(rampSeries(30, 100, -1).Closes(), 14)
	v, err = Latest(down)
	require.NoError(t, err)
	assert.Less(t, v, 1.0)

	flat := RSI(rampSeries(30, 100, 0).Closes(), 14)
	v, err = Latest(flat)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, v, 1e-9)
}

func TestMACD_FlatSeriesIsZero(t *testing.T) {
	macd, signal := MACD(rampSeries(40, 50, 0).Closes(), 12, 26, 9)
	for i := range macd {
		assert.InDelta(t, 0.0, macd[i], 1e-12)
		assert.InDelta(t, 0.0, signal[i], 1e-12)
	}
}

func TestMACD_RisingSeriesAboveSignal(t *testing.T) {
	macd, signal := MACD(rampSeries(100, 100, 0.5).Closes(), 12, 26, 9)
	last := len(macd) - 1
	assert.Greater(t, macd[last], 0.0)
	assert.Greater(t, macd[last], signal[last])
}

func TestBollinger(t *testing.T) {
	closes := rampSeries(25, 100, 0).Closes()
	mid, upper, lower := Bollinger(closes, 20, 2)
	assert.True(t, math.IsNaN(mid[18]))
	assert.True(t, math.IsNaN(upper[18]))
	assert.InDelta(t, 100.0, mid[24], 1e-12)
	assert.InDelta(t, 100.0, upper[24], 1e-12)
	assert.InDelta(t, 100.0, lower[24], 1e-12)

	std := RollingStd([]float64{2, 4, 4, 4, 5, 5, 7, 9}, 8)
	// sample variance of the classic example is 32/7
	assert.InDelta(t, math.Sqrt(32.0/7.0), std[7], 1e-12)
}

func TestApply_AlignedAndIdempotent(t *testing.T) {
	series := rampSeries(120, 100, 0.25)
	before := append([]model.OHLCV(nil), series.Bars...)

	Apply(series, DefaultParams)
	first := series.Indicators
	for _, col := range [][]float64{first.SMA50, first.RSI14, first.MACD, first.MACDSignal, first.BollingerMid, first.BollingerUpper, first.BollingerLower} {
		assert.Len(t, col, len(series.Bars))
	}
	assert.Equal(t, before, series.Bars)

	Apply(series, DefaultParams)
	second := series.Indicators
	for i := range first.SMA50 {
		assert.Equal(t, math.Float64bits(first.SMA50[i]), math.Float64bits(second.SMA50[i]))
		assert.Equal(t, math.Float64bits(first.RSI14[i]), math.Float64bits(second.RSI14[i]))
		assert.Equal(t, math.Float64bits(first.MACD[i]), math.Float64bits(second.MACD[i]))
		assert.Equal(t, math.Float64bits(first.BollingerUpper[i]), math.Float64bits(second.BollingerUpper[i]))
	}

	_, err := Latest(first.SMA50)
	assert.NoError(t, err)
	_, err = Latest(SMA([]float64{1}, 50))
	assert.Error(t, err)
}

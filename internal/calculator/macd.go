package calculator

// MACD returns the MACD line (fast EMA minus slow EMA) and its signal line
// (EMA of the MACD line). Both columns are defined at every index.
func MACD(closes []float64, fast, slow, signal int) (macd, signalLine []float64) {
	fastEMA := EMA(closes, fast)
	slowEMA := EMA(closes, slow)
	macd = make([]float64, len(closes))
	for i := range closes {
		macd[i] = fastEMA[i] - slowEMA[i]
	}
	return macd, EMA(macd, signal)
}

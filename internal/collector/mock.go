package collector

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"OptionsSentinel/internal/model"
)

const (
	mockBarCount   = 100
	mockBarSpacing = 15 * time.Minute
	mockStrikes    = 11

	// MockEarningsDays means no known near-term earnings risk.
	MockEarningsDays = 99
)

// MockFetcher returns deterministic synthetic data seeded by the symbol, so
// repeated runs for one symbol look the same and different symbols look
// different. Set Bars, Chain or EarningsDate to return fixed data instead.
type MockFetcher struct {
	Bars         []model.OHLCV
	Chain        *model.OptionsChain
	EarningsDate time.Time
	Now          func() time.Time
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (m *MockFetcher) FetchHistory(_ context.Context, symbol, _, _ string) ([]model.OHLCV, error) {
	if m.Bars != nil {
		return m.Bars, nil
	}
	return MockHistory(symbol, m.now()), nil
}

func (m *MockFetcher) FetchOptions(_ context.Context, symbol string) (*model.OptionsChain, error) {
	if m.Chain != nil {
		return m.Chain, nil
	}
	return MockOptions(symbol), nil
}

func (m *MockFetcher) FetchEarningsDate(_ context.Context, _ string) (time.Time, error) {
	if !m.EarningsDate.IsZero() {
		return m.EarningsDate, nil
	}
	return time.Time{}, ErrNoEarningsDate
}

// MockSeed derives the generator seed from the symbol.
func MockSeed(symbol string) int64 {
	h := fnv.New32a()
	h.Write([]byte(symbol))
	return int64(h.Sum32() % 10000)
}

// MockBasePrice is the synthetic reference price of a symbol.
func MockBasePrice(symbol string) float64 {
	return float64(100 + MockSeed(symbol)%400)
}

// MockHistory generates a random walk of 15-minute bars ending at end.
func MockHistory(symbol string, end time.Time) []model.OHLCV {
	rng := rand.New(rand.NewSource(MockSeed(symbol)))
	price := MockBasePrice(symbol)
	start := end.Add(-time.Duration(mockBarCount-1) * mockBarSpacing)

	bars := make([]model.OHLCV, mockBarCount)
	for i := range bars {
		price = math.Max(1, price+rng.NormFloat64())
		bars[i] = model.OHLCV{
			Time:   start.Add(time.Duration(i) * mockBarSpacing),
			Open:   price - 0.5,
			High:   price + 1.0,
			Low:    price - 1.0,
			Close:  price,
			Volume: float64(10000 + rng.Intn(990000)),
		}
	}
	return bars
}

// MockOptions generates an 11-strike chain centered on the symbol base price.
func MockOptions(symbol string) *model.OptionsChain {
	seed := MockSeed(symbol)
	base := MockBasePrice(symbol)
	return &model.OptionsChain{
		Calls:  mockSide(rand.New(rand.NewSource(seed*10+1)), base),
		Puts:   mockSide(rand.New(rand.NewSource(seed*10+2)), base),
		Expiry: model.MockExpiry,
	}
}

func mockSide(rng *rand.Rand, base float64) []model.OptionContract {
	contracts := make([]model.OptionContract, mockStrikes)
	for i := range contracts {
		contracts[i] = model.OptionContract{
			Strike:            base + float64(i-mockStrikes/2),
			LastPrice:         1 + rng.Float64()*4,
			Volume:            float64(10 + rng.Intn(4990)),
			OpenInterest:      float64(100 + rng.Intn(9900)),
			ImpliedVolatility: 0.2 + rng.Float64()*0.6,
		}
	}
	return contracts
}

package collector

import (
	"context"
	"errors"
	"time"

	"OptionsSentinel/internal/model"
)

// ErrNoEarningsDate is returned when the upstream knows no upcoming earnings.
var ErrNoEarningsDate = errors.New("no upcoming earnings date")

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	// FetchHistory returns bars for the lookback range (e.g. "5d") at the
	// given interval (e.g. "1m"), oldest first.
	FetchHistory(ctx context.Context, symbol, rng, interval string) ([]model.OHLCV, error)
	// FetchOptions returns the nearest-expiry options chain.
	FetchOptions(ctx context.Context, symbol string) (*model.OptionsChain, error)
	// FetchEarningsDate returns the next scheduled earnings release.
	FetchEarningsDate(ctx context.Context, symbol string) (time.Time, error)
	Name() string
}

package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"OptionsSentinel/internal/clock"
	"OptionsSentinel/internal/metrics"
	"OptionsSentinel/internal/model"
	"OptionsSentinel/internal/util"
)

// Options configures the Collector.
type Options struct {
	Range       string        // history lookback, e.g. "5d"
	Interval    string        // history bar size, e.g. "1m"
	Timeout     time.Duration // bound on each upstream call
	HistoryTTL  time.Duration
	OptionsTTL  time.Duration
	EarningsTTL time.Duration
	Now         func() time.Time
}

// DefaultOptions returns five days of one-minute bars, a 10s upstream
// timeout and TTLs of 60s, 5m and 1h.
func DefaultOptions() Options {
	return Options{
		Range:       "5d",
		Interval:    "1m",
		Timeout:     10 * time.Second,
		HistoryTTL:  time.Minute,
		OptionsTTL:  5 * time.Minute,
		EarningsTTL: time.Hour,
	}
}

// Collector wraps a primary Fetcher with per-kind TTL caches and a
// deterministic synthetic fallback, so every fetch yields data.
type Collector struct {
	primary  Fetcher
	opts     Options
	log      zerolog.Logger

	history  *ttlCache[model.Fetched[*model.PriceSeries]]
	options  *ttlCache[model.Fetched[*model.OptionsChain]]
	earnings *ttlCache[model.Fetched[int]]
	group    singleflight.Group
}

// NewCollector creates a new Collector. Zero-valued options fall back to
// DefaultOptions.
func NewCollector(primary Fetcher, opts Options, log zerolog.Logger) *Collector {
	def := DefaultOptions()
	if opts.Range == "" {
		opts.Range = def.Range
	}
	if opts.Interval == "" {
		opts.Interval = def.Interval
	}
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if opts.HistoryTTL <= 0 {
		opts.HistoryTTL = def.HistoryTTL
	}
	if opts.OptionsTTL <= 0 {
		opts.OptionsTTL = def.OptionsTTL
	}
	if opts.EarningsTTL <= 0 {
		opts.EarningsTTL = def.EarningsTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Collector{
		primary:  primary,
		opts:     opts,
		log:      log,
		history:  newTTLCache[model.Fetched[*model.PriceSeries]](opts.HistoryTTL, opts.Now),
		options:  newTTLCache[model.Fetched[*model.OptionsChain]](opts.OptionsTTL, opts.Now),
		earnings: newTTLCache[model.Fetched[int]](opts.EarningsTTL, opts.Now),
	}
}

// Source names the primary fetcher.
func (c *Collector) Source() string { return c.primary.Name() }

func (c *Collector) primaryIsMock() bool {
	_, ok := c.primary.(*MockFetcher)
	return ok
}

// History returns the price series for symbol. The returned series is a fresh
// value whose Bars must be treated as read-only; its Indicators are empty.
func (c *Collector) History(ctx context.Context, symbol string) model.Fetched[*model.PriceSeries] {
	symbol = util.NormalizeSymbol(symbol)
	res := cached(c, ctx, "history", symbol, c.history, c.fetchHistory)
	if res.Data != nil {
		cp := *res.Data
		cp.Indicators = model.Indicators{}
		res.Data = &cp
	}
	return res
}

// Options returns the nearest-expiry options chain for symbol.
func (c *Collector) Options(ctx context.Context, symbol string) model.Fetched[*model.OptionsChain] {
	symbol = util.NormalizeSymbol(symbol)
	return cached(c, ctx, "options", symbol, c.options, c.fetchOptions)
}

// EarningsDays returns the whole days until the next earnings release,
// MockEarningsDays when none is known.
func (c *Collector) EarningsDays(ctx context.Context, symbol string) model.Fetched[int] {
	symbol = util.NormalizeSymbol(symbol)
	return cached(c, ctx, "earnings", symbol, c.earnings, c.fetchEarnings)
}

// Invalidate drops every cached fetch for symbol.
func (c *Collector) Invalidate(symbol string) {
	symbol = util.NormalizeSymbol(symbol)
	c.history.delete(symbol)
	c.options.delete(symbol)
	c.earnings.delete(symbol)
}

// InvalidateAll drops every cached fetch.
func (c *Collector) InvalidateAll() {
	c.history.clear()
	c.options.clear()
	c.earnings.clear()
}

// cached serves key from cache or runs fetch once for all concurrent callers.
func cached[T any](c *Collector, ctx context.Context, kind, symbol string, cache *ttlCache[model.Fetched[T]], fetch func(context.Context, string) model.Fetched[T]) model.Fetched[T] {
	if v, ok := cache.get(symbol); ok {
		return v
	}
	v, _, _ := c.group.Do(kind+":"+symbol, func() (interface{}, error) {
		if v, ok := cache.get(symbol); ok {
			return v, nil
		}
		res := fetch(ctx, symbol)
		if res.Simulated && c.primaryIsMock() {
			res.Err = nil
		}
		cache.set(symbol, res)

		source := "live"
		if res.Simulated {
			source = "simulated"
			if res.Err != nil {
				c.log.Warn().Err(res.Err).Str("symbol", symbol).Str("kind", kind).Msg("upstream unavailable, using simulated data")
			}
		}
		metrics.FetchTotal.WithLabelValues(kind, source).Inc()
		return res, nil
	})
	return v.(model.Fetched[T])
}

func (c *Collector) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.opts.Timeout)
}

// live tags data from the primary fetcher, which is simulated when the
// primary itself is the mock generator.
func live[T any](c *Collector, data T) model.Fetched[T] {
	if c.primaryIsMock() {
		return model.Simulated(data, nil)
	}
	return model.Live(data)
}

func (c *Collector) fetchHistory(ctx context.Context, symbol string) model.Fetched[*model.PriceSeries] {
	series := &model.PriceSeries{Symbol: symbol, FetchedAt: c.opts.Now()}

	tctx, cancel := c.withTimeout(ctx)
	bars, err := c.primary.FetchHistory(tctx, symbol, c.opts.Range, c.opts.Interval)
	cancel()
	if err == nil && !hasClose(bars) {
		err = fmt.Errorf("%s: empty history for %s", c.primary.Name(), symbol)
	}
	if err != nil {
		series.Bars = MockHistory(symbol, c.opts.Now())
		return model.Simulated(series, err)
	}
	series.Bars = bars
	return live(c, series)
}

func hasClose(bars []model.OHLCV) bool {
	for _, b := range bars {
		if b.Close > 0 {
			return true
		}
	}
	return false
}

func (c *Collector) fetchOptions(ctx context.Context, symbol string) model.Fetched[*model.OptionsChain] {
	tctx, cancel := c.withTimeout(ctx)
	chain, err := c.primary.FetchOptions(tctx, symbol)
	cancel()
	if err == nil && chain.Empty() {
		err = fmt.Errorf("%s: empty option chain for %s", c.primary.Name(), symbol)
	}
	if err != nil {
		return model.Simulated(MockOptions(symbol), err)
	}
	return live(c, chain)
}

func (c *Collector) fetchEarnings(ctx context.Context, symbol string) model.Fetched[int] {
	tctx, cancel := c.withTimeout(ctx)
	date, err := c.primary.FetchEarningsDate(tctx, symbol)
	cancel()
	switch {
	case errors.Is(err, ErrNoEarningsDate):
		return live(c, MockEarningsDays)
	case err != nil:
		return model.Simulated(MockEarningsDays, err)
	}
	return live(c, DaysUntil(c.opts.Now(), date))
}

// DaysUntil counts calendar days in exchange time from now to date, never
// negative.
func DaysUntil(now, date time.Time) int {
	a := civilDay(now.In(clock.Eastern))
	b := civilDay(date.In(clock.Eastern))
	days := int(b.Sub(a).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

func civilDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

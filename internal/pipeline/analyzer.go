// Package pipeline ties data collection, indicators, scoring and the
// signal cache into one analysis per symbol.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"OptionsSentinel/internal/calculator"
	"OptionsSentinel/internal/clock"
	"OptionsSentinel/internal/metrics"
	"OptionsSentinel/internal/model"
	"OptionsSentinel/internal/signalcache"
	"OptionsSentinel/internal/strategy"
	"OptionsSentinel/internal/util"
)

// ErrEmptySymbol is returned for a blank symbol.
var ErrEmptySymbol = errors.New("empty symbol")

// DataSource provides the three scoring inputs. collector.Collector is the
// production implementation.
type DataSource interface {
	History(ctx context.Context, symbol string) model.Fetched[*model.PriceSeries]
	Options(ctx context.Context, symbol string) model.Fetched[*model.OptionsChain]
	EarningsDays(ctx context.Context, symbol string) model.Fetched[int]
}

// Analysis is everything known about one symbol after a request.
type Analysis struct {
	Symbol string
	// Series carries indicator columns only when the signal was computed for
	// this request; a frozen replay leaves them empty.
	Series       *model.PriceSeries
	Options      *model.OptionsChain
	EarningsDays int
	Signal       model.SignalResult
	Source       signalcache.Source
	Market       clock.Status // status the cache based its freeze decision on
	Simulated    bool // any input came from the synthetic generator
	Price        float64
	At           time.Time
}

// Config tunes an Analyzer. Zero values use the package defaults.
type Config struct {
	Policy      strategy.Policy
	Params      calculator.Params
	Now         func() time.Time
	Concurrency int // parallel symbols in AnalyzeAll
}

// Analyzer produces signals for symbols.
type Analyzer struct {
	src   DataSource
	cache *signalcache.Cache
	cfg   Config
	log   zerolog.Logger
}

// NewAnalyzer creates a new Analyzer.
func NewAnalyzer(src DataSource, cache *signalcache.Cache, cfg Config, log zerolog.Logger) *Analyzer {
	if cfg.Policy == (strategy.Policy{}) {
		cfg.Policy = strategy.DefaultPolicy
	}
	if cfg.Params == (calculator.Params{}) {
		cfg.Params = calculator.DefaultParams
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	return &Analyzer{src: src, cache: cache, cfg: cfg, log: log}
}

// Policy returns the scoring policy in use.
func (a *Analyzer) Policy() strategy.Policy { return a.cfg.Policy }

// Analyze fetches inputs for symbol and returns its signal. While the market
// is closed the signal is the frozen one from the last open-market request.
func (a *Analyzer) Analyze(ctx context.Context, symbol string) (*Analysis, error) {
	symbol = util.NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, ErrEmptySymbol
	}

	var (
		history  model.Fetched[*model.PriceSeries]
		chain    model.Fetched[*model.OptionsChain]
		earnings model.Fetched[int]
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		history = a.src.History(gctx, symbol)
		return nil
	})
	g.Go(func() error {
		chain = a.src.Options(gctx, symbol)
		return nil
	})
	g.Go(func() error {
		earnings = a.src.EarningsDays(gctx, symbol)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	series := history.Data
	now := a.cfg.Now()
	signal, source, status := a.cache.Signal(symbol, now, func() model.SignalResult {
		calculator.Apply(series, a.cfg.Params)
		return strategy.Score(series, chain.Data, earnings.Data, a.cfg.Policy)
	})

	metrics.SignalsTotal.WithLabelValues(symbol, string(source)).Inc()
	metrics.SignalScore.WithLabelValues(symbol, "call").Set(float64(signal.CallScore))
	metrics.SignalScore.WithLabelValues(symbol, "put").Set(float64(signal.PutScore))

	simulated := history.Simulated || chain.Simulated || earnings.Simulated
	a.log.Debug().
		Str("symbol", symbol).
		Int("call", signal.CallScore).
		Int("put", signal.PutScore).
		Str("strength", string(signal.Strength)).
		Str("source", string(source)).
		Bool("simulated", simulated).
		Msg("analyzed")

	return &Analysis{
		Symbol:       symbol,
		Series:       series,
		Options:      chain.Data,
		EarningsDays: earnings.Data,
		Signal:       signal,
		Source:       source,
		Market:       status,
		Simulated:    simulated,
		Price:        series.LastPrice(),
		At:           now,
	}, nil
}

// AnalyzeAll analyzes symbols with bounded parallelism. Results keep the
// input order; symbols that fail are logged and left nil.
func (a *Analyzer) AnalyzeAll(ctx context.Context, symbols []string) []*Analysis {
	out := make([]*Analysis, len(symbols))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Concurrency)
	for i, sym := range symbols {
		g.Go(func() error {
			res, err := a.Analyze(gctx, sym)
			if err != nil {
				a.log.Warn().Err(err).Str("symbol", sym).Msg("analyze failed")
				return nil
			}
			out[i] = res
			return nil
		})
	}
	_ = g.Wait()
	return out
}

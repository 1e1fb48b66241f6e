// Package signalcache holds the last open-market signal per symbol and
// replays it verbatim while the market is closed.
package signalcache

import (
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"OptionsSentinel/internal/clock"
	"OptionsSentinel/internal/metrics"
	"OptionsSentinel/internal/model"
	"OptionsSentinel/internal/recorder"
)

// Source tells whether a returned signal was computed or replayed.
type Source string

const (
	SourceLive   Source = "live"
	SourceFrozen Source = "frozen"
)

// MarketFunc reports whether the market is open at the given instant.
type MarketFunc func(now time.Time) (bool, clock.Status)

// ComputeFunc produces a fresh signal.
type ComputeFunc func() model.SignalResult

type entry struct {
	mu       sync.Mutex
	result   model.SignalResult
	has      bool
	storedAt time.Time
}

// Cache is an in-memory, process-lifetime store keyed by symbol. Entries are
// only ever replaced, never expired.
type Cache struct {
	market   MarketFunc
	recorder recorder.Recorder
	log      zerolog.Logger

	mu      sync.Mutex
	entries map[string]*entry
}

// New creates a Cache. A nil market func uses clock.IsOpen and a nil recorder
// disables the signal log.
func New(market MarketFunc, rec recorder.Recorder, log zerolog.Logger) *Cache {
	if market == nil {
		market = clock.IsOpen
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Cache{
		market:   market,
		recorder: rec,
		log:      log,
		entries:  make(map[string]*entry),
	}
}

func (c *Cache) entry(symbol string) *entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[symbol]
	if !ok {
		e = &entry{}
		c.entries[symbol] = e
	}
	return e
}

// Signal returns the signal for symbol at now together with the market
// status the freeze decision was made on.
//
// While the market is open compute always runs and its result replaces the
// cached one, and a log row is appended. While the market is closed a cached
// result is returned unchanged without calling compute. If nothing is cached
// yet, compute runs once and its result is cached for later closed-market
// requests; no log row is written for it.
func (c *Cache) Signal(symbol string, now time.Time, compute ComputeFunc) (model.SignalResult, Source, clock.Status) {
	e := c.entry(symbol)
	e.mu.Lock()
	defer e.mu.Unlock()

	open, status := c.market(now)
	if !open && e.has {
		c.log.Debug().Str("symbol", symbol).Str("market", string(status)).Msg("replaying frozen signal")
		return e.result.Clone(), SourceFrozen, status
	}

	res := compute()
	e.result = res.Clone()
	e.has = true
	e.storedAt = now

	if open {
		if err := c.recorder.RecordSignal(model.SignalLogEntry{
			Timestamp: now,
			Symbol:    symbol,
			CallScore: res.CallScore,
			PutScore:  res.PutScore,
			Strength:  res.Strength,
		}); err != nil {
			metrics.RecorderErrors.Inc()
			c.log.Error().Err(err).Str("symbol", symbol).Msg("record signal")
		}
	}
	return res, SourceLive, status
}

// Get returns the cached signal for symbol and when it was stored.
func (c *Cache) Get(symbol string) (model.SignalResult, time.Time, bool) {
	c.mu.Lock()
	e, ok := c.entries[symbol]
	c.mu.Unlock()
	if !ok {
		return model.SignalResult{}, time.Time{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.has {
		return model.SignalResult{}, time.Time{}, false
	}
	return e.result.Clone(), e.storedAt, true
}

// Clear drops the cached signal for symbol.
func (c *Cache) Clear(symbol string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, symbol)
}

// Symbols lists the symbols with a cached signal, sorted.
func (c *Cache) Symbols() []string {
	c.mu.Lock()
	candidates := make(map[string]*entry, len(c.entries))
	for sym, e := range c.entries {
		candidates[sym] = e
	}
	c.mu.Unlock()

	out := make([]string, 0, len(candidates))
	for sym, e := range candidates {
		e.mu.Lock()
		if e.has {
			out = append(out, sym)
		}
		e.mu.Unlock()
	}
	sort.Strings(out)
	return out
}

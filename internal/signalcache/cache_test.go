package signalcache

import (
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"OptionsSentinel/internal/clock"
	"OptionsSentinel/internal/model"
)

type switchableMarket struct {
	mu   sync.Mutex
	open bool
}

func (m *switchableMarket) set(open bool) {
	m.mu.Lock()
	m.open = open
	m.mu.Unlock()
}

func (m *switchableMarket) isOpen(time.Time) (bool, clock.Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.open {
		return true, clock.StatusOpen
	}
	return false, clock.StatusAfterHours
}

type memRecorder struct {
	mu      sync.Mutex
	entries []model.SignalLogEntry
}

func (r *memRecorder) RecordSignal(e model.SignalLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	return nil
}

func (r *memRecorder) Close() error { return nil }

func (r *memRecorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

type countingCompute struct {
	calls int
	call  int
}

func (c *countingCompute) fn() model.SignalResult {
	c.calls++
	c.call += 5
	return model.SignalResult{
		CallScore: c.call,
		PutScore:  100 - c.call,
		Strength:  model.StrengthWeak,
		Breakdown: model.ScoreBreakdown{model.FactorTrend: "Near MA50"},
	}
}

func TestSignal_OpenAlwaysRecomputes(t *testing.T) {
	market := &switchableMarket{open: true}
	rec := &memRecorder{}
	c := New(market.isOpen, rec, zerolog.Nop())
	compute := &countingCompute{}
	now := time.Now()

	first, src, _ := c.Signal("AAPL", now, compute.fn)
	assert.Equal(t, SourceLive, src)
	second, src, _ := c.Signal("AAPL", now, compute.fn)
	assert.Equal(t, SourceLive, src)

	assert.Equal(t, 2, compute.calls)
	assert.NotEqual(t, first.CallScore, second.CallScore)
	assert.Equal(t, 2, rec.len())

	cached, _, ok := c.Get("AAPL")
	require.True(t, ok)
	assert.Equal(t, second, cached)
}

func TestSignal_ClosedReplaysLastOpenValue(t *testing.T) {
	market := &switchableMarket{open: true}
	rec := &memRecorder{}
	c := New(market.isOpen, rec, zerolog.Nop())
	compute := &countingCompute{}
	now := time.Now()

	c.Signal("AAPL", now, compute.fn)
	last, _, _ := c.Signal("AAPL", now, compute.fn)

	market.set(false)
	for i := 0; i < 5; i++ {
		got, src, status := c.Signal("AAPL", now.Add(time.Duration(i)*time.Hour), compute.fn)
		assert.Equal(t, SourceFrozen, src)
		assert.Equal(t, clock.StatusAfterHours, status)
		assert.Equal(t, last, got)
	}
	assert.Equal(t, 2, compute.calls)
	assert.Equal(t, 2, rec.len())

	market.set(true)
	fresh, src, status := c.Signal("AAPL", now, compute.fn)
	assert.Equal(t, SourceLive, src)
	assert.Equal(t, clock.StatusOpen, status)
	assert.NotEqual(t, last, fresh)
}

func TestSignal_ClosedWithoutEntryComputesOnce(t *testing.T) {
	market := &switchableMarket{open: false}
	rec := &memRecorder{}
	c := New(market.isOpen, rec, zerolog.Nop())
	compute := &countingCompute{}
	now := time.Now()

	first, src, _ := c.Signal("ZZZ", now, compute.fn)
	assert.Equal(t, SourceLive, src)
	second, src, _ := c.Signal("ZZZ", now, compute.fn)
	assert.Equal(t, SourceFrozen, src)

	assert.Equal(t, 1, compute.calls)
	assert.Equal(t, first, second)
	assert.Equal(t, 0, rec.len(), "closed-market computations are not logged")
}

func TestSignal_ReplayIsIsolatedFromCallerMutation(t *testing.T) {
	market := &switchableMarket{open: true}
	c := New(market.isOpen, nil, zerolog.Nop())
	compute := &countingCompute{}

	res, _, _ := c.Signal("AAPL", time.Now(), compute.fn)
	res.Breakdown[model.FactorTrend] = "tampered"

	market.set(false)
	replay, _, _ := c.Signal("AAPL", time.Now(), compute.fn)
	assert.Equal(t, "Near MA50", replay.Breakdown[model.FactorTrend])
}

func TestSignal_ConcurrentOpenRequests(t *testing.T) {
	market := &switchableMarket{open: true}
	rec := &memRecorder{}
	c := New(market.isOpen, rec, zerolog.Nop())

	var mu sync.Mutex
	calls := 0
	compute := func() model.SignalResult {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		return model.SignalResult{CallScore: n, PutScore: n, Strength: model.StrengthWeak, Breakdown: model.ScoreBreakdown{}}
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Signal("SPY", time.Now(), compute)
		}()
	}
	wg.Wait()

	cached, _, ok := c.Get("SPY")
	require.True(t, ok)
	assert.Equal(t, cached.CallScore, cached.PutScore)
	assert.Equal(t, 50, rec.len())
}

func TestClearAndSymbols(t *testing.T) {
	market := &switchableMarket{open: true}
	c := New(market.isOpen, nil, zerolog.Nop())
	compute := &countingCompute{}

	c.Signal("TSLA", time.Now(), compute.fn)
	c.Signal("AAPL", time.Now(), compute.fn)
	assert.Equal(t, []string{"AAPL", "TSLA"}, c.Symbols())

	c.Clear("TSLA")
	assert.Equal(t, []string{"AAPL"}, c.Symbols())
	_, _, ok := c.Get("TSLA")
	assert.False(t, ok)
}

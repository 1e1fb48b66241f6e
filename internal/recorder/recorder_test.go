package recorder

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"OptionsSentinel/internal/model"
)

func entry(symbol string, call, put int, at time.Time) model.SignalLogEntry {
	return model.SignalLogEntry{Timestamp: at, Symbol: symbol, CallScore: call, PutScore: put, Strength: model.StrengthModerate}
}

func TestCSVRecorder_HeaderWrittenOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "signals.csv")
	at := time.Date(2026, 10, 14, 14, 0, 0, 0, time.UTC)

	r, err := NewCSVRecorder(path)
	require.NoError(t, err)
	require.NoError(t, r.RecordSignal(entry("AAPL", 65, 35, at)))
	require.NoError(t, r.Close())

	r, err = NewCSVRecorder(path)
	require.NoError(t, err)
	require.NoError(t, r.RecordSignal(entry("TSLA", 30, 70, at.Add(time.Minute))))
	require.NoError(t, r.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, CSVHeader, rows[0])
	assert.Equal(t, []string{"2026-10-14T14:00:00Z", "AAPL", "65", "35", "Moderate"}, rows[1])
	assert.Equal(t, "TSLA", rows[2][1])
}

func TestCSVRecorder_RecordAfterClose(t *testing.T) {
	r, err := NewCSVRecorder(filepath.Join(t.TempDir(), "signals.csv"))
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Error(t, r.RecordSignal(entry("AAPL", 1, 2, time.Now())))
	assert.NoError(t, r.Close())
}

func TestSQLiteRecorder_History(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "signals.db"), zerolog.Nop())
	require.NoError(t, err)
	defer r.Close()

	at := time.Date(2026, 10, 14, 14, 0, 0, 0, time.UTC)
	require.NoError(t, r.RecordSignal(entry("AAPL", 50, 50, at)))
	require.NoError(t, r.RecordSignal(entry("AAPL", 80, 20, at.Add(time.Minute))))
	require.NoError(t, r.RecordSignal(entry("SPY", 10, 90, at)))

	hist, err := r.History("AAPL", 10)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, 80, hist[0].CallScore)
	assert.Equal(t, model.StrengthModerate, hist[0].Strength)
	assert.Equal(t, at.Add(time.Minute).Unix(), hist[0].Timestamp.Unix())
	assert.Equal(t, 50, hist[1].CallScore)
}

type failingRecorder struct{ closed bool }

func (f *failingRecorder) RecordSignal(model.SignalLogEntry) error { return errors.New("disk full") }
func (f *failingRecorder) Close() error                            { f.closed = true; return nil }

func TestMulti(t *testing.T) {
	bad := &failingRecorder{}
	m := Multi{NewNoopRecorder(), bad}
	assert.ErrorContains(t, m.RecordSignal(entry("AAPL", 1, 1, time.Now())), "disk full")
	assert.NoError(t, m.Close())
	assert.True(t, bad.closed)
}

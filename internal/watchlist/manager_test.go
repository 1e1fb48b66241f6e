package watchlist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager_SeedsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "watchlist.json")
	m, err := NewManager(path, []string{"aapl", "TSLA", "AAPL", " "})
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "TSLA"}, m.List())

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestManager_AddRemovePersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchlist.json")
	m, err := NewManager(path, DefaultSymbols)
	require.NoError(t, err)

	added, err := m.Add(" meta ")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = m.Add("META")
	require.NoError(t, err)
	assert.False(t, added)

	_, err = m.Add("")
	assert.ErrorIs(t, err, ErrEmptySymbol)

	removed, err := m.Remove("spy")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = m.Remove("SPY")
	require.NoError(t, err)
	assert.False(t, removed)

	assert.True(t, m.Contains("meta"))
	assert.False(t, m.Contains("SPY"))

	reloaded, err := NewManager(path, []string{"IGNORED"})
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "TSLA", "NFLX", "AMZN", "GOOGL", "META"}, reloaded.List())
}

func TestManager_ListIsACopy(t *testing.T) {
	m, err := NewManager("", []string{"AAPL"})
	require.NoError(t, err)
	list := m.List()
	list[0] = "XXX"
	assert.Equal(t, []string{"AAPL"}, m.List())
}

func TestLoadState_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchlist.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	_, err := NewManager(path, DefaultSymbols)
	assert.Error(t, err)
}

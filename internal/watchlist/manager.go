// Package watchlist keeps the persisted set of symbols the bot tracks.
package watchlist

import (
	"errors"
	"slices"
	"sync"

	"OptionsSentinel/internal/util"
)

// DefaultSymbols seed a fresh watchlist.
var DefaultSymbols = []string{"AAPL", "TSLA", "SPY", "NFLX", "AMZN", "GOOGL"}

var ErrEmptySymbol = errors.New("empty symbol")

// Manager is an ordered, deduplicated symbol set backed by a JSON file.
// An empty file path keeps the list in memory only.
type Manager struct {
	mu       sync.Mutex
	state    *State
	filePath string
}

// NewManager loads the watchlist from filePath, seeding it with defaults
// when the file does not exist yet.
func NewManager(filePath string, defaults []string) (*Manager, error) {
	var (
		state *State
		err   error
	)
	if filePath != "" {
		state, err = LoadState(filePath)
		if err != nil {
			return nil, err
		}
	}
	if state == nil {
		state = &State{}
		for _, s := range defaults {
			state.Symbols = appendUnique(state.Symbols, util.NormalizeSymbol(s))
		}
	}

	m := &Manager{state: state, filePath: filePath}
	if err := m.save(); err != nil {
		return nil, err
	}
	return m, nil
}

func appendUnique(list []string, symbol string) []string {
	if symbol == "" || slices.Contains(list, symbol) {
		return list
	}
	return append(list, symbol)
}

// List returns a copy of the symbols in insertion order.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.state.Symbols)
}

// Contains reports whether symbol is on the list.
func (m *Manager) Contains(symbol string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Contains(m.state.Symbols, util.NormalizeSymbol(symbol))
}

// Add appends symbol and reports whether it was new.
func (m *Manager) Add(symbol string) (bool, error) {
	symbol = util.NormalizeSymbol(symbol)
	if symbol == "" {
		return false, ErrEmptySymbol
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if slices.Contains(m.state.Symbols, symbol) {
		return false, nil
	}
	m.state.Symbols = append(m.state.Symbols, symbol)
	return true, m.save()
}

// Remove deletes symbol and reports whether it was present.
func (m *Manager) Remove(symbol string) (bool, error) {
	symbol = util.NormalizeSymbol(symbol)

	m.mu.Lock()
	defer m.mu.Unlock()
	i := slices.Index(m.state.Symbols, symbol)
	if i < 0 {
		return false, nil
	}
	m.state.Symbols = slices.Delete(m.state.Symbols, i, i+1)
	return true, m.save()
}

func (m *Manager) save() error {
	if m.filePath == "" {
		return nil
	}
	return SaveState(m.filePath, m.state)
}

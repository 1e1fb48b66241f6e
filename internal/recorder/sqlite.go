package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"OptionsSentinel/internal/model"
)

// SQLiteRecorder persists the signal history to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log zerolog.Logger) (*SQLiteRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets external readers query while we append.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS signal_log (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  INTEGER NOT NULL,
			symbol     TEXT NOT NULL,
			call_score INTEGER NOT NULL,
			put_score  INTEGER NOT NULL,
			strength   TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signal_symbol_ts ON signal_log(symbol, timestamp)`,
	}
	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordSignal(e model.SignalLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO signal_log
		(timestamp, symbol, call_score, put_score, strength)
		VALUES (?,?,?,?,?)`,
		e.Timestamp.Unix(), e.Symbol, e.CallScore, e.PutScore, string(e.Strength),
	)
	return err
}

// History returns up to limit most recent entries for symbol, newest first.
func (r *SQLiteRecorder) History(symbol string, limit int) ([]model.SignalLogEntry, error) {
	rows, err := r.db.Query(`SELECT timestamp, symbol, call_score, put_score, strength
		FROM signal_log WHERE symbol = ? ORDER BY timestamp DESC, id DESC LIMIT ?`, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []model.SignalLogEntry
	for rows.Next() {
		var (
			ts       int64
			e        model.SignalLogEntry
			strength string
		)
		if err := rows.Scan(&ts, &e.Symbol, &e.CallScore, &e.PutScore, &strength); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		e.Timestamp = time.Unix(ts, 0)
		e.Strength = model.Strength(strength)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}

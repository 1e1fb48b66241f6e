package recorder

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"OptionsSentinel/internal/model"
)

// CSVHeader is written once when the log file is created.
var CSVHeader = []string{"timestamp", "symbol", "call_score", "put_score", "strength"}

// CSVRecorder appends signal rows to a CSV file.
type CSVRecorder struct {
	mu   sync.Mutex
	file *os.File
	w    *csv.Writer
}

// NewCSVRecorder opens path for appending, creating it with a header row when
// it does not exist or is empty.
func NewCSVRecorder(path string) (*CSVRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open signal log: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat signal log: %w", err)
	}

	r := &CSVRecorder{file: file, w: csv.NewWriter(file)}
	if info.Size() == 0 {
		if err := r.write(CSVHeader); err != nil {
			file.Close()
			return nil, fmt.Errorf("write header: %w", err)
		}
	}
	return r, nil
}

func (r *CSVRecorder) write(row []string) error {
	if err := r.w.Write(row); err != nil {
		return err
	}
	r.w.Flush()
	return r.w.Error()
}

func (r *CSVRecorder) RecordSignal(e model.SignalLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return fmt.Errorf("signal log closed")
	}
	return r.write([]string{
		e.Timestamp.Format(time.RFC3339),
		e.Symbol,
		strconv.Itoa(e.CallScore),
		strconv.Itoa(e.PutScore),
		string(e.Strength),
	})
}

func (r *CSVRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

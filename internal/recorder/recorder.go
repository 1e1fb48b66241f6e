package recorder

import (
	"errors"

	"OptionsSentinel/internal/model"
)

// Recorder persists the append-only signal history for later review.
type Recorder interface {
	RecordSignal(entry model.SignalLogEntry) error
	Close() error
}

// Multi fans every entry out to several recorders.
type Multi []Recorder

func (m Multi) RecordSignal(entry model.SignalLogEntry) error {
	var errs []error
	for _, r := range m {
		if err := r.RecordSignal(entry); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, r := range m {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

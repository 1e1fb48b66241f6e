package recorder

import "OptionsSentinel/internal/model"

// NoopRecorder is used when no signal log is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordSignal(_ model.SignalLogEntry) error { return nil }
func (n *NoopRecorder) Close() error                              { return nil }

// Package multi fans batches out to named sinks.
package multi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hejijunhao/fwdigest/internal/model"
	"github.com/hejijunhao/fwdigest/internal/output"
)

// SinkError reports which sink failed and during what, e.g. "threat batch"
// or "close".
type SinkError struct {
	Sink string
	Op   string
	Err  error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("output %s: %s: %v", e.Sink, e.Op, e.Err)
}

func (e *SinkError) Unwrap() error { return e.Err }

type sink struct {
	name string
	out  output.Output
}

// Multi delivers each batch to every sink in registration order. A failing
// sink never stops delivery to the rest.
type Multi struct {
	sinks []sink
}

// New creates an empty Multi.
func New() *Multi {
	return &Multi{}
}

// Add registers out under name and returns m.
func (m *Multi) Add(name string, out output.Output) *Multi {
	m.sinks = append(m.sinks, sink{name: name, out: out})
	return m
}

// Sinks returns the sink names in delivery order.
func (m *Multi) Sinks() []string {
	names := make([]string, len(m.sinks))
	for i, s := range m.sinks {
		names[i] = s.name
	}
	return names
}

// Write delivers the batch to every sink. Failures come back joined, one
// *SinkError per failing sink.
func (m *Multi) Write(ctx context.Context, batch model.Batch) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.out.Write(ctx, batch); err != nil {
			slog.Warn("output failed", "sink", s.name, "category", batch.Category.String(), "error", err)
			errs = append(errs, &SinkError{Sink: s.name, Op: batch.Category.String() + " batch", Err: err})
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink, collecting errors.
func (m *Multi) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.out.Close(); err != nil {
			errs = append(errs, &SinkError{Sink: s.name, Op: "close", Err: err})
		}
	}
	return errors.Join(errs...)
}

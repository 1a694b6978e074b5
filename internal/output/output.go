package output

import (
	"context"

	"github.com/hejijunhao/fwdigest/internal/model"
)

// Output defines the interface for batch destinations. The pipeline calls
// Write once per category per run, from a single goroutine.
type Output interface {
	Write(ctx context.Context, batch model.Batch) error
	Close() error
}

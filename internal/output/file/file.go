package file

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/hejijunhao/fwdigest/internal/model"
	"github.com/hejijunhao/fwdigest/internal/output"
)

const (
	defaultBufSize = 64 * 1024 // 64KB

	// DateLayout is the date stamp in artifact names, e.g. 14Oct2026.
	DateLayout = "02Jan2006"
)

// Option configures a file Output.
type Option func(*Output)

// WithBufSize sets the bufio.Writer buffer size. Default: 64KB.
func WithBufSize(bytes int) Option {
	return func(o *Output) { o.bufSize = bytes }
}

// WithDate overrides the date used in artifact names. Default: the run date
// passed to New.
func WithDate(t time.Time) Option {
	return func(o *Output) { o.date = t }
}

// Output writes one text artifact per category into a directory. Each Write
// creates (or truncates) logs_<category>_<date>.txt and writes every outcome
// block of the batch to it.
type Output struct {
	mu        sync.Mutex
	dir       string
	date      time.Time
	bufSize   int
	artifacts map[model.Category]string
}

// New creates a file output rooted at dir, creating it if needed. date stamps
// the artifact names.
func New(dir string, date time.Time, opts ...Option) (*Output, error) {
	o := &Output{
		dir:       dir,
		date:      date,
		bufSize:   defaultBufSize,
		artifacts: make(map[model.Category]string),
	}
	for _, opt := range opts {
		opt(o)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("file output: mkdir %s: %w", dir, err)
	}
	return o, nil
}

// Path returns the artifact path for category.
func (o *Output) Path(category model.Category) string {
	name := fmt.Sprintf("logs_%s_%s.txt", category, o.date.Format(DateLayout))
	return filepath.Join(o.dir, name)
}

// Write renders batch into its category artifact.
func (o *Output) Write(_ context.Context, batch model.Batch) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	path := o.Path(batch.Category)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("file output: open %s: %w", path, err)
	}
	w := bufio.NewWriterSize(f, o.bufSize)
	if err := output.WriteBatch(w, batch); err != nil {
		f.Close()
		return fmt.Errorf("file output: write %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("file output: flush %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("file output: close %s: %w", path, err)
	}
	o.artifacts[batch.Category] = path
	return nil
}

// Artifacts returns the paths written so far, in category order.
func (o *Output) Artifacts() []string {
	o.mu.Lock()
	defer o.mu.Unlock()

	cats := make([]model.Category, 0, len(o.artifacts))
	for c := range o.artifacts {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })

	paths := make([]string, len(cats))
	for i, c := range cats {
		paths[i] = o.artifacts[c]
	}
	return paths
}

// Close is a no-op; every Write closes its file.
func (o *Output) Close() error { return nil }

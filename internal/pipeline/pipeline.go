package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hejijunhao/fwdigest/internal/connector"
	"github.com/hejijunhao/fwdigest/internal/decode"
	"github.com/hejijunhao/fwdigest/internal/metrics"
	"github.com/hejijunhao/fwdigest/internal/model"
	"github.com/hejijunhao/fwdigest/internal/output"
)

// Decoder turns a page of raw entries into records.
type Decoder interface {
	Page(category model.Category, entries []model.RawEntry) decode.Result
}

// BatchOption configures RunBatch.
type BatchOption func(*batchConfig)

type batchConfig struct {
	metrics *metrics.Metrics
}

// WithBatchMetrics records fetch and decode counters on m.
func WithBatchMetrics(m *metrics.Metrics) BatchOption {
	return func(c *batchConfig) { c.metrics = m }
}

// RunBatch fetches category from every connector concurrently and decodes each
// page. It always returns exactly one outcome per connector, in the order the
// connectors were given, regardless of how many fetches fail. A failed fetch
// never cancels the others.
func RunBatch(ctx context.Context, conns []connector.Connector, dec Decoder, category model.Category, window model.TimeWindow, insertOnly bool, opts ...BatchOption) []model.Outcome {
	var cfg batchConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	outcomes := make([]model.Outcome, len(conns))
	var wg sync.WaitGroup
	for i, conn := range conns {
		wg.Add(1)
		go func(i int, conn connector.Connector) {
			defer wg.Done()
			outcomes[i] = fetchOne(ctx, conn, dec, category, window, insertOnly, cfg)
		}(i, conn)
	}
	wg.Wait()
	return outcomes
}

func fetchOne(ctx context.Context, conn connector.Connector, dec Decoder, category model.Category, window model.TimeWindow, insertOnly bool, cfg batchConfig) (out model.Outcome) {
	name := conn.Name()
	out = model.Outcome{Appliance: name, Category: category}

	// Recover connector panics into a failure outcome.
	defer func() {
		if r := recover(); r != nil {
			out = model.Outcome{Appliance: name, Category: category, Err: fmt.Errorf("connector panic: %v", r)}
		}
	}()

	start := time.Now()
	res := conn.FetchPage(ctx, category, window, insertOnly)
	if cfg.metrics != nil {
		cfg.metrics.ObserveFetch(name, category.String(), res.OK(), time.Since(start))
	}
	if !res.OK() {
		slog.Error("fetch failed", "appliance", name, "category", category.String(), "error", res.Err)
		out.Err = res.Err
		return out
	}

	decoded := dec.Page(category, res.Page.Content)
	for _, err := range decoded.Dropped {
		slog.Warn("dropped malformed log line", "appliance", name, "category", category.String(), "error", err)
	}
	out.Records = decoded.Records
	out.Received = len(res.Page.Content)
	out.Dropped = len(decoded.Dropped)
	out.Skipped = decoded.Skipped

	if cfg.metrics != nil {
		cfg.metrics.ObserveDecode(name, category.String(), len(out.Records), out.Dropped, out.Skipped)
	}
	slog.Info("gathered logs", "appliance", name, "category", category.String(),
		"records", len(out.Records), "dropped", out.Dropped, "skipped", out.Skipped)
	return out
}

// Pipeline runs every category batch against a fixed set of appliances and
// writes each batch to an output.
type Pipeline struct {
	conns      []connector.Connector
	decoder    Decoder
	output     output.Output
	categories []model.Category
	insertOnly bool
	metrics    *metrics.Metrics
	now        func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithCategories restricts and orders the categories to run. Default: Threat, Event.
func WithCategories(cats ...model.Category) Option {
	return func(p *Pipeline) { p.categories = cats }
}

// WithInsertOnly asks appliances to pre-filter event logs to inserts.
func WithInsertOnly(v bool) Option {
	return func(p *Pipeline) { p.insertOnly = v }
}

// WithMetrics records run metrics on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New creates a Pipeline from the given components.
func New(conns []connector.Connector, dec Decoder, out output.Output, opts ...Option) *Pipeline {
	p := &Pipeline{
		conns:      conns,
		decoder:    dec,
		output:     out,
		categories: model.Categories,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run pulls the last delta of logs. The window is computed once so every
// category and appliance covers the same interval. Categories run one after
// another; the next batch starts only when the previous one has fully joined
// and been written. Failed appliances never stop the run; output errors are
// collected and returned after all categories ran.
func (p *Pipeline) Run(ctx context.Context, delta time.Duration) (model.Report, error) {
	started := p.now()
	report := model.Report{
		RunID:   uuid.NewString(),
		Started: started,
		Window:  model.NewTimeWindow(delta, started),
	}

	var opts []BatchOption
	if p.metrics != nil {
		opts = append(opts, WithBatchMetrics(p.metrics))
	}

	var errs []error
	for _, cat := range p.categories {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		slog.Info("gathering logs", "category", cat.String(), "appliances", len(p.conns), "run_id", report.RunID)

		batch := model.Batch{
			RunID:    report.RunID,
			Category: cat,
			Window:   report.Window,
			Outcomes: RunBatch(ctx, p.conns, p.decoder, cat, report.Window, p.insertOnly, opts...),
		}
		report.Batches = append(report.Batches, batch)

		if err := p.output.Write(ctx, batch); err != nil {
			errs = append(errs, fmt.Errorf("pipeline output %s: %w", cat, err))
		}
	}

	if p.metrics != nil {
		p.metrics.MarkRun(p.now())
	}
	return report, errors.Join(errs...)
}

// Close shuts down the output.
func (p *Pipeline) Close() error {
	return p.output.Close()
}

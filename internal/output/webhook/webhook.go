package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hejijunhao/fwdigest/internal/model"
	"github.com/hejijunhao/fwdigest/internal/output"
)

const (
	defaultTimeout    = 10 * time.Second
	defaultMaxRetries = 3
	defaultBackoff    = time.Second
)

// Option configures a webhook Output.
type Option func(*Output)

// WithHeaders sets custom HTTP headers sent with every POST.
func WithHeaders(h map[string]string) Option {
	return func(o *Output) { o.headers = h }
}

// WithTimeout sets the HTTP client timeout. Default: 10s.
func WithTimeout(d time.Duration) Option {
	return func(o *Output) { o.client.Timeout = d }
}

// WithRetries sets how many times a 5xx response is retried. Default: 3.
func WithRetries(n int) Option {
	return func(o *Output) { o.maxRetries = n }
}

// WithBackoff sets the first retry delay; each retry doubles it. Default: 1s.
func WithBackoff(d time.Duration) Option {
	return func(o *Output) { o.backoff = d }
}

// Payload is the JSON document POSTed for each batch.
type Payload struct {
	RunID    string               `json:"run_id"`
	Category model.Category       `json:"category"`
	From     string               `json:"from"`
	To       string               `json:"to"`
	Failed   int                  `json:"failed"`
	Outcomes []output.OutcomeView `json:"outcomes"`
}

// NewPayload builds the document for batch.
func NewPayload(batch model.Batch) Payload {
	p := Payload{
		RunID:    batch.RunID,
		Category: batch.Category,
		From:     batch.Window.FromString(),
		To:       batch.Window.ToString(),
		Failed:   batch.Failed(),
		Outcomes: make([]output.OutcomeView, len(batch.Outcomes)),
	}
	for i, o := range batch.Outcomes {
		p.Outcomes[i] = output.View(o)
	}
	return p
}

// Output POSTs each batch to an HTTP endpoint as one JSON document.
// Retries on 5xx with exponential backoff.
type Output struct {
	client     *http.Client
	url        string
	headers    map[string]string
	maxRetries int
	backoff    time.Duration
}

// New creates a webhook output targeting the given URL.
func New(url string, opts ...Option) *Output {
	o := &Output{
		client:     &http.Client{Timeout: defaultTimeout},
		url:        url,
		maxRetries: defaultMaxRetries,
		backoff:    defaultBackoff,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Write sends batch and waits for the endpoint to accept it.
func (o *Output) Write(ctx context.Context, batch model.Batch) error {
	body, err := json.Marshal(NewPayload(batch))
	if err != nil {
		return fmt.Errorf("webhook: marshal: %w", err)
	}
	return o.postWithRetry(ctx, body)
}

// Close is a no-op; Write is synchronous.
func (o *Output) Close() error {
	return nil
}

// postWithRetry sends the body via HTTP POST with retry on 5xx.
func (o *Output) postWithRetry(ctx context.Context, body []byte) error {
	var lastErr error
	for attempt := 0; attempt <= o.maxRetries; attempt++ {
		if attempt > 0 {
			t := time.NewTimer(o.backoff << (attempt - 1))
			select {
			case <-ctx.Done():
				t.Stop()
				return fmt.Errorf("webhook: %w", ctx.Err())
			case <-t.C:
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("webhook: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range o.headers {
			req.Header.Set(k, v)
		}

		resp, err := o.client.Do(req)
		if err != nil {
			return fmt.Errorf("webhook: %w", err)
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}

		lastErr = fmt.Errorf("webhook: HTTP %d", resp.StatusCode)

		// Only retry on 5xx server errors.
		if resp.StatusCode < 500 {
			return lastErr
		}
	}
	return lastErr
}

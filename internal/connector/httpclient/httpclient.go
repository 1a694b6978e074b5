package httpclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"
)

// Client is a JSON HTTP client for one appliance: token header auth, base URL,
// a pooled transport with connect and read timeouts, and optional retries.
type Client struct {
	baseURL    string
	token      string
	authHeader string
	retries    int

	connectTimeout time.Duration
	readTimeout    time.Duration
	insecure       bool

	transport  *http.Transport
	httpClient *http.Client
}

// APIError represents a non-2xx HTTP response.
type APIError struct {
	StatusCode int
	Body       string // first 512 bytes
	retryAfter string // internal: Retry-After header value for 429s
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// Option configures Client behavior.
type Option func(*Client)

// WithAuthHeader sets the header carrying the token. Default: X-API-Token.
func WithAuthHeader(name string) Option {
	return func(c *Client) { c.authHeader = name }
}

// WithConnectTimeout bounds TCP connect plus TLS handshake. Default: 5s.
func WithConnectTimeout(d time.Duration) Option {
	return func(c *Client) { c.connectTimeout = d }
}

// WithReadTimeout bounds the wait for each socket read, including the wait
// for response headers. Default: 60s. 0 disables it.
func WithReadTimeout(d time.Duration) Option {
	return func(c *Client) { c.readTimeout = d }
}

// WithInsecureSkipVerify disables TLS certificate verification.
func WithInsecureSkipVerify(skip bool) Option {
	return func(c *Client) { c.insecure = skip }
}

// WithRetries sets how many times 429 and 5xx responses are retried. Default: 0.
// Negative values are treated as 0.
func WithRetries(n int) Option {
	return func(c *Client) { c.retries = max(n, 0) }
}

// New creates a Client for baseURL that authenticates with token.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:        baseURL,
		token:          token,
		authHeader:     "X-API-Token",
		connectTimeout: 5 * time.Second,
		readTimeout:    60 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}

	dialer := &net.Dialer{Timeout: c.connectTimeout, KeepAlive: 30 * time.Second}
	c.transport = &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			return &readDeadlineConn{Conn: conn, timeout: c.readTimeout}, nil
		},
		TLSClientConfig:       &tls.Config{InsecureSkipVerify: c.insecure}, //nolint:gosec // opt-in per endpoint
		TLSHandshakeTimeout:   c.connectTimeout,
		ResponseHeaderTimeout: c.readTimeout,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       90 * time.Second,
	}
	c.httpClient = &http.Client{Transport: c.transport}
	return c
}

// Insecure reports whether certificate verification is disabled.
func (c *Client) Insecure() bool { return c.insecure }

// Close releases idle pooled connections.
func (c *Client) Close() error {
	c.transport.CloseIdleConnections()
	return nil
}

// PostJSON sends body as JSON to path and unmarshals the JSON response into
// dest. It returns the final HTTP status code (0 if no response arrived).
// Non-2xx responses return *APIError. 429 (honouring Retry-After) and 5xx are
// retried with exponential backoff (1s, 2s, 4s, ...) up to the configured
// retry count.
func (c *Client) PostJSON(ctx context.Context, path string, body, dest any) (int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("encode request: %w", err)
	}
	fullURL := c.baseURL + path

	var lastErr *APIError
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			wait := backoffDelay(attempt, lastErr)
			t := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				t.Stop()
				return lastErr.StatusCode, ctx.Err()
			case <-t.C:
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, bytes.NewReader(payload))
		if err != nil {
			return 0, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set(c.authHeader, c.token)

		resp, respBody, err := c.do(req)
		if err != nil {
			return 0, err
		}
		status := resp.StatusCode

		if status >= 200 && status < 300 {
			if err := json.Unmarshal(respBody, dest); err != nil {
				return status, fmt.Errorf("decode response: %w", err)
			}
			return status, nil
		}

		bodyStr := string(respBody)
		if len(bodyStr) > 512 {
			bodyStr = bodyStr[:512]
		}
		apiErr := &APIError{StatusCode: status, Body: bodyStr}

		if status == http.StatusTooManyRequests {
			apiErr.retryAfter = resp.Header.Get("Retry-After")
			lastErr = apiErr
			continue
		}
		if status >= 500 {
			lastErr = apiErr
			continue
		}
		return status, apiErr
	}
	if lastErr == nil {
		return 0, fmt.Errorf("post %s: no attempt made", path)
	}
	return lastErr.StatusCode, lastErr
}

// do sends req and reads the whole body. The body is always closed so the
// connection returns to the pool.
func (c *Client) do(req *http.Request) (*http.Response, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read response: %w", err)
	}
	return resp, body, nil
}

// backoffDelay returns the wait duration before a retry attempt.
func backoffDelay(attempt int, lastErr *APIError) time.Duration {
	if lastErr != nil && lastErr.StatusCode == 429 && lastErr.retryAfter != "" {
		if secs, err := strconv.Atoi(lastErr.retryAfter); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return time.Duration(1<<(attempt-1)) * time.Second
}

// readDeadlineConn arms a fresh read deadline before every Read, so a stalled
// response fails after timeout of silence regardless of its total length.
type readDeadlineConn struct {
	net.Conn
	timeout time.Duration
}

func (c *readDeadlineConn) Read(b []byte) (int, error) {
	if c.timeout > 0 {
		if err := c.Conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
			return 0, err
		}
	}
	return c.Conn.Read(b)
}

package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestPostJSON_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"fw01","version":1}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	defer c.Close()
	var dest struct {
		Name    string `json:"name"`
		Version int    `json:"version"`
	}
	status, err := c.PostJSON(context.Background(), "/info", map[string]string{}, &dest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != 200 {
		t.Fatalf("expected status 200, got %d", status)
	}
	if dest.Name != "fw01" || dest.Version != 1 {
		t.Fatalf("unexpected result: %+v", dest)
	}
}

func TestPostJSON_Headers(t *testing.T) {
	var gotToken, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-API-Token")
		gotType = r.Header.Get("Content-Type")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "secret-token-123")
	defer c.Close()
	if _, err := c.PostJSON(context.Background(), "/", nil, &struct{}{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotToken != "secret-token-123" {
		t.Fatalf("expected token header 'secret-token-123', got %q", gotToken)
	}
	if gotType != "application/json" {
		t.Fatalf("expected JSON content type, got %q", gotType)
	}
}

func TestPostJSON_CustomAuthHeader(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("X-Auth")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "k", WithAuthHeader("X-Auth"))
	defer c.Close()
	if _, err := c.PostJSON(context.Background(), "/", nil, &struct{}{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "k" {
		t.Fatalf("expected X-Auth 'k', got %q", got)
	}
}

func TestPostJSON_RequestBody(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("bad body: %v", err)
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	defer c.Close()
	body := map[string]string{"from": "2026-10-13 00:00:00", "to": "2026-10-14 00:00:00"}
	if _, err := c.PostJSON(context.Background(), "/logs", body, &struct{}{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["from"] != body["from"] || got["to"] != body["to"] {
		t.Fatalf("unexpected body: %v", got)
	}
}

func TestPostJSON_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(401)
		w.Write([]byte(`{"error":"bad token"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	defer c.Close()
	status, err := c.PostJSON(context.Background(), "/bad", nil, &struct{}{})
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != 401 || status != 401 {
		t.Fatalf("expected status 401, got %d / %d", apiErr.StatusCode, status)
	}
	if apiErr.Body != `{"error":"bad token"}` {
		t.Fatalf("unexpected body: %q", apiErr.Body)
	}
}

func TestPostJSON_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>login</html>`))
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	defer c.Close()
	_, err := c.PostJSON(context.Background(), "/", nil, &struct{}{})
	if err == nil || !strings.Contains(err.Error(), "decode response") {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestPostJSON_NoRetryByDefault(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(503)
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	defer c.Close()
	_, err := c.PostJSON(context.Background(), "/", nil, &struct{}{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 503 {
		t.Fatalf("expected 503 APIError, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected 1 call, got %d", calls.Load())
	}
}

func TestPostJSON_RetryOn5xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(503)
			w.Write([]byte(`service unavailable`))
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "tok", WithRetries(1))
	defer c.Close()
	var dest struct {
		OK bool `json:"ok"`
	}
	if _, err := c.PostJSON(context.Background(), "/", nil, &dest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dest.OK {
		t.Fatal("expected ok=true")
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 calls, got %d", calls.Load())
	}
}

func TestPostJSON_NegativeRetriesMeansOneAttempt(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(502)
	}))
	defer srv.Close()

	c := New(srv.URL, "tok", WithRetries(-3))
	defer c.Close()
	status, err := c.PostJSON(context.Background(), "/", nil, &struct{}{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 502 || status != 502 {
		t.Fatalf("expected 502 APIError, got %d %v", status, err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected 1 call, got %d", calls.Load())
	}
}

func TestPostJSON_MaxRetriesExceeded(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(429)
		w.Write([]byte(`rate limited`))
	}))
	defer srv.Close()

	c := New(srv.URL, "tok", WithRetries(3))
	defer c.Close()
	_, err := c.PostJSON(context.Background(), "/", nil, &struct{}{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != 429 {
		t.Fatalf("expected status 429, got %d", apiErr.StatusCode)
	}
	// 1 initial + 3 retries = 4 total calls
	if calls.Load() != 4 {
		t.Fatalf("expected 4 calls, got %d", calls.Load())
	}
}

func TestPostJSON_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(429)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	// Cancel immediately so the request itself fails.
	cancel()

	c := New(srv.URL, "tok", WithRetries(2))
	defer c.Close()
	_, err := c.PostJSON(ctx, "/", nil, &struct{}{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPostJSON_ReadTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-time.After(5 * time.Second):
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()
	defer close(release)

	c := New(srv.URL, "tok", WithReadTimeout(100*time.Millisecond))
	defer c.Close()
	start := time.Now()
	_, err := c.PostJSON(context.Background(), "/", nil, &struct{}{})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if time.Since(start) > 3*time.Second {
		t.Fatalf("read timeout not applied, took %v", time.Since(start))
	}
}

func TestPostJSON_ConnectFailure(t *testing.T) {
	// Grab a free port and close it so the dial is refused.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	c := New("http://"+addr, "tok", WithConnectTimeout(500*time.Millisecond))
	defer c.Close()
	status, err := c.PostJSON(context.Background(), "/", nil, &struct{}{})
	if err == nil {
		t.Fatal("expected connect error")
	}
	if status != 0 {
		t.Fatalf("expected status 0 without a response, got %d", status)
	}
}

func TestTLS_VerificationIsOptIn(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	strict := New(srv.URL, "tok")
	defer strict.Close()
	if _, err := strict.PostJSON(context.Background(), "/", nil, &struct{}{}); err == nil {
		t.Fatal("expected certificate error with verification enabled")
	}

	lax := New(srv.URL, "tok", WithInsecureSkipVerify(true))
	defer lax.Close()
	if !lax.Insecure() {
		t.Fatal("expected Insecure() to report true")
	}
	if _, err := lax.PostJSON(context.Background(), "/", nil, &struct{}{}); err != nil {
		t.Fatalf("unexpected error with verification disabled: %v", err)
	}
}

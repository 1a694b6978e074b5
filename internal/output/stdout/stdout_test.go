package stdout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/hejijunhao/fwdigest/internal/model"
)

func testBatch() model.Batch {
	return model.Batch{
		Category: model.Threat,
		Outcomes: []model.Outcome{
			{
				Appliance: "fw01",
				Category:  model.Threat,
				Received:  1,
				Records: []model.Record{model.ThreatRecord{
					Time:     "2026-10-14 05:00:00",
					Severity: model.SeverityHigh,
					Threat:   "Malware",
				}},
			},
			{Appliance: "fw02", Category: model.Threat, Err: errors.New("connection refused")},
		},
	}
}

// captureStdout redirects os.Stdout to capture output.
func captureStdout(fn func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String()
}

func TestOutputCompactJSON(t *testing.T) {
	result := captureStdout(func() {
		out := New(false)
		out.Write(context.Background(), testBatch())
	})

	// One line per outcome (NDJSON).
	lines := strings.Split(strings.TrimSpace(result), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	var m map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &m); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if m["appliance"] != "fw01" || m["category"] != "threat" || m["ok"] != true {
		t.Fatalf("unexpected first line: %v", m)
	}
	recs, _ := m["records"].([]any)
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %v", m["records"])
	}
	if rec := recs[0].(map[string]any); rec["severity"] != "HIGH" {
		t.Fatalf("expected severity name, got %v", rec["severity"])
	}
}

func TestOutputFailureLine(t *testing.T) {
	var buf bytes.Buffer
	out := NewWriter(&buf, false)
	if err := out.Write(context.Background(), testBatch()); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var m map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &m); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if m["ok"] != false || m["error"] != "connection refused" {
		t.Fatalf("unexpected failure line: %v", m)
	}
}

func TestOutputPrettyJSON(t *testing.T) {
	var buf bytes.Buffer
	NewWriter(&buf, true).Write(context.Background(), testBatch())

	if !strings.Contains(buf.String(), "  ") {
		t.Fatal("expected indented output for pretty mode")
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) < 3 {
		t.Fatalf("expected multi-line pretty output, got %d lines", len(lines))
	}
}

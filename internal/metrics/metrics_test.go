package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveFetch(t *testing.T) {
	m := New()
	m.ObserveFetch("fw01", "threat", true, 200*time.Millisecond)
	m.ObserveFetch("fw01", "threat", false, time.Second)
	m.ObserveFetch("fw01", "threat", false, time.Second)

	if got := testutil.ToFloat64(m.FetchesTotal.WithLabelValues("fw01", "threat", "success")); got != 1 {
		t.Fatalf("expected 1 success, got %v", got)
	}
	if got := testutil.ToFloat64(m.FetchesTotal.WithLabelValues("fw01", "threat", "failure")); got != 2 {
		t.Fatalf("expected 2 failures, got %v", got)
	}
}

func TestObserveDecode(t *testing.T) {
	m := New()
	m.ObserveDecode("fw02", "events", 5, 1, 3)

	if got := testutil.ToFloat64(m.RecordsDecoded.WithLabelValues("fw02", "events")); got != 5 {
		t.Fatalf("decoded: got %v", got)
	}
	if got := testutil.ToFloat64(m.RecordsDropped.WithLabelValues("fw02", "events")); got != 1 {
		t.Fatalf("dropped: got %v", got)
	}
	if got := testutil.ToFloat64(m.RecordsSkipped.WithLabelValues("fw02", "events")); got != 3 {
		t.Fatalf("skipped: got %v", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.ObserveDecode("fw01", "threat", 2, 0, 0)
	m.MarkRun(time.Unix(1700000000, 0))

	path := filepath.Join(t.TempDir(), "fwdigest.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	for _, want := range []string{
		`fwdigest_records_decoded_total{appliance="fw01",category="threat"} 2`,
		"fwdigest_last_run_timestamp_seconds 1.7e+09",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in textfile, got:\n%s", want, out)
		}
	}
}

func TestNew_IndependentRegistries(t *testing.T) {
	// Two instances must not panic on duplicate registration.
	New()
	New()
}

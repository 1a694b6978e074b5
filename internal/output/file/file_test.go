package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hejijunhao/fwdigest/internal/model"
)

var runDate = time.Date(2026, 10, 14, 6, 0, 0, 0, time.UTC)

func testBatch(cat model.Category) model.Batch {
	var rec model.Record = model.ThreatRecord{Time: "2026-10-14 05:59:00", Zone: "+00:00", Threat: "Malware"}
	if cat == model.Event {
		rec = model.EventRecord{Time: "2026-10-14 05:59:00", Zone: "+00:00", LayerName: "Firewall"}
	}
	return model.Batch{
		Category: cat,
		Outcomes: []model.Outcome{
			{Appliance: "fw01", Category: cat, Records: []model.Record{rec}},
			{Appliance: "fw02", Category: cat, Err: errors.New("connect timeout")},
		},
	}
}

func TestPathIsDated(t *testing.T) {
	dir := t.TempDir()
	out, err := New(dir, runDate)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if got, want := out.Path(model.Threat), filepath.Join(dir, "logs_threat_14Oct2026.txt"); got != want {
		t.Errorf("threat path = %q, want %q", got, want)
	}
	if got, want := out.Path(model.Event), filepath.Join(dir, "logs_events_14Oct2026.txt"); got != want {
		t.Errorf("event path = %q, want %q", got, want)
	}
}

func TestWriteProducesBlocks(t *testing.T) {
	out, err := New(t.TempDir(), runDate)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if err := out.Write(context.Background(), testBatch(model.Threat)); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	data, err := os.ReadFile(out.Path(model.Threat))
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	text := string(data)
	if !strings.HasPrefix(text, "fw01 - Threat logs:\n@ [2026-10-14 05:59:00") {
		t.Errorf("unexpected artifact start:\n%s", text)
	}
	if !strings.Contains(text, "fw02 - FAILED:\nconnect timeout\n") {
		t.Errorf("expected failure block:\n%s", text)
	}
}

func TestWriteTruncatesPreviousRun(t *testing.T) {
	out, err := New(t.TempDir(), runDate)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	out.Write(context.Background(), testBatch(model.Threat))
	out.Write(context.Background(), model.Batch{Category: model.Threat})

	info, err := os.Stat(out.Path(model.Threat))
	if err != nil {
		t.Fatalf("stat error: %v", err)
	}
	if info.Size() != 0 {
		t.Errorf("expected empty artifact after empty batch, got %d bytes", info.Size())
	}
}

func TestArtifactsInCategoryOrder(t *testing.T) {
	out, err := New(filepath.Join(t.TempDir(), "nested", "logs"), runDate)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if len(out.Artifacts()) != 0 {
		t.Fatal("expected no artifacts before any write")
	}
	out.Write(context.Background(), testBatch(model.Event))
	out.Write(context.Background(), testBatch(model.Threat))

	got := out.Artifacts()
	if len(got) != 2 {
		t.Fatalf("got %d artifacts, want 2", len(got))
	}
	if got[0] != out.Path(model.Threat) || got[1] != out.Path(model.Event) {
		t.Errorf("unexpected order: %v", got)
	}
}

func TestConcurrentWritesSafe(t *testing.T) {
	out, err := New(t.TempDir(), runDate)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out.Write(context.Background(), testBatch(model.Categories[i%2]))
		}(i)
	}
	wg.Wait()

	data, _ := os.ReadFile(out.Path(model.Event))
	if n := strings.Count(string(data), "fw01 - Events logs:"); n != 1 {
		t.Errorf("expected exactly one fw01 block, got %d", n)
	}
}

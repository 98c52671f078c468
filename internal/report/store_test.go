package report_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"rolloutlog/internal/profilelog"
	"rolloutlog/internal/report"
)

func writeEvents(t *testing.T, root string) {
	t.Helper()
	mgr := profilelog.NewManager()
	t.Cleanup(func() { mgr.CloseAll() }) //nolint:errcheck

	path := profilelog.BuildLogPath(root, 1, 0)
	if err := mgr.Log(path, "turn_start", profilelog.WithStep(1), profilelog.WithWorker(0), profilelog.WithDuration(0.5)); err != nil {
		t.Fatalf("Log: %v", err)
	}
	if err := mgr.Log(path, "turn_start", profilelog.WithStep(1), profilelog.WithWorker(0), profilelog.WithDuration(1.5)); err != nil {
		t.Fatalf("Log: %v", err)
	}
	if err := mgr.Log(path, "engine_call", profilelog.WithStep(1), profilelog.WithWorker(0)); err != nil {
		t.Fatalf("Log: %v", err)
	}

	other := profilelog.BuildLogPath(root, 2, 1)
	if err := mgr.Log(other, "turn_start", profilelog.WithStep(2), profilelog.WithWorker(1), profilelog.WithDuration(2.0)); err != nil {
		t.Fatalf("Log: %v", err)
	}
	if err := mgr.CloseAll(); err != nil {
		t.Fatalf("CloseAll: %v", err)
	}
}

func TestImportDirAndSummarize(t *testing.T) {
	root := t.TempDir()
	writeEvents(t, root)

	store, err := report.Open(filepath.Join(t.TempDir(), "report.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { store.Close() }) //nolint:errcheck

	ctx := context.Background()
	result, err := store.ImportDir(ctx, root)
	if err != nil {
		t.Fatalf("ImportDir returned error: %v", err)
	}
	if result.BatchID == "" {
		t.Fatal("expected batch id")
	}
	if result.Files != 2 || result.Events != 4 {
		t.Fatalf("unexpected import result: %+v", result)
	}

	summaries, err := store.Summarize(ctx, -1)
	if err != nil {
		t.Fatalf("Summarize returned error: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 event names, got %d", len(summaries))
	}
	if summaries[0].Event != "engine_call" || summaries[1].Event != "turn_start" {
		t.Fatalf("unexpected order: %+v", summaries)
	}

	turn := summaries[1]
	if turn.Count != 3 || turn.Timed != 3 {
		t.Fatalf("unexpected turn_start counts: %+v", turn)
	}
	if turn.TotalSec != 4.0 || turn.MaxSec != 2.0 {
		t.Fatalf("unexpected turn_start aggregates: %+v", turn)
	}

	engine := summaries[0]
	if engine.Count != 1 || engine.Timed != 0 || engine.TotalSec != 0 {
		t.Fatalf("unexpected engine_call aggregates: %+v", engine)
	}
}

func TestSummarizeSingleStep(t *testing.T) {
	root := t.TempDir()
	writeEvents(t, root)

	store, err := report.Open(filepath.Join(t.TempDir(), "report.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { store.Close() }) //nolint:errcheck

	ctx := context.Background()
	if _, err := store.ImportDir(ctx, root); err != nil {
		t.Fatalf("ImportDir returned error: %v", err)
	}

	summaries, err := store.Summarize(ctx, 2)
	if err != nil {
		t.Fatalf("Summarize returned error: %v", err)
	}
	if len(summaries) != 1 || summaries[0].Event != "turn_start" || summaries[0].Count != 1 {
		t.Fatalf("unexpected step-2 summary: %+v", summaries)
	}

	steps, err := store.Steps(ctx)
	if err != nil {
		t.Fatalf("Steps returned error: %v", err)
	}
	if len(steps) != 2 || steps[0] != 1 || steps[1] != 2 {
		t.Fatalf("unexpected steps: %v", steps)
	}
}

func TestImportDirMissingRoot(t *testing.T) {
	store, err := report.Open(filepath.Join(t.TempDir(), "report.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { store.Close() }) //nolint:errcheck

	if _, err := store.ImportDir(context.Background(), filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatal("expected error for missing root")
	}
	_ = os.Remove(store.Path())
}

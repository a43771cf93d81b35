package journal_test

import (
	"context"
	"errors"
	"testing"

	"stashbatch/internal/journal"
	"stashbatch/internal/runner"
	"stashbatch/internal/testsupport"
)

func TestRecordRunLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenJournal(t, cfg)
	ctx := context.Background()

	const runID = "2b1f3c44-9c1d-4f5a-b0aa-0123456789ab"
	if err := store.RunStarted(ctx, runID, 3, 2); err != nil {
		t.Fatalf("RunStarted: %v", err)
	}
	if err := store.ActionCompleted(ctx, runID, runner.ActionCreate, "button@0", nil); err != nil {
		t.Fatalf("ActionCompleted: %v", err)
	}
	if err := store.ActionCompleted(ctx, runID, runner.ActionLink, "button@1", errors.New("element vanished")); err != nil {
		t.Fatalf("ActionCompleted: %v", err)
	}
	if err := store.TagResolved(ctx, runID, "blonde", "42", nil); err != nil {
		t.Fatalf("TagResolved: %v", err)
	}
	if err := store.TagResolved(ctx, runID, "tattoo", "", errors.New("catalog down")); err != nil {
		t.Fatalf("TagResolved: %v", err)
	}
	if err := store.RunFinished(ctx, runID, 5, 5, runner.StatusCompleted); err != nil {
		t.Fatalf("RunFinished: %v", err)
	}

	runs, err := store.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	run := runs[0]
	if run.ID != runID || run.Creates != 3 || run.Links != 2 {
		t.Fatalf("unexpected run: %+v", run)
	}
	if run.Status != string(runner.StatusCompleted) || run.Processed != 5 {
		t.Fatalf("run not finalized: %+v", run)
	}
	if !run.Finished() {
		t.Fatal("finished run must carry a finish time")
	}

	detail, err := store.GetRun(ctx, runID[:8])
	if err != nil {
		t.Fatalf("GetRun by prefix: %v", err)
	}
	if len(detail.Actions) != 2 {
		t.Fatalf("expected 2 actions, got %+v", detail.Actions)
	}
	if detail.Actions[1].Error != "element vanished" {
		t.Fatalf("action error not recorded: %+v", detail.Actions[1])
	}
	if len(detail.Resolutions) != 2 {
		t.Fatalf("expected 2 resolutions, got %+v", detail.Resolutions)
	}
	if detail.Resolutions[0].EntityID != "42" || detail.Resolutions[1].Error != "catalog down" {
		t.Fatalf("resolution outcomes off: %+v", detail.Resolutions)
	}
}

func TestGetRunNotFound(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenJournal(t, cfg)

	_, err := store.GetRun(context.Background(), "deadbeef")
	if !errors.Is(err, journal.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetRunAmbiguousPrefix(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenJournal(t, cfg)
	ctx := context.Background()

	first := "aa11aa11-0000-4000-8000-000000000001"
	second := "aa11bb22-0000-4000-8000-000000000002"
	if err := store.RunStarted(ctx, first, 1, 0); err != nil {
		t.Fatalf("RunStarted: %v", err)
	}
	if err := store.RunStarted(ctx, second, 1, 0); err != nil {
		t.Fatalf("RunStarted: %v", err)
	}

	// Shared prefix matches both runs and must not silently pick one.
	_, err := store.GetRun(ctx, "aa11")
	if !errors.Is(err, journal.ErrAmbiguousID) {
		t.Fatalf("expected ErrAmbiguousID, got %v", err)
	}

	// Longer, unique prefixes still resolve.
	detail, err := store.GetRun(ctx, "aa11bb")
	if err != nil {
		t.Fatalf("GetRun by unique prefix: %v", err)
	}
	if detail.Run.ID != second {
		t.Fatalf("resolved wrong run: %s", detail.Run.ID)
	}
}

func TestReopenKeepsHistory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first, err := journal.Open(cfg)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := first.RunStarted(context.Background(), "run-a", 1, 0); err != nil {
		t.Fatalf("RunStarted: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second := testsupport.MustOpenJournal(t, cfg)
	runs, err := second.ListRuns(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != "run-a" {
		t.Fatalf("history lost across reopen: %+v", runs)
	}
	if runs[0].Finished() {
		t.Fatal("unfinished run must not report finished")
	}
}

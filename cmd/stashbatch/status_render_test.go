package main

import (
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"stashbatch/internal/journal"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Catalog", statusError, "connection refused", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Catalog:", "[ERROR] connection refused")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Catalog", statusOK, "reachable", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}

func TestRunRows(t *testing.T) {
	started := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	runs := []journal.Run{
		{
			ID:         "deadbeef-0000-4000-8000-000000000000",
			StartedAt:  started,
			FinishedAt: started.Add(42 * time.Second),
			Processed:  5,
			Total:      5,
			Status:     "completed",
		},
		{
			ID:        "cafef00d-0000-4000-8000-000000000000",
			StartedAt: started,
			Status:    "running",
		},
	}

	rows := runRows(runs)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "deadbeef" {
		t.Fatalf("expected short id, got %q", rows[0][0])
	}
	if rows[0][3] != "5/5" || rows[0][4] != "42s" {
		t.Fatalf("unexpected completed row: %v", rows[0])
	}
	if rows[1][4] != "-" {
		t.Fatalf("expected placeholder duration for unfinished run, got %q", rows[1][4])
	}
}

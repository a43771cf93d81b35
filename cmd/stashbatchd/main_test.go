package main

import (
	"testing"

	"stashbatch/internal/logging"
	"stashbatch/internal/testsupport"
)

func TestBuildDaemonWiring(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenJournal(t, cfg)

	d, err := buildDaemon(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("buildDaemon: %v", err)
	}

	status := d.Status()
	if status.Running {
		t.Fatal("daemon must not be running before Start")
	}
	if status.JournalPath != cfg.JournalPath() {
		t.Fatalf("journal path %q, expected %q", status.JournalPath, cfg.JournalPath())
	}
	if status.LockFilePath != cfg.LockPath() {
		t.Fatalf("lock path %q, expected %q", status.LockFilePath, cfg.LockPath())
	}
}

func TestBuildDaemonRejectsNilConfig(t *testing.T) {
	if _, err := buildDaemon(nil, nil, logging.NewNop()); err == nil {
		t.Fatal("expected error for nil config")
	}
}

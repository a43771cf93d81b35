package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"stashbatch/internal/config"
)

func TestLoadDefaultsUsesEnvAPIKeyAndExpandsPaths(t *testing.T) {
	t.Setenv("STASHBATCH_API_KEY", "env-key")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "share", "stashbatch")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.Catalog.URL != "http://localhost:9999" {
		t.Fatalf("unexpected catalog url: %q", cfg.Catalog.URL)
	}
	if cfg.Catalog.APIKey != "env-key" {
		t.Fatalf("expected API key from env, got %q", cfg.Catalog.APIKey)
	}
	if cfg.Tagger.Position != config.PositionBottom {
		t.Fatalf("unexpected tagger position: %q", cfg.Tagger.Position)
	}
	if !cfg.Runner.RequireConfirmation {
		t.Fatal("expected confirmation required by default")
	}
	if cfg.Runner.ClickDelayMS != 500 || cfg.Runner.SettleDelayMS != 2000 {
		t.Fatalf("unexpected runner delays: %d/%d", cfg.Runner.ClickDelayMS, cfg.Runner.SettleDelayMS)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StateDir, cfg.Paths.LogDir} {
		if _, err := os.Stat(dir); err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
	}
	if cfg.JournalPath() != filepath.Join(wantState, "journal.db") {
		t.Fatalf("unexpected journal path: %q", cfg.JournalPath())
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[catalog]
url = "http://catalog.local:9999/"
api_key = "file-key"

[tagger]
position = "TOP"
auto_create = false

[runner]
click_delay_ms = 100
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved == "" {
		t.Fatalf("expected config file to be found, exists=%v resolved=%q", exists, resolved)
	}
	if cfg.Catalog.URL != "http://catalog.local:9999" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Catalog.URL)
	}
	if cfg.Catalog.APIKey != "file-key" {
		t.Fatalf("unexpected api key: %q", cfg.Catalog.APIKey)
	}
	if cfg.Tagger.Position != config.PositionTop {
		t.Fatalf("expected position normalized to top, got %q", cfg.Tagger.Position)
	}
	if cfg.Tagger.AutoCreate {
		t.Fatal("expected auto_create disabled by file")
	}
	if cfg.Runner.ClickDelayMS != 100 {
		t.Fatalf("unexpected click delay: %d", cfg.Runner.ClickDelayMS)
	}
	if cfg.Runner.SettleDelayMS != 2000 {
		t.Fatalf("expected settle delay default preserved, got %d", cfg.Runner.SettleDelayMS)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"empty catalog url", func(c *config.Config) { c.Catalog.URL = "" }, "catalog.url"},
		{"malformed catalog url", func(c *config.Config) { c.Catalog.URL = "not a url" }, "catalog.url"},
		{"bad position", func(c *config.Config) { c.Tagger.Position = "left" }, "tagger.position"},
		{"negative click delay", func(c *config.Config) { c.Runner.ClickDelayMS = -1 }, "click_delay_ms"},
		{"bad log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"bad log level", func(c *config.Config) { c.Logging.Level = "loud" }, "logging.level"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Tagger.Position = config.PositionBottom
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := config.WriteSample(path); err != nil {
		t.Fatalf("WriteSample failed: %v", err)
	}
	if err := config.WriteSample(path); err == nil {
		t.Fatal("expected error when config already exists")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[catalog]") {
		t.Fatal("sample config missing catalog section")
	}
}

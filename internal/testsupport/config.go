package testsupport

import (
	"path/filepath"
	"testing"

	"stashbatch/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Bundle.OutputDir = filepath.Join(base, "bundles")
	cfgVal.Runner.ClickDelayMS = 0
	cfgVal.Runner.SettleDelayMS = 0
	cfgVal.Runner.RequireConfirmation = false
	cfgVal.Watch.DebounceMS = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithConfirmation enables the pre-run confirmation prompts on the test config.
func WithConfirmation() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Runner.RequireConfirmation = true
		b.cfg.Tagger.RequireConfirmation = true
	}
}

// WithCatalogURL overrides the catalog endpoint on the test config.
func WithCatalogURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Catalog.URL = url
	}
}

// WithBundleSources sets the bundle source directories on the test config.
func WithBundleSources(dirs ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Bundle.SourceDirs = dirs
	}
}

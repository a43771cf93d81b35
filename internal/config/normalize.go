package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeCatalog()
	c.normalizeBridge()
	c.normalizeTagger()
	if err := c.normalizeBundle(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.StateDir, err = ExpandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = ExpandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeCatalog() {
	c.Catalog.URL = strings.TrimRight(strings.TrimSpace(c.Catalog.URL), "/")
	if key := os.Getenv("STASHBATCH_API_KEY"); key != "" && strings.TrimSpace(c.Catalog.APIKey) == "" {
		c.Catalog.APIKey = key
	}
	c.Catalog.APIKey = strings.TrimSpace(c.Catalog.APIKey)
	if c.Catalog.RequestTimeout <= 0 {
		c.Catalog.RequestTimeout = defaultCatalogTimeout
	}
	if c.Catalog.MaxRetries < 0 {
		c.Catalog.MaxRetries = 0
	}
	if c.Catalog.RetryBackoff <= 0 {
		c.Catalog.RetryBackoff = defaultCatalogBackoff
	}
}

func (c *Config) normalizeBridge() {
	c.Bridge.URL = strings.TrimRight(strings.TrimSpace(c.Bridge.URL), "/")
	c.Bridge.Token = strings.TrimSpace(c.Bridge.Token)
	if c.Bridge.RequestTimeout <= 0 {
		c.Bridge.RequestTimeout = defaultBridgeTimeout
	}
}

func (c *Config) normalizeTagger() {
	c.Tagger.Position = strings.ToLower(strings.TrimSpace(c.Tagger.Position))
	if c.Tagger.Position == "" {
		c.Tagger.Position = defaultTaggerPosition
	}
}

func (c *Config) normalizeBundle() error {
	var err error
	if strings.TrimSpace(c.Bundle.OutputDir) == "" {
		c.Bundle.OutputDir = defaultBundleOutputDir
	}
	if c.Bundle.OutputDir, err = ExpandPath(c.Bundle.OutputDir); err != nil {
		return fmt.Errorf("bundle.output_dir: %w", err)
	}
	expanded := make([]string, 0, len(c.Bundle.SourceDirs))
	for _, dir := range c.Bundle.SourceDirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		path, err := ExpandPath(dir)
		if err != nil {
			return fmt.Errorf("bundle.source_dirs: %w", err)
		}
		expanded = append(expanded, path)
	}
	c.Bundle.SourceDirs = expanded
	c.Bundle.BaseURL = strings.TrimRight(strings.TrimSpace(c.Bundle.BaseURL), "/")
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

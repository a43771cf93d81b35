package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateBridge(); err != nil {
		return err
	}
	if err := c.validateRunner(); err != nil {
		return err
	}
	if err := c.validateTagger(); err != nil {
		return err
	}
	if err := c.validateWatch(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateCatalog() error {
	if c.Catalog.URL == "" {
		return errors.New("catalog.url must be set (create a config with 'stashbatch config init')")
	}
	parsed, err := url.Parse(c.Catalog.URL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("catalog.url %q is not a valid URL", c.Catalog.URL)
	}
	return nil
}

func (c *Config) validateBridge() error {
	if c.Bridge.URL == "" {
		return nil
	}
	parsed, err := url.Parse(c.Bridge.URL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("bridge.url %q is not a valid URL", c.Bridge.URL)
	}
	return nil
}

func (c *Config) validateRunner() error {
	if c.Runner.ClickDelayMS < 0 {
		return errors.New("runner.click_delay_ms must not be negative")
	}
	if c.Runner.SettleDelayMS < 0 {
		return errors.New("runner.settle_delay_ms must not be negative")
	}
	return nil
}

func (c *Config) validateTagger() error {
	switch c.Tagger.Position {
	case PositionTop, PositionBottom:
		return nil
	default:
		return fmt.Errorf("tagger.position must be %q or %q, got %q", PositionTop, PositionBottom, c.Tagger.Position)
	}
}

func (c *Config) validateWatch() error {
	if c.Watch.DebounceMS < 0 {
		return errors.New("watch.debounce_ms must not be negative")
	}
	if c.Watch.EventRetryInterval <= 0 {
		return errors.New("watch.event_retry_interval must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q is not recognized", c.Logging.Level)
	}
}

package config

const (
	defaultStateDir           = "~/.local/share/stashbatch"
	defaultLogDir             = "~/.local/share/stashbatch/logs"
	defaultCatalogURL         = "http://localhost:9999"
	defaultCatalogTimeout     = 30
	defaultCatalogMaxRetries  = 5
	defaultCatalogBackoff     = 2
	defaultBridgeURL          = "http://127.0.0.1:7865"
	defaultBridgeTimeout      = 10
	defaultClickDelayMS       = 500
	defaultSettleDelayMS      = 2000
	defaultTaggerPosition     = "bottom"
	defaultDebounceMS         = 250
	defaultEventRetryInterval = 5
	defaultBundleOutputDir    = "~/.local/share/stashbatch/bundles"
	defaultNotifyTimeout      = 10
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// PositionTop and PositionBottom are the recognized control insertion positions.
const (
	PositionTop    = "top"
	PositionBottom = "bottom"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Catalog: Catalog{
			URL:            defaultCatalogURL,
			RequestTimeout: defaultCatalogTimeout,
			MaxRetries:     defaultCatalogMaxRetries,
			RetryBackoff:   defaultCatalogBackoff,
		},
		Bridge: Bridge{
			URL:            defaultBridgeURL,
			RequestTimeout: defaultBridgeTimeout,
		},
		Runner: Runner{
			ClickDelayMS:        defaultClickDelayMS,
			SettleDelayMS:       defaultSettleDelayMS,
			RequireConfirmation: true,
		},
		Tagger: Tagger{
			AutoCreate:          true,
			RequireConfirmation: true,
			Position:            defaultTaggerPosition,
		},
		Watch: Watch{
			DebounceMS:         defaultDebounceMS,
			EventRetryInterval: defaultEventRetryInterval,
		},
		Bundle: Bundle{
			OutputDir: defaultBundleOutputDir,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Runs:           true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

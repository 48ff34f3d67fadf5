package sitecheck

import (
	"log/slog"

	"github.com/hazyhaar/sitecheck/sitecheck/internal/browser"
	"github.com/hazyhaar/sitecheck/sitecheck/internal/config"
)

// Config is the top-level sitecheck configuration. Re-exported from internal.
type Config = config.Config

// BrowserConfig controls the automation provider.
type BrowserConfig = config.BrowserConfig

// SinkConfig defines a result output backend.
type SinkConfig = config.SinkConfig

// HistoryConfig enables the SQLite run history.
type HistoryConfig = config.HistoryConfig

// DefaultConfig returns a configuration with every default applied.
func DefaultConfig() *Config {
	return config.Default()
}

// LoadConfigFile reads a YAML configuration file.
func LoadConfigFile(path string) (*Config, error) {
	return config.LoadFile(path)
}

// LoadDotEnv loads a .env file into the environment when it exists.
func LoadDotEnv(path string) error {
	return config.LoadDotEnv(path)
}

// NewProvider builds the browser provider named by cfg.Provider.
func NewProvider(cfg BrowserConfig, logger *slog.Logger) (Provider, error) {
	return browser.New(cfg.Provider, browser.Config{
		Headless:          cfg.IsHeadless(),
		RemoteURL:         cfg.Remote,
		Bin:               cfg.Bin,
		Stealth:           cfg.Stealth,
		ResourceBlocking:  cfg.ResourceBlocking,
		NavigationTimeout: cfg.NavigationTimeout,
		IdleWindow:        cfg.IdleWindow,
		Logger:            logger,
	})
}

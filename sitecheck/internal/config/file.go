// Package config handles sitecheck configuration from a YAML file, a .env
// file and SITECHECK_* environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/sitecheck/httpsafe"
)

// Config is the top-level sitecheck configuration.
type Config struct {
	Target    string        `yaml:"target"` // path or URL; default index.html next to the binary
	Serve     bool          `yaml:"serve"`  // serve the target directory over HTTP instead of file://
	Strict    bool          `yaml:"strict"` // error diagnostics fail the run
	Checklist string        `yaml:"checklist"`
	Browser   BrowserConfig `yaml:"browser"`
	Sinks     []SinkConfig  `yaml:"sinks"`
	History   HistoryConfig `yaml:"history"`
	LogLevel  string        `yaml:"log_level"`
}

// BrowserConfig controls the automation provider.
type BrowserConfig struct {
	Provider          string        `yaml:"provider"` // rod | chromedp
	Headless          *bool         `yaml:"headless"`
	Remote            string        `yaml:"remote"` // rod control URL of an external Chrome
	Bin               string        `yaml:"bin"`
	Stealth           bool          `yaml:"stealth"`
	ResourceBlocking  []string      `yaml:"resource_blocking"`
	NavigationTimeout time.Duration `yaml:"navigation_timeout"`
	IdleWindow        time.Duration `yaml:"idle_window"`
}

// IsHeadless reports the effective headless flag (default true).
func (b BrowserConfig) IsHeadless() bool {
	return b.Headless == nil || *b.Headless
}

// SinkConfig defines a result output backend.
type SinkConfig struct {
	Type string `yaml:"type"` // stdout | jsonl | webhook
	URL  string `yaml:"url"`  // for webhook
	Path string `yaml:"path"` // for jsonl; empty = stdout

	// PublicOnly rejects webhook URLs naming localhost or a literal
	// loopback, link-local or private IP.
	PublicOnly bool `yaml:"public_only"`
}

// HistoryConfig enables the SQLite run history.
type HistoryConfig struct {
	Path string `yaml:"path"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated fields.
func (c *Config) Validate() error {
	switch c.Browser.Provider {
	case "rod", "chromedp":
	default:
		return fmt.Errorf("config: unknown browser provider %q", c.Browser.Provider)
	}
	for i, s := range c.Sinks {
		switch s.Type {
		case "stdout", "jsonl":
		case "webhook":
			if s.URL == "" {
				return fmt.Errorf("config: sink %d: webhook requires url", i)
			}
			check := httpsafe.CheckURL
			if s.PublicOnly {
				check = httpsafe.CheckPublicURL
			}
			if err := check(s.URL); err != nil {
				return fmt.Errorf("config: sink %d: %w", i, err)
			}
		default:
			return fmt.Errorf("config: sink %d: unknown type %q", i, s.Type)
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Target == "" {
		c.Target = "index.html"
	}
	if c.Browser.Provider == "" {
		c.Browser.Provider = "rod"
	}
	if c.Browser.NavigationTimeout <= 0 {
		c.Browser.NavigationTimeout = 30 * time.Second
	}
	if c.Browser.IdleWindow <= 0 {
		c.Browser.IdleWindow = 500 * time.Millisecond
	}
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
}

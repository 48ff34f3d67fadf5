package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads path into the process environment when the file
// exists. Variables already set are not overridden.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays SITECHECK_* variables on c.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if getenv == nil {
		getenv = os.Getenv
	}

	if v := getenv("SITECHECK_TARGET"); v != "" {
		c.Target = v
	}
	if v := getenv("SITECHECK_CHECKLIST"); v != "" {
		c.Checklist = v
	}
	if v := getenv("SITECHECK_PROVIDER"); v != "" {
		c.Browser.Provider = v
	}
	if v := getenv("SITECHECK_REMOTE"); v != "" {
		c.Browser.Remote = v
	}
	if v := getenv("SITECHECK_BROWSER_BIN"); v != "" {
		c.Browser.Bin = v
	}
	if v := getenv("SITECHECK_HISTORY"); v != "" {
		c.History.Path = v
	}
	if v := getenv("SITECHECK_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := getenv("SITECHECK_WEBHOOK"); v != "" {
		c.Sinks = append(c.Sinks, SinkConfig{Type: "webhook", URL: v})
	}

	for _, b := range []struct {
		key string
		dst *bool
	}{
		{"SITECHECK_SERVE", &c.Serve},
		{"SITECHECK_STRICT", &c.Strict},
		{"SITECHECK_STEALTH", &c.Browser.Stealth},
	} {
		v := getenv(b.key)
		if v == "" {
			continue
		}
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", b.key, err)
		}
		*b.dst = parsed
	}

	if v := getenv("SITECHECK_HEADLESS"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: SITECHECK_HEADLESS: %w", err)
		}
		c.Browser.Headless = &parsed
	}
	if v := getenv("SITECHECK_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: SITECHECK_TIMEOUT: %w", err)
		}
		c.Browser.NavigationTimeout = d
	}

	return c.Validate()
}

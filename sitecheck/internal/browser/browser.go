// Package browser binds sitecheck to a browser automation library. A
// Provider opens isolated Sessions; a Session navigates one page, reports
// console messages and uncaught exceptions, and answers selector queries.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Provider opens browsing sessions.
type Provider interface {
	Open(ctx context.Context) (Session, error)
}

// Session is one isolated browser page. Handlers must be registered
// before Navigate; they may be called from any goroutine until Close
// returns.
type Session interface {
	OnConsole(fn func(level, text string))
	OnException(fn func(message string))
	Navigate(ctx context.Context, url string) error
	Has(ctx context.Context, selector string) (bool, error)
	Count(ctx context.Context, selector string) (int, error)
	Close() error
}

// Config configures a provider.
type Config struct {
	// Headless runs Chrome without a window.
	Headless bool

	// RemoteURL is the control URL of an external Chrome instance (rod only).
	// Empty = launch a local Chrome.
	RemoteURL string

	// Bin overrides the Chrome executable path.
	Bin string

	// Stealth creates pages through go-rod/stealth (rod only).
	Stealth bool

	// ResourceBlocking lists resource types to block (images, fonts, media, stylesheets).
	ResourceBlocking []string

	// NavigationTimeout bounds Navigate. Default: 30s.
	NavigationTimeout time.Duration

	// IdleWindow is the quiet period with no network request that counts as
	// "network idle". Default: 500ms.
	IdleWindow time.Duration

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.NavigationTimeout <= 0 {
		c.NavigationTimeout = 30 * time.Second
	}
	if c.IdleWindow <= 0 {
		c.IdleWindow = 500 * time.Millisecond
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// New returns the provider registered under name.
func New(name string, cfg Config) (Provider, error) {
	switch name {
	case "rod", "":
		return NewRod(cfg), nil
	case "chromedp":
		return NewChromedp(cfg), nil
	}
	return nil, fmt.Errorf("browser: unknown provider %q", name)
}

// NavigationError reports that the target document could not be loaded.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigate %s: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }

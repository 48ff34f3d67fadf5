// Package observer collects console and page diagnostics emitted by the
// browser while a run is in progress. Provider callbacks may fire from any
// goroutine; the Log serialises them.
package observer

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/hazyhaar/sitecheck/sitecheck/finding"
)

// Log is an append-only diagnostic log shared between provider callbacks
// and the verifier.
type Log struct {
	mu     sync.Mutex
	diags  []finding.Diagnostic
	logger *slog.Logger
}

// New creates an empty Log.
func New(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger}
}

// Console records a console message. Only "error" and "warning" levels
// are kept; every other level is ignored.
func (l *Log) Console(level, text string) {
	kind, ok := classify(level)
	if !ok {
		return
	}
	l.append(finding.Diagnostic{Kind: kind, Source: finding.SourceConsole, Message: text})
}

// Exception records an uncaught page exception as an error.
func (l *Log) Exception(message string) {
	l.append(finding.Diagnostic{Kind: finding.KindError, Source: finding.SourcePage, Message: message})
}

// Snapshot returns a copy of the diagnostics recorded so far.
func (l *Log) Snapshot() []finding.Diagnostic {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.diags) == 0 {
		return nil
	}
	out := make([]finding.Diagnostic, len(l.diags))
	copy(out, l.diags)
	return out
}

// Len returns the number of recorded diagnostics.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.diags)
}

func (l *Log) append(d finding.Diagnostic) {
	l.mu.Lock()
	l.diags = append(l.diags, d)
	l.mu.Unlock()

	l.logger.Debug("observer: diagnostic",
		"kind", d.Kind, "source", d.Source, "message", d.Message)
}

// classify maps a console level to a diagnostic kind. CDP reports
// console.warn as "warning"; "warn" is accepted for providers that
// shorten it.
func classify(level string) (finding.Kind, bool) {
	switch strings.ToLower(level) {
	case "error":
		return finding.KindError, true
	case "warning", "warn":
		return finding.KindWarning, true
	}
	return "", false
}

// Package sitecheck loads a landing page in a headless browser and checks
// that its structural sections are present. Console errors, console
// warnings and uncaught page exceptions are collected along the way and
// reported as informational diagnostics.
//
// A Verifier runs one pass over a page and returns a finalized
// finding.RunResult. Run wires a Verifier to the configuration, the
// terminal report, the result sinks and the run history.
package sitecheck

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hazyhaar/sitecheck/idgen"
	"github.com/hazyhaar/sitecheck/sitecheck/finding"
	"github.com/hazyhaar/sitecheck/sitecheck/internal/browser"
	"github.com/hazyhaar/sitecheck/sitecheck/internal/checklist"
	"github.com/hazyhaar/sitecheck/sitecheck/internal/observer"
)

// Provider opens browser sessions. Re-exported from internal.
type Provider = browser.Provider

// Session is one isolated browser page.
type Session = browser.Session

// NavigationError reports that the target could not be loaded. No check
// runs after it.
type NavigationError = browser.NavigationError

// Checklist is the ordered set of checks a Verifier applies.
type Checklist = checklist.List

// DefaultChecklist returns the landing-page checklist.
func DefaultChecklist() Checklist { return checklist.Default() }

// LoadChecklist reads a YAML checklist file.
func LoadChecklist(path string) (Checklist, error) { return checklist.Load(path) }

// Progress receives events while a run is in flight, so results can be
// printed as they are evaluated.
type Progress interface {
	Loaded(url string)
	Finding(f finding.Finding)
	Counts(images, navLinks int)
}

type noProgress struct{}

func (noProgress) Loaded(string)           {}
func (noProgress) Finding(finding.Finding) {}
func (noProgress) Counts(int, int)         {}

// Verifier applies a checklist to one page per call.
type Verifier struct {
	provider Provider
	list     Checklist
	progress Progress
	logger   *slog.Logger
	newID    idgen.Generator
	now      func() time.Time
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithChecklist replaces the default checklist.
func WithChecklist(l Checklist) Option {
	return func(v *Verifier) { v.list = l }
}

// WithProgress sets the receiver of live progress events.
func WithProgress(p Progress) Option {
	return func(v *Verifier) {
		if p != nil {
			v.progress = p
		}
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(v *Verifier) {
		if l != nil {
			v.logger = l
		}
	}
}

// WithIDGenerator sets the run ID generator. Default: UUIDv7.
func WithIDGenerator(g idgen.Generator) Option {
	return func(v *Verifier) {
		if g != nil {
			v.newID = g
		}
	}
}

// WithClock sets the time source used for run timestamps.
func WithClock(now func() time.Time) Option {
	return func(v *Verifier) {
		if now != nil {
			v.now = now
		}
	}
}

// NewVerifier creates a Verifier driving provider.
func NewVerifier(provider Provider, opts ...Option) *Verifier {
	v := &Verifier{
		provider: provider,
		list:     checklist.Default(),
		progress: noProgress{},
		logger:   slog.Default(),
		newID:    idgen.Default,
		now:      time.Now,
	}
	for _, o := range opts {
		o(v)
	}
	return v
}

// Verify loads target and evaluates the checklist against it.
//
// The returned result holds one Finding per check, in checklist order,
// followed by the ad-hoc checks. It is finalized after the browser session
// has been released, so every diagnostic emitted during the run is
// included. A navigation failure returns a *NavigationError and a nil
// result. Cancelling ctx aborts the run with ctx's error.
func (v *Verifier) Verify(ctx context.Context, target string) (*finding.RunResult, error) {
	res := &finding.RunResult{
		ID:        v.newID(),
		Target:    target,
		StartedAt: v.now().UnixMilli(),
	}
	log := v.logger.With("run_id", res.ID)

	sess, err := v.provider.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("sitecheck: open browser: %w", err)
	}
	released := false
	release := func() {
		if released {
			return
		}
		released = true
		if err := sess.Close(); err != nil {
			log.Warn("sitecheck: release session", "error", err)
		}
	}
	defer release()

	diags := observer.New(log)
	sess.OnConsole(diags.Console)
	sess.OnException(diags.Exception)

	log.Info("sitecheck: navigating", "url", target)
	if err := sess.Navigate(ctx, target); err != nil {
		var navErr *NavigationError
		if !errors.As(err, &navErr) {
			err = &NavigationError{URL: target, Err: err}
		}
		return nil, err
	}
	v.progress.Loaded(target)

	if err := v.evaluate(ctx, sess, res, v.list.Checks, log); err != nil {
		return nil, err
	}

	images := v.count(ctx, sess, v.list.Images, log)
	navLinks := v.count(ctx, sess, v.list.NavLinks, log)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("sitecheck: verify: %w", err)
	}
	if err := res.SetCounts(images, navLinks); err != nil {
		return nil, fmt.Errorf("sitecheck: record counts: %w", err)
	}
	v.progress.Counts(images, navLinks)

	if err := v.evaluate(ctx, sess, res, v.list.AdHoc, log); err != nil {
		return nil, err
	}

	release()
	res.Finalize(diags.Snapshot(), v.now().UnixMilli())

	log.Info("sitecheck: run complete",
		"findings", len(res.Findings),
		"failed", len(res.Failures()),
		"errors", len(res.Errors()),
		"warnings", len(res.Warnings()),
		"duration_ms", res.DurationMs)
	return res, nil
}

// evaluate runs checks in order. A lookup error counts as "not found";
// only cancellation stops the loop.
func (v *Verifier) evaluate(ctx context.Context, sess Session, res *finding.RunResult, checks []finding.Check, log *slog.Logger) error {
	for _, c := range checks {
		found, err := sess.Has(ctx, c.Selector)
		if cerr := ctx.Err(); cerr != nil {
			return fmt.Errorf("sitecheck: verify: %w", cerr)
		}
		if err != nil {
			log.Warn("sitecheck: lookup failed", "selector", c.Selector, "error", err)
			found = false
		}

		f := finding.Missing(c)
		if found {
			f = finding.Pass(c)
		}
		if err := res.Add(f); err != nil {
			return fmt.Errorf("sitecheck: record finding: %w", err)
		}
		v.progress.Finding(f)
	}
	return nil
}

func (v *Verifier) count(ctx context.Context, sess Session, selector string, log *slog.Logger) int {
	n, err := sess.Count(ctx, selector)
	if err != nil {
		log.Warn("sitecheck: count failed", "selector", selector, "error", err)
		return 0
	}
	return n
}

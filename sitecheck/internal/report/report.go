// Package report prints the human-readable result of a run: one line per
// finding as it is evaluated, the element counts, and a closing summary.
package report

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/hazyhaar/sitecheck/sitecheck/finding"
)

var (
	success = lipgloss.Color("#22C55E") // green
	danger  = lipgloss.Color("#EF4444") // red
	warning = lipgloss.Color("#F59E0B") // amber-yellow
	dim     = lipgloss.Color("#6B7280") // muted gray
)

const (
	markPass = "✓"
	markFail = "✗"
	markWarn = "⚠"
)

// Reporter writes the report. Styling is resolved against the output
// writer, so anything that is not a terminal receives plain text.
type Reporter struct {
	mu     sync.Mutex
	w      io.Writer
	errW   io.Writer
	strict bool

	pass lipgloss.Style
	fail lipgloss.Style
	warn lipgloss.Style
	head lipgloss.Style
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithErrorWriter sets where fatal failures are printed. Default: os.Stderr.
func WithErrorWriter(w io.Writer) Option {
	return func(r *Reporter) { r.errW = w }
}

// WithStrict counts error diagnostics as failures in the summary.
func WithStrict(strict bool) Option {
	return func(r *Reporter) { r.strict = strict }
}

// New creates a Reporter writing to w (os.Stdout if nil).
func New(w io.Writer, opts ...Option) *Reporter {
	if w == nil {
		w = os.Stdout
	}
	rd := lipgloss.NewRenderer(w)
	r := &Reporter{
		w:    w,
		errW: os.Stderr,
		pass: rd.NewStyle().Foreground(success),
		fail: rd.NewStyle().Foreground(danger),
		warn: rd.NewStyle().Foreground(warning),
		head: rd.NewStyle().Foreground(dim),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Loaded prints the navigation success line.
func (r *Reporter) Loaded(string) {
	r.line(r.pass.Render(markPass) + " Page loaded successfully")
}

// Finding prints one finding as soon as it has been evaluated.
func (r *Reporter) Finding(f finding.Finding) {
	if f.Passed {
		r.line(fmt.Sprintf("%s %s found", r.pass.Render(markPass), f.Label))
		return
	}
	r.line(fmt.Sprintf("%s %s", r.fail.Render(markFail), f.Detail))
}

// Counts prints the informational element counts.
func (r *Reporter) Counts(images, navLinks int) {
	r.line(fmt.Sprintf("%s Found %d images", r.pass.Render(markPass), images))
	r.line(fmt.Sprintf("%s Found %d navigation links", r.pass.Render(markPass), navLinks))
}

// Fatal prints a failure that aborted the run before any check.
func (r *Reporter) Fatal(err error) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.errW, "Test failed: %v\n", err)
	return 1
}

// Summary prints the results block and returns the exit code.
func (r *Reporter) Summary(res *finding.RunResult) int {
	var problems []string
	for _, f := range res.Failures() {
		problems = append(problems, f.Detail)
	}
	errs := res.Errors()
	if r.strict {
		for _, d := range errs {
			problems = append(problems, d.Message)
		}
	}

	r.line("")
	r.line(r.head.Render("--- Test Results ---"))
	if len(problems) == 0 {
		r.line(r.pass.Render(markPass) + " All tests passed! No errors detected.")
	} else {
		r.line(fmt.Sprintf("%s %d error(s) found:", r.fail.Render(markFail), len(problems)))
		for _, p := range problems {
			r.line("  - " + p)
		}
	}

	if !r.strict && len(errs) > 0 {
		r.line(fmt.Sprintf("%s %d page error(s) (informational):", r.warn.Render(markWarn), len(errs)))
		for _, d := range errs {
			r.line("  - " + d.Message)
		}
	}

	if warns := res.Warnings(); len(warns) > 0 {
		r.line(fmt.Sprintf("%s %d warning(s):", r.warn.Render(markWarn), len(warns)))
		for _, d := range warns {
			r.line("  - " + d.Message)
		}
	}

	return finding.ExitCode(res, r.strict)
}

func (r *Reporter) line(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.w, s)
}

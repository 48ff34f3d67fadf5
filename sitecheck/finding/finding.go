// Package finding defines the structured types produced by a sitecheck run.
// These are the public API contract: reporters, sinks and the history store
// all consume a RunResult built from the types in this package.
package finding

// Kind classifies a Diagnostic.
type Kind string

const (
	KindError   Kind = "error"
	KindWarning Kind = "warning"
)

// Source tells where a Diagnostic came from.
type Source string

const (
	SourceConsole Source = "console" // console.error / console.warn
	SourcePage    Source = "page"    // uncaught exception
)

// Diagnostic is one console or page signal observed during a run.
// Diagnostics are informational: they never change a Finding.
type Diagnostic struct {
	Kind    Kind   `json:"kind"`
	Source  Source `json:"source"`
	Message string `json:"message"`
}

// Check is one structural assertion: a CSS selector and the name used in
// the report.
type Check struct {
	Selector string `json:"selector" yaml:"selector"`
	Label    string `json:"label" yaml:"label"`
}

// Finding is the outcome of evaluating one Check.
type Finding struct {
	Label    string `json:"label"`
	Selector string `json:"selector"`
	Passed   bool   `json:"passed"`
	Detail   string `json:"detail,omitempty"` // set when Passed is false
}

// Pass returns the passing Finding for c.
func Pass(c Check) Finding {
	return Finding{Label: c.Label, Selector: c.Selector, Passed: true}
}

// Missing returns the failing Finding for c. The detail is always
// "<label> not found".
func Missing(c Check) Finding {
	return Finding{
		Label:    c.Label,
		Selector: c.Selector,
		Passed:   false,
		Detail:   c.Label + " not found",
	}
}

package finding

import "errors"

// ErrFrozen is returned when a finalized RunResult is mutated.
var ErrFrozen = errors.New("finding: run result is finalized")

// RunResult aggregates one verification run. It is built by the verifier,
// finalized once the session is released, and then only read.
type RunResult struct {
	ID          string       `json:"id"` // UUIDv7
	Target      string       `json:"target"`
	StartedAt   int64        `json:"started_at"`  // epoch milliseconds
	DurationMs  int64        `json:"duration_ms"` // set by Finalize
	Findings    []Finding    `json:"findings"`
	Diagnostics []Diagnostic `json:"diagnostics"`
	Images      int          `json:"images"`
	NavLinks    int          `json:"nav_links"`

	frozen bool
}

// Add appends a Finding in evaluation order.
func (r *RunResult) Add(f Finding) error {
	if r.frozen {
		return ErrFrozen
	}
	r.Findings = append(r.Findings, f)
	return nil
}

// SetCounts records the informational element counts.
func (r *RunResult) SetCounts(images, navLinks int) error {
	if r.frozen {
		return ErrFrozen
	}
	r.Images = images
	r.NavLinks = navLinks
	return nil
}

// Finalize attaches the drained diagnostics and freezes the result.
func (r *RunResult) Finalize(diags []Diagnostic, endMs int64) {
	if r.frozen {
		return
	}
	r.Diagnostics = diags
	if endMs >= r.StartedAt {
		r.DurationMs = endMs - r.StartedAt
	}
	r.frozen = true
}

// Finalized reports whether Finalize has been called.
func (r *RunResult) Finalized() bool { return r.frozen }

// Failures returns the failing Findings in evaluation order.
func (r *RunResult) Failures() []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if !f.Passed {
			out = append(out, f)
		}
	}
	return out
}

// Errors returns the Error-kind Diagnostics.
func (r *RunResult) Errors() []Diagnostic { return r.byKind(KindError) }

// Warnings returns the Warning-kind Diagnostics.
func (r *RunResult) Warnings() []Diagnostic { return r.byKind(KindWarning) }

func (r *RunResult) byKind(k Kind) []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Diagnostics {
		if d.Kind == k {
			out = append(out, d)
		}
	}
	return out
}

// Passed reports whether every Finding passed. Diagnostics are not
// considered.
func (r *RunResult) Passed() bool {
	for _, f := range r.Findings {
		if !f.Passed {
			return false
		}
	}
	return true
}

// ExitCode derives the process exit status: 0 when every Finding passed,
// 1 otherwise. In strict mode an Error-kind Diagnostic also yields 1.
// A nil result means the run never completed and always yields 1.
func ExitCode(r *RunResult, strict bool) int {
	if r == nil || !r.Passed() {
		return 1
	}
	if strict && len(r.Errors()) > 0 {
		return 1
	}
	return 0
}

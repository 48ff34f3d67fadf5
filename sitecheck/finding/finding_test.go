package finding

import (
	"errors"
	"testing"
)

func TestMissing_Detail(t *testing.T) {
	f := Missing(Check{Selector: ".hero", Label: "Hero section"})
	if f.Passed {
		t.Fatal("Missing: got Passed=true")
	}
	if f.Detail != "Hero section not found" {
		t.Errorf("Detail: got %q, want %q", f.Detail, "Hero section not found")
	}
}

func TestPass_NoDetail(t *testing.T) {
	f := Pass(Check{Selector: "footer", Label: "Footer"})
	if !f.Passed || f.Detail != "" {
		t.Errorf("Pass: got passed=%v detail=%q", f.Passed, f.Detail)
	}
}

func TestExitCode(t *testing.T) {
	pass := Pass(Check{Selector: ".nav", Label: "Navigation"})
	fail := Missing(Check{Selector: ".hero", Label: "Hero section"})
	pageErr := Diagnostic{Kind: KindError, Source: SourcePage, Message: "TypeError: x is undefined"}
	warn := Diagnostic{Kind: KindWarning, Source: SourceConsole, Message: "deprecated"}

	tests := []struct {
		name     string
		findings []Finding
		diags    []Diagnostic
		strict   bool
		want     int
	}{
		{"all pass", []Finding{pass, pass}, nil, false, 0},
		{"one failure", []Finding{pass, fail}, nil, false, 1},
		{"warning only", []Finding{pass}, []Diagnostic{warn}, false, 0},
		{"page error ignored", []Finding{pass}, []Diagnostic{pageErr}, false, 0},
		{"page error strict", []Finding{pass}, []Diagnostic{pageErr}, true, 1},
		{"warning strict", []Finding{pass}, []Diagnostic{warn}, true, 0},
		{"no findings", nil, nil, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &RunResult{}
			for _, f := range tt.findings {
				if err := r.Add(f); err != nil {
					t.Fatal(err)
				}
			}
			r.Finalize(tt.diags, 0)
			if got := ExitCode(r, tt.strict); got != tt.want {
				t.Errorf("ExitCode: got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestExitCode_NilResult(t *testing.T) {
	if got := ExitCode(nil, false); got != 1 {
		t.Errorf("ExitCode(nil): got %d, want 1", got)
	}
}

func TestFinalize_Freezes(t *testing.T) {
	r := &RunResult{StartedAt: 1000}
	r.Finalize([]Diagnostic{{Kind: KindWarning, Message: "w"}}, 1250)

	if !r.Finalized() {
		t.Fatal("expected finalized")
	}
	if r.DurationMs != 250 {
		t.Errorf("DurationMs: got %d, want 250", r.DurationMs)
	}
	if err := r.Add(Pass(Check{Label: "x"})); !errors.Is(err, ErrFrozen) {
		t.Errorf("Add after Finalize: got %v, want ErrFrozen", err)
	}
	if err := r.SetCounts(1, 2); !errors.Is(err, ErrFrozen) {
		t.Errorf("SetCounts after Finalize: got %v, want ErrFrozen", err)
	}

	// A second Finalize is a no-op.
	r.Finalize(nil, 5000)
	if len(r.Diagnostics) != 1 || r.DurationMs != 250 {
		t.Errorf("second Finalize mutated result: diags=%d duration=%d", len(r.Diagnostics), r.DurationMs)
	}
}

func TestFailuresAndKinds(t *testing.T) {
	r := &RunResult{}
	r.Add(Pass(Check{Selector: ".nav", Label: "Navigation"}))
	r.Add(Missing(Check{Selector: "#about", Label: "About section"}))
	r.Add(Missing(Check{Selector: "footer", Label: "Footer"}))
	r.Finalize([]Diagnostic{
		{Kind: KindError, Message: "a"},
		{Kind: KindWarning, Message: "b"},
		{Kind: KindError, Message: "c"},
	}, 0)

	fails := r.Failures()
	if len(fails) != 2 {
		t.Fatalf("Failures: got %d, want 2", len(fails))
	}
	if fails[0].Detail != "About section not found" || fails[1].Detail != "Footer not found" {
		t.Errorf("Failures order: got %q, %q", fails[0].Detail, fails[1].Detail)
	}
	if n := len(r.Errors()); n != 2 {
		t.Errorf("Errors: got %d, want 2", n)
	}
	if n := len(r.Warnings()); n != 1 {
		t.Errorf("Warnings: got %d, want 1", n)
	}
}

func TestUnmarshalResult_Frozen(t *testing.T) {
	r := &RunResult{ID: "run-1", Target: "file:///tmp/index.html", Images: 4, NavLinks: 6}
	r.Add(Missing(Check{Selector: ".hero", Label: "Hero section"}))
	r.Finalize(nil, 0)

	data, err := MarshalResult(r)
	if err != nil {
		t.Fatal(err)
	}
	got, err := UnmarshalResult(data)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != r.ID || got.Images != 4 || got.NavLinks != 6 {
		t.Errorf("decoded: got id=%q images=%d nav=%d", got.ID, got.Images, got.NavLinks)
	}
	if len(got.Findings) != 1 || got.Findings[0].Detail != "Hero section not found" {
		t.Errorf("decoded findings: %+v", got.Findings)
	}
	if !got.Finalized() {
		t.Error("decoded result should be finalized")
	}
}

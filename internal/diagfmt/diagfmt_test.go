package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"guestlint/internal/diag"
)

func sampleReports() []FileReport {
	return []FileReport{
		{
			Path: "src/handler.rs",
			Diagnostics: []diag.Diagnostic{
				{
					Line:      3,
					Column:    9,
					EndColumn: 17,
					Severity:  diag.SevError,
					RuleID:    "error_generic_unwrap",
					RuleName:  "Avoid unwrap",
					Category:  diag.CatError,
					Message:   "Avoid .unwrap() in handlers\n\nSuggested fix: use ?",
					Snippet:   `    val.unwrap();`,
				},
				{
					Line:     8,
					Column:   0,
					Severity: diag.SevWarning,
					RuleID:   "println_debug",
					RuleName: "Avoid println!",
					Category: diag.CatPerformance,
					Message:  "println! is invisible in the sandbox",
				},
			},
		},
	}
}

func TestPrettyOutput(t *testing.T) {
	var buf bytes.Buffer
	Pretty(&buf, sampleReports(), PrettyOpts{ShowSnippet: true})
	out := buf.String()

	if !strings.Contains(out, "src/handler.rs:3:10:") {
		t.Errorf("missing 1-based position header:\n%s", out)
	}
	if !strings.Contains(out, "[error_generic_unwrap]") {
		t.Errorf("missing rule id:\n%s", out)
	}
	// Only the headline of a multi-line message.
	if strings.Contains(out, "Suggested fix") {
		t.Errorf("pretty output must keep only the message headline:\n%s", out)
	}
	if !strings.Contains(out, "val.unwrap();") {
		t.Errorf("missing snippet:\n%s", out)
	}
	if !strings.Contains(out, "^~~~~~~") {
		t.Errorf("missing caret underline:\n%s", out)
	}
}

func TestPrettyWithoutSnippets(t *testing.T) {
	var buf bytes.Buffer
	Pretty(&buf, sampleReports(), PrettyOpts{})
	if strings.Contains(buf.String(), "val.unwrap();") {
		t.Errorf("snippet printed despite ShowSnippet=false:\n%s", buf.String())
	}
}

func TestShortOutput(t *testing.T) {
	var buf bytes.Buffer
	Short(&buf, sampleReports(), PrettyOpts{})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "src/handler.rs:3:10: ERROR:") {
		t.Errorf("unexpected short line: %q", lines[0])
	}
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, sampleReports(), JSONOpts{}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var out Output
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out.Diagnostics) != 2 {
		t.Fatalf("got %d diagnostics, want 2", len(out.Diagnostics))
	}
	first := out.Diagnostics[0]
	if first.Rule != "error_generic_unwrap" || first.Line != 3 || first.Column != 9 {
		t.Errorf("unexpected first diagnostic: %+v", first)
	}
	if first.Category != "error" {
		t.Errorf("category = %q, want error", first.Category)
	}
	if out.Summary.Total != 2 || out.Summary.Errors != 1 || out.Summary.Warnings != 1 {
		t.Errorf("unexpected summary: %+v", out.Summary)
	}
}

func TestJSONTruncation(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, sampleReports(), JSONOpts{Max: 1}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var out Output
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out.Diagnostics) != 1 || !out.Truncated {
		t.Errorf("truncation failed: %d diagnostics, truncated=%v", len(out.Diagnostics), out.Truncated)
	}
	// The summary still counts everything.
	if out.Summary.Total != 2 {
		t.Errorf("summary total = %d, want 2", out.Summary.Total)
	}
}

func TestGitHubAnnotations(t *testing.T) {
	var buf bytes.Buffer
	GitHub(&buf, sampleReports())
	out := buf.String()

	if !strings.Contains(out, "::error file=src/handler.rs,line=3,col=10,title=error_generic_unwrap::") {
		t.Errorf("missing error annotation:\n%s", out)
	}
	if !strings.Contains(out, "::warning ") {
		t.Errorf("missing warning annotation:\n%s", out)
	}
	// Multi-line message stays on one annotation line.
	if strings.Count(strings.TrimSpace(out), "\n") != 1 {
		t.Errorf("annotations must be one line each:\n%s", out)
	}
}

func TestGitHubEscaping(t *testing.T) {
	reports := []FileReport{{
		Path: "a.rs",
		Diagnostics: []diag.Diagnostic{{
			Line: 1, Severity: diag.SevError, RuleID: "x",
			Message: "50% of\nthe time",
		}},
	}}
	var buf bytes.Buffer
	GitHub(&buf, reports)
	out := buf.String()
	if !strings.Contains(out, "50%25 of") {
		t.Errorf("percent not escaped:\n%s", out)
	}
	if strings.Contains(out, "the time") {
		t.Errorf("newline must cut the message to its headline:\n%s", out)
	}
}

func TestSummaryRendering(t *testing.T) {
	var buf bytes.Buffer
	Summary(&buf, diag.Summary{Total: 3, Errors: 2, Warnings: 1}, false)
	out := buf.String()
	if !strings.Contains(out, "found 3 issue(s)") || !strings.Contains(out, "2 error(s)") {
		t.Errorf("unexpected summary: %q", out)
	}

	buf.Reset()
	Summary(&buf, diag.Summary{}, false)
	if !strings.Contains(buf.String(), "no issues found") {
		t.Errorf("unexpected empty summary: %q", buf.String())
	}
}

func TestHeadline(t *testing.T) {
	if got := headline("one\ntwo"); got != "one" {
		t.Errorf("headline = %q, want %q", got, "one")
	}
	if got := headline("single"); got != "single" {
		t.Errorf("headline = %q, want %q", got, "single")
	}
}

func TestUnderlineAlignment(t *testing.T) {
	got := underline("\tval.unwrap();", 5, 12, false)
	if !strings.HasPrefix(got, "\t") {
		t.Errorf("tab prefix must be preserved for alignment: %q", got)
	}
	if !strings.Contains(got, "^") {
		t.Errorf("missing caret: %q", got)
	}
}

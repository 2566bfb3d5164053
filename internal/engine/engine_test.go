package engine

import (
	"strings"
	"testing"

	"guestlint/internal/diag"
	"guestlint/internal/rules"
)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	catalog, err := rules.NewCatalog()
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	return New(catalog)
}

func hasID(diags []diag.Diagnostic, id string) bool {
	for _, d := range diags {
		if d.RuleID == id {
			return true
		}
	}
	return false
}

func ruleIDs(diags []diag.Diagnostic) []string {
	out := make([]string, 0, len(diags))
	for _, d := range diags {
		out = append(out, d.RuleID)
	}
	return out
}

func TestNonRustPathProducesNothing(t *testing.T) {
	e := newEngine(t)
	if diags := e.Analyze("notes.txt", []byte("value.unwrap()")); len(diags) != 0 {
		t.Fatalf("non-Rust path produced %v", ruleIDs(diags))
	}
	if diags := e.Analyze("lib.rs", []byte("value.unwrap()")); len(diags) == 0 {
		t.Fatalf(".rs path produced no diagnostics")
	}
}

func TestUnwrapRuleFires(t *testing.T) {
	e := newEngine(t)
	diags := e.Analyze("lib.rs", []byte(`let v = result.unwrap();`))
	if !hasID(diags, "error_generic_unwrap") {
		t.Fatalf("expected error_generic_unwrap, got %v", ruleIDs(diags))
	}
	for _, d := range diags {
		if d.RuleID != "error_generic_unwrap" {
			continue
		}
		if d.Line != 1 {
			t.Errorf("line = %d, want 1", d.Line)
		}
		want := strings.Index(`let v = result.unwrap();`, ".unwrap")
		if d.Column != want {
			t.Errorf("column = %d, want %d", d.Column, want)
		}
	}
}

func TestMatchInsideStringIsDiscarded(t *testing.T) {
	e := newEngine(t)
	diags := e.Analyze("lib.rs", []byte(`let msg = "please do not .unwrap() here";`))
	if hasID(diags, "error_generic_unwrap") {
		t.Fatalf("match inside a string literal must be discarded: %v", ruleIDs(diags))
	}
}

func TestCommentLinesAreSkipped(t *testing.T) {
	e := newEngine(t)
	src := strings.Join([]string{
		`// value.unwrap() in a line comment`,
		`/* value.unwrap() in a block comment */`,
		` * value.unwrap() in a doc continuation`,
	}, "\n")
	if diags := e.Analyze("lib.rs", []byte(src)); len(diags) != 0 {
		t.Fatalf("comment lines produced %v", ruleIDs(diags))
	}
}

func TestForbiddenConstructMessage(t *testing.T) {
	e := newEngine(t)
	diags := e.Analyze("lib.rs", []byte(`static mut COUNTER: u32 = 0;`))
	if !hasID(diags, "global_state_static_mut") {
		t.Fatalf("expected global_state_static_mut, got %v", ruleIDs(diags))
	}
	for _, d := range diags {
		if d.RuleID == "global_state_static_mut" {
			if d.Severity != diag.SevError {
				t.Errorf("severity = %v, want error", d.Severity)
			}
			if !strings.Contains(d.Message, "Alternative:") {
				t.Errorf("message must carry the alternative: %q", d.Message)
			}
		}
	}
}

func TestForbiddenAlternativePatternsEachReport(t *testing.T) {
	e := newEngine(t)
	// `use std::fs::File;` trips both std_fs spellings; each match gets
	// its own diagnostic.
	diags := e.Analyze("lib.rs", []byte(`use std::fs::File;`))
	count := 0
	for _, d := range diags {
		if d.RuleID == "std_fs" {
			count++
		}
	}
	if count != 2 {
		t.Fatalf("want one diagnostic per matching pattern, got %d: %v", count, ruleIDs(diags))
	}
}

func TestForbiddenCrateUse(t *testing.T) {
	e := newEngine(t)
	line := `use reqwest::Client;`
	diags := e.Analyze("lib.rs", []byte(line))
	if !hasID(diags, rules.CrateRuleID("reqwest")) {
		t.Fatalf("expected forbidden_reqwest, got %v", ruleIDs(diags))
	}
	// The span covers the crate name, not the whole statement.
	want := strings.Index(line, "reqwest")
	for _, d := range diags {
		if d.RuleID == rules.CrateRuleID("reqwest") {
			if d.Column != want || d.EndColumn != want+len("reqwest") {
				t.Errorf("span = [%d,%d), want [%d,%d)", d.Column, d.EndColumn, want, want+len("reqwest"))
			}
		}
	}

	// An allowed crate stays silent.
	diags = e.Analyze("lib.rs", []byte(`use serde::Deserialize;`))
	if hasID(diags, rules.CrateRuleID("serde")) {
		t.Fatalf("serde must not be flagged: %v", ruleIDs(diags))
	}
}

func TestForbiddenCrateExtern(t *testing.T) {
	e := newEngine(t)
	diags := e.Analyze("lib.rs", []byte(`extern crate redis;`))
	if !hasID(diags, rules.CrateRuleID("redis")) {
		t.Fatalf("expected forbidden_redis, got %v", ruleIDs(diags))
	}
}

func TestSuppressionFiltersDiagnostics(t *testing.T) {
	e := newEngine(t)
	src := strings.Join([]string{
		`#[guest::allow(error_generic_unwrap)]`,
		`fn parse() { value.unwrap(); }`,
	}, "\n")
	diags := e.Analyze("lib.rs", []byte(src))
	if hasID(diags, "error_generic_unwrap") {
		t.Fatalf("directive must suppress the diagnostic: %v", ruleIDs(diags))
	}
}

func TestFileLevelSuppression(t *testing.T) {
	e := newEngine(t)
	src := strings.Join([]string{
		`#![guest::allow(all)]`,
		`fn parse() { value.unwrap(); }`,
		`static mut COUNTER: u32 = 0;`,
	}, "\n")
	if diags := e.Analyze("lib.rs", []byte(src)); len(diags) != 0 {
		t.Fatalf("file-level allow-all must drop everything: %v", ruleIDs(diags))
	}
}

func TestSuppressionWindowExpires(t *testing.T) {
	e := newEngine(t)
	lines := []string{`#[guest::allow(error_generic_unwrap)]`}
	for i := 0; i < 11; i++ {
		lines = append(lines, `fn pad() {}`)
	}
	lines = append(lines, `fn parse() { value.unwrap(); }`)
	diags := e.Analyze("lib.rs", []byte(strings.Join(lines, "\n")))
	if !hasID(diags, "error_generic_unwrap") {
		t.Fatalf("diagnostic past the window must survive: %v", ruleIDs(diags))
	}
}

func TestCapabilityDiagnosticsFlowThroughEngine(t *testing.T) {
	e := newEngine(t)
	src := `
impl<P: Publisher> Handler<P> for QuietRequest {
    fn from_input(input: Self::Input) -> Result<Self> { Ok(Self {}) }
    async fn handle(self, ctx: Context<'_, P>) -> Result<Reply<Self::Output>> {
        Ok(Reply::ok(()))
    }
}
`
	diags := e.Analyze("handler.rs", []byte(src))
	if !hasID(diags, rules.SynthUnusedBound) {
		t.Fatalf("expected %s, got %v", rules.SynthUnusedBound, ruleIDs(diags))
	}
}

func TestDiagnosticsAreSorted(t *testing.T) {
	e := newEngine(t)
	src := strings.Join([]string{
		`fn late() { value.unwrap(); }`,
		`static mut EARLY: u32 = 0;`,
	}, "\n")
	diags := e.Analyze("lib.rs", []byte(src))
	for i := 1; i < len(diags); i++ {
		if diags[i].Line < diags[i-1].Line {
			t.Fatalf("diagnostics out of order: %v", ruleIDs(diags))
		}
	}
}

func TestEveryDiagnosticHasKnownID(t *testing.T) {
	e := newEngine(t)
	src := strings.Join([]string{
		`use tokio;`,
		`static mut S: u32 = 0;`,
		`fn f() { value.unwrap(); panic!("boom"); }`,
	}, "\n")
	for _, d := range e.Analyze("lib.rs", []byte(src)) {
		if !e.Catalog().KnownID(d.RuleID) {
			t.Errorf("diagnostic carries unknown id %q", d.RuleID)
		}
	}
}

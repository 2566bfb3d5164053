package lint

import (
	"os"
	"path/filepath"
	"testing"

	"guestlint/internal/diag"
	"guestlint/internal/lintcfg"
)

func hasID(diags []diag.Diagnostic, id string) bool {
	for _, d := range diags {
		if d.RuleID == id {
			return true
		}
	}
	return false
}

func TestLintContentReportsViolations(t *testing.T) {
	l, err := New(Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	diags := l.LintContent("lib.rs", []byte(`fn f() { value.unwrap(); }`))
	if !hasID(diags, "error_generic_unwrap") {
		t.Fatalf("expected error_generic_unwrap, got %v", diags)
	}
}

func TestMinSeverityFilter(t *testing.T) {
	l, err := New(Config{MinSeverity: diag.SevError})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// unwrap is warning-level and must be filtered out; panic! is
	// error-level and must survive.
	diags := l.LintContent("lib.rs", []byte(`fn f() { value.unwrap(); panic!("x"); }`))
	for _, d := range diags {
		if d.Severity < diag.SevError {
			t.Errorf("diagnostic below min severity leaked: %+v", d)
		}
	}
	if hasID(diags, "error_generic_unwrap") {
		t.Fatalf("warning-level unwrap must be filtered, got %v", diags)
	}
	if !hasID(diags, "error_panic_macro") {
		t.Fatalf("error-level diagnostic must survive, got %v", diags)
	}
}

func TestCategoryFilter(t *testing.T) {
	l, err := New(Config{Categories: []diag.Category{diag.CatError}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	diags := l.LintContent("lib.rs", []byte("fn f() { value.unwrap(); }\nstatic mut S: u32 = 0;"))
	for _, d := range diags {
		if d.Category != diag.CatError {
			t.Errorf("category filter leaked %v: %s", d.Category, d.RuleID)
		}
	}
}

func TestDisabledRules(t *testing.T) {
	l, err := New(Config{DisabledRules: []string{"error_generic_unwrap"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	diags := l.LintContent("lib.rs", []byte(`fn f() { value.unwrap(); }`))
	if hasID(diags, "error_generic_unwrap") {
		t.Fatalf("disabled rule still reported: %v", diags)
	}
}

func TestOverridesApplyBeforeFilters(t *testing.T) {
	l, err := New(Config{
		MinSeverity: diag.SevError,
		Overrides: lintcfg.Overrides{
			Rules: map[string]diag.Level{"println_debug": diag.LevelDeny},
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	diags := l.LintContent("lib.rs", []byte(`fn f() { println!("x"); }`))
	if !hasID(diags, "println_debug") {
		t.Fatalf("deny override must lift println_debug over the error threshold, got %v", diags)
	}
}

func TestAllowOverrideDropsDiagnostic(t *testing.T) {
	l, err := New(Config{
		Overrides: lintcfg.Overrides{
			Rules: map[string]diag.Level{"error_generic_unwrap": diag.LevelAllow},
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	diags := l.LintContent("lib.rs", []byte(`fn f() { value.unwrap(); }`))
	if hasID(diags, "error_generic_unwrap") {
		t.Fatalf("allow override must drop the diagnostic, got %v", diags)
	}
}

func TestLintFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "handler.rs")
	if err := os.WriteFile(path, []byte(`fn f() { value.unwrap(); }`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	l, err := New(Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	diags, err := l.LintFile(path)
	if err != nil {
		t.Fatalf("LintFile: %v", err)
	}
	if !hasID(diags, "error_generic_unwrap") {
		t.Fatalf("expected error_generic_unwrap, got %v", diags)
	}

	if _, err := l.LintFile(filepath.Join(dir, "missing.rs")); err == nil {
		t.Fatalf("missing file must error")
	}
}

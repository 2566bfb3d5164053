// Package engine runs the full per-file analysis: regex rules, forbidden
// constructs, crate denylist, capability reconciliation and suppression.
// One Engine is safe for concurrent use; all state lives in the immutable
// rule catalog.
package engine

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"guestlint/internal/capability"
	"guestlint/internal/diag"
	"guestlint/internal/lexical"
	"guestlint/internal/rules"
	"guestlint/internal/source"
	"guestlint/internal/suppress"
)

// Engine analyzes guest source files against the compiled rule catalog.
type Engine struct {
	catalog  *rules.Catalog
	analyzer *capability.Analyzer
}

// New wires an engine over the given catalog.
func New(catalog *rules.Catalog) *Engine {
	return &Engine{
		catalog:  catalog,
		analyzer: capability.NewAnalyzer(catalog),
	}
}

// Catalog exposes the engine's rule catalog, mostly for presentation
// layers that want rule metadata next to diagnostics.
func (e *Engine) Catalog() *rules.Catalog {
	return e.catalog
}

// Analyze runs every analysis pass over one file and returns the
// surviving diagnostics sorted by position. Non-Rust paths produce no
// diagnostics. The content is analyzed as-is; callers run
// source.Normalize first if they want stable columns across platforms.
func (e *Engine) Analyze(path string, content []byte) []diag.Diagnostic {
	if !strings.EqualFold(filepath.Ext(path), ".rs") {
		return nil
	}

	text := string(content)
	index := lexical.NewIndex(content)
	lineIdx := source.NewLineIndex(content)

	var diagnostics []diag.Diagnostic

	for lineNo, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "/*") || strings.HasPrefix(trimmed, "*") {
			continue
		}
		lineStart := int(lineIdx.LineStart(lineNo + 1))

		diagnostics = append(diagnostics, e.matchRules(line, lineNo+1, lineStart, index)...)
		diagnostics = append(diagnostics, e.matchForbidden(line, lineNo+1, lineStart, index)...)
		diagnostics = append(diagnostics, e.matchCrates(line, lineNo+1, lineStart, index)...)
	}

	diagnostics = append(diagnostics, e.analyzer.Analyze(text)...)

	directives := suppress.ParseDirectives(text)
	if len(directives) > 0 {
		kept := diagnostics[:0]
		for _, d := range diagnostics {
			if !suppress.ShouldSuppress(d.Line, d.RuleID, directives) {
				kept = append(kept, d)
			}
		}
		diagnostics = kept
	}

	diag.Sort(diagnostics)
	return diagnostics
}

// matchRules applies the anti-pattern rules to one line. Location-only
// rules never fire here; their patterns exist for tooling that wants to
// find constructs, not flag them.
func (e *Engine) matchRules(line string, lineNo, lineStart int, index *lexical.Index) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, r := range e.catalog.AntiPatterns() {
		for _, loc := range r.Pattern.FindAllStringIndex(line, -1) {
			if index.InString(uint32(lineStart + loc[0])) {
				continue
			}
			msg := r.Description
			if r.FixTemplate != "" {
				msg += "\n\nSuggested fix: " + r.FixTemplate
			}
			out = append(out, diag.Diagnostic{
				Line:        lineNo,
				Column:      loc[0],
				EndColumn:   loc[1],
				Severity:    r.Severity,
				RuleID:      r.ID,
				RuleName:    r.Name,
				Category:    r.Category,
				Message:     msg,
				FixTemplate: r.FixTemplate,
				Snippet:     line,
			})
		}
	}
	return out
}

// matchForbidden applies the multi-pattern forbidden-construct table.
// Every alternative pattern that fires emits its own diagnostic; a line
// tripping two spellings of the same construct is reported twice.
func (e *Engine) matchForbidden(line string, lineNo, lineStart int, index *lexical.Index) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, fc := range e.catalog.ForbiddenConstructs() {
		for _, re := range fc.Patterns {
			loc := re.FindStringIndex(line)
			if loc == nil {
				continue
			}
			if index.InString(uint32(lineStart + loc[0])) {
				continue
			}
			out = append(out, diag.Diagnostic{
				Line:        lineNo,
				Column:      loc[0],
				EndColumn:   loc[1],
				Severity:    fc.Severity,
				RuleID:      fc.ID,
				RuleName:    fc.Name,
				Category:    fc.Category,
				Message:     fc.Reason + "\n\nAlternative: " + fc.Alternative,
				FixTemplate: fc.Alternative,
				Snippet:     line,
			})
		}
	}
	return out
}

// matchCrates flags use and extern crate statements naming denylisted
// crates. The diagnostic spans the crate name, not the whole statement,
// and every occurrence on the line is reported.
func (e *Engine) matchCrates(line string, lineNo, lineStart int, index *lexical.Index) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, re := range []*regexp.Regexp{e.catalog.CrateUsePattern(), e.catalog.CrateExternPattern()} {
		for _, loc := range re.FindAllStringSubmatchIndex(line, -1) {
			if loc[2] < 0 {
				continue
			}
			if index.InString(uint32(lineStart + loc[2])) {
				continue
			}
			crate := line[loc[2]:loc[3]]
			alt, forbidden := e.catalog.CrateAlternative(crate)
			if !forbidden {
				continue
			}
			out = append(out, diag.Diagnostic{
				Line:      lineNo,
				Column:    loc[2],
				EndColumn: loc[3],
				Severity:  diag.SevError,
				RuleID:    rules.CrateRuleID(crate),
				RuleName:  "Forbidden Crate: " + crate,
				Category:  diag.CatWasm,
				Message: fmt.Sprintf(
					"Crate %s is not available or not allowed in the guest sandbox.\n\nAlternative: %s",
					crate, alt),
				FixTemplate: alt,
				Snippet:     line,
			})
		}
	}
	return out
}

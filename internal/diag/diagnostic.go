package diag

import (
	"fmt"
	"sort"
)

// Diagnostic is one reported issue. It is immutable once constructed:
// later stages may drop it or copy it with a rewritten severity, never
// mutate it in place.
type Diagnostic struct {
	// Line is 1-indexed.
	Line int
	// Column and EndColumn are 0-indexed byte columns within the line.
	Column    int
	EndColumn int

	Severity Severity
	// RuleID is a stable identifier; it names either a catalog rule or one
	// of the synthetic ids produced by the capability analyzer.
	RuleID   string
	RuleName string
	Category Category
	Message  string

	// FixTemplate is an optional suggested replacement.
	FixTemplate string
	// Snippet is the source line that triggered the diagnostic.
	Snippet string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%d:%d: %s [%s] %s", d.Line, d.Column, d.Severity, d.RuleID, d.Message)
}

// WithSeverity returns a copy with the severity rewritten. Rule id,
// category and message are never touched by severity resolution.
func (d Diagnostic) WithSeverity(sev Severity) Diagnostic {
	d.Severity = sev
	return d
}

// Sort orders diagnostics by line, column, severity (descending) and rule id
// for stable, deterministic output.
func Sort(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		di, dj := diags[i], diags[j]
		if di.Line != dj.Line {
			return di.Line < dj.Line
		}
		if di.Column != dj.Column {
			return di.Column < dj.Column
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.RuleID < dj.RuleID
	})
}

// Summary aggregates severity counts across diagnostics.
type Summary struct {
	Total    int
	Errors   int
	Warnings int
	Infos    int
	Hints    int
}

// Summarize counts diagnostics per severity.
func Summarize(diags []Diagnostic) Summary {
	var s Summary
	s.Total = len(diags)
	for _, d := range diags {
		switch d.Severity {
		case SevError:
			s.Errors++
		case SevWarning:
			s.Warnings++
		case SevInfo:
			s.Infos++
		case SevHint:
			s.Hints++
		}
	}
	return s
}

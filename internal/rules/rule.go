// Package rules holds the declarative lint catalog: pattern rules,
// forbidden constructs, denylisted crates and the capability call-shape
// table. The catalog is built once at startup and is immutable afterwards;
// an invalid built-in pattern is a construction error, never a runtime one.
package rules

import (
	"regexp"

	"guestlint/internal/diag"
)

// Rule is a single catalog entry. A rule whose AntiPattern flag is set
// treats every pattern match as a violation; other rules only mark
// locations of interest for structural checks.
type Rule struct {
	// ID is the stable identifier used in directives and manifest overrides.
	ID string
	// Name is the human-readable display name.
	Name string

	Category diag.Category
	Severity diag.Severity

	// Description explains the violation.
	Description string

	Pattern *regexp.Regexp

	AntiPattern bool

	// FixTemplate is an optional suggested replacement.
	FixTemplate string

	// DocReference points into the guest SDK documentation.
	DocReference string
}

// ruleSpec is the uncompiled form used by the data tables.
type ruleSpec struct {
	id       string
	name     string
	category diag.Category
	severity diag.Severity
	desc     string
	pattern  string
	// locationOnly inverts the anti-pattern default.
	locationOnly bool
	fix          string
	doc          string
}

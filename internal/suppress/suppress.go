// Package suppress parses inline allow directives and decides which
// diagnostics they silence.
package suppress

import (
	"regexp"
	"strings"
)

// Window is the number of trailing lines a next-construct directive
// covers. Several stacked attributes can sit between the directive and
// the construct it annotates, which is what the window models. Historical
// constant; tune here, not inline.
const Window = 10

// directivePattern matches #[guest::allow(...)] and the file-level
// #![guest::allow(...)] form.
var directivePattern = regexp.MustCompile(`#(!?)\[guest::allow\(([^)]+)\)\]`)

// Directive is one parsed allow annotation.
type Directive struct {
	// Line is 1-indexed.
	Line int
	// FileLevel is true for the #![...] inner-attribute form, which
	// applies to the whole file.
	FileLevel bool
	// Rules is the set of suppressed rule ids; nil means all rules.
	Rules map[string]struct{}
}

// Allows reports whether the directive suppresses the given rule id.
// A nil rule set means "all". Lookup falls back to the lowercased id.
func (d *Directive) Allows(ruleID string) bool {
	if d.Rules == nil {
		return true
	}
	if _, ok := d.Rules[ruleID]; ok {
		return true
	}
	_, ok := d.Rules[strings.ToLower(ruleID)]
	return ok
}

// ParseDirectives scans every line of content for allow annotations.
//
// Supported forms:
//   - #[guest::allow(all)] - suppress all rules for the next construct
//   - #[guest::allow(rule_id)] - suppress one rule for the next construct
//   - #[guest::allow(rule1, rule2)] - suppress several rules
//   - #![guest::allow(...)] - file-level suppression (inner attribute)
func ParseDirectives(content string) []Directive {
	var directives []Directive

	for lineIdx, line := range strings.Split(content, "\n") {
		caps := directivePattern.FindStringSubmatch(strings.TrimSpace(line))
		if caps == nil {
			continue
		}

		fileLevel := caps[1] == "!"
		args := caps[2]

		var ruleSet map[string]struct{}
		if !strings.EqualFold(strings.TrimSpace(args), "all") {
			ruleSet = make(map[string]struct{})
			for _, id := range strings.Split(args, ",") {
				id = strings.TrimSpace(id)
				if id != "" {
					ruleSet[id] = struct{}{}
				}
			}
		}

		directives = append(directives, Directive{
			Line:      lineIdx + 1,
			FileLevel: fileLevel,
			Rules:     ruleSet,
		})
	}

	return directives
}

// ShouldSuppress reports whether a diagnostic on the given 1-indexed line
// for the given rule id is silenced by any directive. File-level
// directives apply everywhere; next-construct directives apply to lines
// strictly after the directive within the trailing Window.
func ShouldSuppress(diagnosticLine int, ruleID string, directives []Directive) bool {
	for i := range directives {
		d := &directives[i]
		if d.FileLevel && d.Allows(ruleID) {
			return true
		}
		if !d.FileLevel &&
			d.Line < diagnosticLine &&
			diagnosticLine <= d.Line+Window &&
			d.Allows(ruleID) {
			return true
		}
	}
	return false
}

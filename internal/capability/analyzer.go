// Package capability locates handler implementation blocks and reconciles
// their declared provider bounds against the provider methods actually
// invoked in the block body. It is a heuristic structural pass over text,
// not a parser: blocks are delimited by brace counting and usage is
// detected through the closed call-shape table in the rule catalog.
package capability

import (
	"fmt"
	"regexp"
	"strings"

	"guestlint/internal/diag"
	"guestlint/internal/rules"
)

// MaxDeclaredBounds is the number of bound conjuncts above which an
// implementation is flagged as over-declared. Historical constant.
const MaxDeclaredBounds = 4

var (
	// headerPattern matches `impl<P: A + B> Handler<P> for Type` with an
	// optional inline bound list.
	headerPattern = regexp.MustCompile(`impl\s*<\s*P\s*(?::\s*([^>{]+?))?\s*>\s*Handler\s*<\s*P\s*>\s*for\s+(\w+)`)

	// wherePattern extracts a trailing `where P: A + B` clause between the
	// header and the opening brace.
	wherePattern = regexp.MustCompile(`where\s+P\s*:\s*([\w\s+]+)`)

	fromInputPattern = regexp.MustCompile(`fn\s+from_input\s*\(`)
	handlePattern    = regexp.MustCompile(`\bfn\s+handle\s*\(|\basync\s+fn\s+handle\s*\(`)
)

// BindingSite is the derived record for one handler implementation block:
// its text span, the declared bound list and the capabilities whose call
// shapes appear in the body. Created per block, discarded after
// reconciliation.
type BindingSite struct {
	// HeaderLine is 1-indexed.
	HeaderLine int
	// StartCol and EndCol delimit the header match on its line.
	StartCol int
	EndCol   int
	// TypeName is the implementing type.
	TypeName string
	// Declared preserves the order of the bound list.
	Declared []string
	// Used is the set of capability names invoked in the block body.
	Used map[string]struct{}
	// Body is the block text including the header line.
	Body string
	// Snippet is the header source line.
	Snippet string
}

// Analyzer finds binding sites and produces bound-reconciliation and
// required-method diagnostics.
type Analyzer struct {
	catalog *rules.Catalog
}

// NewAnalyzer creates an analyzer over the shared catalog.
func NewAnalyzer(catalog *rules.Catalog) *Analyzer {
	return &Analyzer{catalog: catalog}
}

// Analyze scans content for handler implementation blocks and reconciles
// each one. Malformed input degrades to "no diagnostics" for the affected
// block; it never fails the whole file.
func (a *Analyzer) Analyze(content string) []diag.Diagnostic {
	var diagnostics []diag.Diagnostic

	lines := strings.Split(content, "\n")
	for idx, line := range lines {
		loc := headerPattern.FindStringSubmatchIndex(line)
		if loc == nil {
			continue
		}

		site, ok := a.bindingSite(lines, idx, line, loc)
		if !ok {
			continue
		}

		diagnostics = append(diagnostics, a.reconcile(site)...)
		diagnostics = append(diagnostics, a.requiredMethods(site)...)
	}

	return diagnostics
}

// bindingSite extracts the declared bounds and the block body for the
// header found at lines[idx]. Returns ok=false when the block cannot be
// delimited.
func (a *Analyzer) bindingSite(lines []string, idx int, line string, loc []int) (*BindingSite, bool) {
	site := &BindingSite{
		HeaderLine: idx + 1,
		StartCol:   loc[0],
		EndCol:     loc[1],
		Used:       make(map[string]struct{}),
		Snippet:    line,
	}
	if loc[4] >= 0 {
		site.TypeName = line[loc[4]:loc[5]]
	}
	if loc[2] >= 0 {
		site.Declared = splitBounds(line[loc[2]:loc[3]])
	}

	// No inline bounds: look for a where clause between the header and the
	// opening brace. rustfmt puts `where` and the bound list on separate
	// lines, so the prefix is joined before matching.
	if len(site.Declared) == 0 {
		var prefix strings.Builder
		for j := idx; j < len(lines); j++ {
			if pos := strings.IndexByte(lines[j], '{'); pos >= 0 {
				prefix.WriteString(lines[j][:pos])
				break
			}
			prefix.WriteString(lines[j])
			prefix.WriteByte('\n')
		}
		if m := wherePattern.FindStringSubmatch(prefix.String()); m != nil {
			site.Declared = splitBounds(m[1])
		}
	}

	end, ok := blockEnd(lines, idx)
	if !ok {
		return nil, false
	}
	site.Body = strings.Join(lines[idx:end+1], "\n")

	for _, capb := range a.catalog.Capabilities() {
		for _, shape := range capb.CallShapes {
			if shape.MatchString(site.Body) {
				site.Used[capb.Name] = struct{}{}
				break
			}
		}
	}

	return site, true
}

// blockEnd scans forward from the header line counting block delimiters.
// The block ends when the running balance returns to zero after having
// gone positive. Braces inside string and comment content are counted
// too: that is the historical behavior and is deliberately preserved (see
// the package tests pinning it).
func blockEnd(lines []string, start int) (int, bool) {
	depth := 0
	opened := false
	for i := start; i < len(lines); i++ {
		for _, ch := range lines[i] {
			switch ch {
			case '{':
				depth++
				opened = true
			case '}':
				depth--
			}
		}
		if opened && depth <= 0 {
			return i, true
		}
	}
	return 0, false
}

// reconcile compares the declared bound set with the used set. Only known
// capability names participate: marker traits like Send or Clone in a
// bound list are not provider bounds and are left alone.
func (a *Analyzer) reconcile(site *BindingSite) []diag.Diagnostic {
	var out []diag.Diagnostic

	if len(site.Declared) == 0 {
		out = append(out, diag.Diagnostic{
			Line:      site.HeaderLine,
			Column:    site.StartCol,
			EndColumn: site.EndCol,
			Severity:  diag.SevWarning,
			RuleID:    rules.SynthNoBounds,
			RuleName:  "Missing Provider Bounds",
			Category:  diag.CatProvider,
			Message: fmt.Sprintf(
				"Handler implementation for %s declares no provider bounds; declare the traits it uses, e.g. P: Config",
				site.TypeName),
			Snippet: site.Snippet,
		})
	}

	declared := make(map[string]struct{}, len(site.Declared))
	capCount := 0
	for _, b := range site.Declared {
		declared[b] = struct{}{}
		if rules.IsCapabilityName(b) {
			capCount++
		}
	}

	if capCount > MaxDeclaredBounds {
		out = append(out, diag.Diagnostic{
			Line:      site.HeaderLine,
			Column:    site.StartCol,
			EndColumn: site.EndCol,
			Severity:  diag.SevWarning,
			RuleID:    rules.SynthExcessBounds,
			RuleName:  "Too Many Provider Bounds",
			Category:  diag.CatProvider,
			Message: fmt.Sprintf(
				"Handler implementation for %s declares %d provider bounds; more than %d usually means over-declaration",
				site.TypeName, capCount, MaxDeclaredBounds),
			Snippet: site.Snippet,
		})
	}

	// Declared but never invoked.
	for _, b := range site.Declared {
		if !rules.IsCapabilityName(b) {
			continue
		}
		if _, used := site.Used[b]; used {
			continue
		}
		out = append(out, diag.Diagnostic{
			Line:      site.HeaderLine,
			Column:    site.StartCol,
			EndColumn: site.EndCol,
			Severity:  diag.SevWarning,
			RuleID:    rules.SynthUnusedBound,
			RuleName:  "Unused Provider Bound",
			Category:  diag.CatProvider,
			Message: fmt.Sprintf(
				"Provider bound %s is declared but its methods are never called in the handler body",
				b),
			FixTemplate: fmt.Sprintf("Remove %s from the bound list", b),
			Snippet:     site.Snippet,
		})
	}

	// Invoked but never declared.
	for _, capb := range a.catalog.Capabilities() {
		if _, used := site.Used[capb.Name]; !used {
			continue
		}
		if _, ok := declared[capb.Name]; ok {
			continue
		}
		out = append(out, diag.Diagnostic{
			Line:      site.HeaderLine,
			Column:    site.StartCol,
			EndColumn: site.EndCol,
			Severity:  diag.SevError,
			RuleID:    rules.SynthMissingBound,
			RuleName:  "Missing Provider Bound",
			Category:  diag.CatProvider,
			Message: fmt.Sprintf(
				"Handler body calls %s methods but the bound list does not declare it",
				capb.Name),
			FixTemplate: fmt.Sprintf("P: %s", suggestedBounds(site, capb.Name)),
			Snippet:     site.Snippet,
		})
	}

	return out
}

// requiredMethods checks that the block implements the input-parsing and
// handling methods every handler needs.
func (a *Analyzer) requiredMethods(site *BindingSite) []diag.Diagnostic {
	var out []diag.Diagnostic

	if !fromInputPattern.MatchString(site.Body) {
		out = append(out, diag.Diagnostic{
			Line:      site.HeaderLine,
			Column:    site.StartCol,
			EndColumn: site.EndCol,
			Severity:  diag.SevError,
			RuleID:    rules.SynthMissingFromInput,
			RuleName:  "Missing from_input Method",
			Category:  diag.CatHandler,
			Message: fmt.Sprintf(
				"Handler implementation for %s does not define from_input",
				site.TypeName),
			FixTemplate: "fn from_input(input: Self::Input) -> Result<Self>",
			Snippet:     site.Snippet,
		})
	}
	if !handlePattern.MatchString(site.Body) {
		out = append(out, diag.Diagnostic{
			Line:      site.HeaderLine,
			Column:    site.StartCol,
			EndColumn: site.EndCol,
			Severity:  diag.SevError,
			RuleID:    rules.SynthMissingHandle,
			RuleName:  "Missing handle Method",
			Category:  diag.CatHandler,
			Message: fmt.Sprintf(
				"Handler implementation for %s does not define handle",
				site.TypeName),
			FixTemplate: "async fn handle(self, ctx: Context<'_, P>) -> Result<Reply<Self::Output>>",
			Snippet:     site.Snippet,
		})
	}

	return out
}

// suggestedBounds builds the corrected bound list: the declared bounds in
// their original order with the missing capability appended.
func suggestedBounds(site *BindingSite, missing string) string {
	parts := make([]string, 0, len(site.Declared)+1)
	parts = append(parts, site.Declared...)
	parts = append(parts, missing)
	return strings.Join(parts, " + ")
}

func splitBounds(s string) []string {
	var out []string
	for _, part := range strings.Split(s, "+") {
		part = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(part), ","))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

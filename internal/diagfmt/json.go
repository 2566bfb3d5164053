package diagfmt

import (
	"encoding/json"
	"io"

	"guestlint/internal/diag"
)

// DiagnosticJSON is the machine-readable form of one diagnostic.
type DiagnosticJSON struct {
	File      string `json:"file"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	EndColumn int    `json:"end_column,omitempty"`
	Severity  string `json:"severity"`
	Rule      string `json:"rule"`
	RuleName  string `json:"rule_name,omitempty"`
	Category  string `json:"category"`
	Message   string `json:"message"`
	Fix       string `json:"fix,omitempty"`
	Snippet   string `json:"snippet,omitempty"`
}

// SummaryJSON mirrors diag.Summary for output.
type SummaryJSON struct {
	Total    int `json:"total"`
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Infos    int `json:"infos"`
	Hints    int `json:"hints"`
}

// Output is the root JSON document.
type Output struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Summary     SummaryJSON      `json:"summary"`
	Truncated   bool             `json:"truncated,omitempty"`
}

// JSON writes the full report as one JSON document.
func JSON(w io.Writer, reports []FileReport, opts JSONOpts) error {
	out := Output{Diagnostics: []DiagnosticJSON{}}
	var all []diag.Diagnostic

	for _, rep := range reports {
		path := formatPath(rep.Path, opts.PathMode, "")
		for _, d := range rep.Diagnostics {
			all = append(all, d)
			if opts.Max > 0 && len(out.Diagnostics) >= opts.Max {
				out.Truncated = true
				continue
			}
			out.Diagnostics = append(out.Diagnostics, DiagnosticJSON{
				File:      path,
				Line:      d.Line,
				Column:    d.Column,
				EndColumn: d.EndColumn,
				Severity:  d.Severity.String(),
				Rule:      d.RuleID,
				RuleName:  d.RuleName,
				Category:  d.Category.Key(),
				Message:   d.Message,
				Fix:       d.FixTemplate,
				Snippet:   d.Snippet,
			})
		}
	}

	s := diag.Summarize(all)
	out.Summary = SummaryJSON{
		Total:    s.Total,
		Errors:   s.Errors,
		Warnings: s.Warnings,
		Infos:    s.Infos,
		Hints:    s.Hints,
	}

	enc := json.NewEncoder(w)
	if opts.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(out)
}

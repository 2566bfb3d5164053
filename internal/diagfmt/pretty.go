// Package diagfmt renders lint reports for terminals, JSON consumers and
// CI annotations. Formatters take finished reports; they never re-filter
// or re-order diagnostics.
package diagfmt

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"guestlint/internal/diag"
)

// FileReport is the per-file unit every formatter consumes.
type FileReport struct {
	Path        string
	Diagnostics []diag.Diagnostic
}

// Pretty renders reports as
//
//	<path>:<line>:<col>: <severity> [<rule>]: <headline>
//
// followed by the source line and a caret underline when ShowSnippet is
// set. Multi-line messages keep only the headline here; the rest is
// available through the rules command and JSON output.
func Pretty(w io.Writer, reports []FileReport, opts PrettyOpts) {
	for _, rep := range reports {
		for _, d := range rep.Diagnostics {
			path := formatPath(rep.Path, opts.PathMode, "")
			fmt.Fprintf(w, "%s:%d:%d: %s [%s]: %s\n",
				path, d.Line, d.Column+1,
				severityLabel(d.Severity, opts.Color),
				d.RuleID,
				headline(d.Message))

			if opts.ShowSnippet && d.Snippet != "" {
				fmt.Fprintf(w, "    %s\n", d.Snippet)
				fmt.Fprintf(w, "    %s\n", underline(d.Snippet, d.Column, d.EndColumn, opts.Color))
			}
			if opts.ShowFixes && d.FixTemplate != "" {
				fmt.Fprintf(w, "    = help: %s\n", d.FixTemplate)
			}
		}
	}
}

// Short renders one line per diagnostic with no snippet, the format
// editors and grep pipelines expect.
func Short(w io.Writer, reports []FileReport, opts PrettyOpts) {
	for _, rep := range reports {
		for _, d := range rep.Diagnostics {
			fmt.Fprintf(w, "%s:%d:%d: %s: %s [%s]\n",
				formatPath(rep.Path, opts.PathMode, ""),
				d.Line, d.Column+1,
				d.Severity, headline(d.Message), d.RuleID)
		}
	}
}

// Summary prints the aggregate severity counts for a run.
func Summary(w io.Writer, s diag.Summary, useColor bool) {
	if s.Total == 0 {
		if useColor {
			fmt.Fprintln(w, color.GreenString("no issues found"))
		} else {
			fmt.Fprintln(w, "no issues found")
		}
		return
	}
	parts := make([]string, 0, 4)
	if s.Errors > 0 {
		parts = append(parts, colorize(fmt.Sprintf("%d error(s)", s.Errors), color.FgRed, useColor))
	}
	if s.Warnings > 0 {
		parts = append(parts, colorize(fmt.Sprintf("%d warning(s)", s.Warnings), color.FgYellow, useColor))
	}
	if s.Infos > 0 {
		parts = append(parts, fmt.Sprintf("%d info(s)", s.Infos))
	}
	if s.Hints > 0 {
		parts = append(parts, fmt.Sprintf("%d hint(s)", s.Hints))
	}
	fmt.Fprintf(w, "found %d issue(s): %s\n", s.Total, strings.Join(parts, ", "))
}

// headline keeps the first line of a message; rule messages may carry
// multi-paragraph explanations.
func headline(msg string) string {
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		return msg[:i]
	}
	return msg
}

// underline builds a caret line aligned with the snippet, accounting for
// tabs and wide runes in the prefix.
func underline(line string, startCol, endCol int, useColor bool) string {
	if startCol < 0 {
		startCol = 0
	}
	if startCol > len(line) {
		startCol = len(line)
	}
	if endCol <= startCol {
		endCol = startCol + 1
	}
	if endCol > len(line) {
		endCol = len(line)
		if endCol <= startCol {
			endCol = startCol + 1
		}
	}

	var pad strings.Builder
	for _, r := range line[:startCol] {
		if r == '\t' {
			pad.WriteRune('\t')
		} else {
			pad.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
		}
	}

	width := runewidth.StringWidth(line[startCol:min(endCol, len(line))])
	if width < 1 {
		width = 1
	}
	marks := "^" + strings.Repeat("~", width-1)
	if useColor {
		marks = color.RedString(marks)
	}
	return pad.String() + marks
}

func severityLabel(sev diag.Severity, useColor bool) string {
	if !useColor {
		return sev.String()
	}
	switch sev {
	case diag.SevError:
		return color.RedString(sev.String())
	case diag.SevWarning:
		return color.YellowString(sev.String())
	case diag.SevInfo:
		return color.CyanString(sev.String())
	default:
		return sev.String()
	}
}

func colorize(s string, attr color.Attribute, useColor bool) string {
	if !useColor {
		return s
	}
	return color.New(attr).Sprint(s)
}

func formatPath(path string, mode PathMode, baseDir string) string {
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
		return path
	case PathModeRelative:
		if baseDir == "" {
			var err error
			baseDir, err = filepath.Abs(".")
			if err != nil {
				return path
			}
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return path
		}
		if rel, err := filepath.Rel(baseDir, abs); err == nil && !strings.HasPrefix(rel, "..") {
			return rel
		}
		return path
	case PathModeBasename:
		return filepath.Base(path)
	default:
		return path
	}
}

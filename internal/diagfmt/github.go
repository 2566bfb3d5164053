package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"guestlint/internal/diag"
)

// GitHub emits workflow command annotations, one per diagnostic, so lint
// findings surface inline on pull requests.
//
//	::error file=src/lib.rs,line=3,col=5,title=error_generic_unwrap::message
func GitHub(w io.Writer, reports []FileReport) {
	for _, rep := range reports {
		path := formatPath(rep.Path, PathModeRelative, "")
		for _, d := range rep.Diagnostics {
			fmt.Fprintf(w, "::%s file=%s,line=%d,col=%d,title=%s::%s\n",
				annotationLevel(d.Severity),
				path, d.Line, d.Column+1,
				escapeProperty(d.RuleID),
				escapeData(headline(d.Message)))
		}
	}
}

func annotationLevel(sev diag.Severity) string {
	switch sev {
	case diag.SevError:
		return "error"
	case diag.SevWarning:
		return "warning"
	default:
		return "notice"
	}
}

// Workflow commands require %, CR and LF escaped in data, plus commas and
// colons in property values.
func escapeData(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	s = strings.ReplaceAll(s, "\n", "%0A")
	return s
}

func escapeProperty(s string) string {
	s = escapeData(s)
	s = strings.ReplaceAll(s, ":", "%3A")
	s = strings.ReplaceAll(s, ",", "%2C")
	return s
}

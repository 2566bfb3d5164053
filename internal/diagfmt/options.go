package diagfmt

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto keeps the path as the caller provided it.
	PathModeAuto PathMode = iota
	// PathModeAbsolute always uses absolute paths.
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color    bool
	PathMode PathMode
	// ShowSnippet prints the offending source line with a caret underline.
	ShowSnippet bool
	// ShowFixes prints the suggested fix template when a rule has one.
	ShowFixes bool
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	PathMode PathMode
	// Max truncates the emitted list, 0 means unlimited.
	Max int
	// Indent pretty-prints the JSON document.
	Indent bool
}

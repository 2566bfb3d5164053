package diag

// Severity defines the importance of a diagnostic.
// Ordered so comparisons express "at least this severe".
type Severity uint8

const (
	// SevHint is for stylistic suggestions.
	SevHint Severity = iota
	// SevInfo is for informational guidance.
	SevInfo
	// SevWarning is for code that may misbehave.
	SevWarning
	// SevError is for code that will not work in the guest sandbox.
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevHint:
		return "HINT"
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// ParseSeverity maps a lowercase severity name to a Severity.
func ParseSeverity(s string) (Severity, bool) {
	switch s {
	case "hint":
		return SevHint, true
	case "info":
		return SevInfo, true
	case "warning", "warn":
		return SevWarning, true
	case "error":
		return SevError, true
	}
	return SevHint, false
}

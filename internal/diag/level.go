package diag

// Level is a configured lint level from a Cargo.toml [lints.guest] table.
// It mirrors the standard Cargo lint levels.
type Level uint8

const (
	// LevelAllow suppresses the lint entirely.
	LevelAllow Level = iota
	// LevelWarn reports the lint as a warning.
	LevelWarn
	// LevelDeny reports the lint as an error.
	LevelDeny
	// LevelForbid reports the lint as an error; downstream overrides are ignored.
	LevelForbid
)

func (l Level) String() string {
	switch l {
	case LevelAllow:
		return "allow"
	case LevelWarn:
		return "warn"
	case LevelDeny:
		return "deny"
	case LevelForbid:
		return "forbid"
	}
	return "unknown"
}

// ParseLevel parses a Cargo-style lint level string.
func ParseLevel(s string) (Level, bool) {
	switch s {
	case "allow":
		return LevelAllow, true
	case "warn":
		return LevelWarn, true
	case "deny":
		return LevelDeny, true
	case "forbid":
		return LevelForbid, true
	}
	return 0, false
}

// Severity converts the level to the severity used for reporting.
// LevelAllow maps to (0, false): the diagnostic must be dropped.
func (l Level) Severity() (Severity, bool) {
	switch l {
	case LevelAllow:
		return 0, false
	case LevelWarn:
		return SevWarning, true
	case LevelDeny, LevelForbid:
		return SevError, true
	}
	return 0, false
}

// Package lintcfg resolves per-project lint level overrides from
// Cargo.toml. Overrides never invent diagnostics; they only re-level or
// drop what the engine produced.
package lintcfg

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"guestlint/internal/diag"
)

// ManifestName is the file the resolver walks up the tree looking for.
const ManifestName = "Cargo.toml"

// Overrides is the parsed override set from one or more manifests.
// Lookup precedence is fixed: exact rule id, then the rule's category,
// then the global "all" entry.
type Overrides struct {
	// Global is the "all" entry, nil when absent.
	Global *diag.Level
	// Categories maps category keys to levels.
	Categories map[diag.Category]diag.Level
	// Rules maps rule ids to levels.
	Rules map[string]diag.Level
}

// IsEmpty reports whether no override is configured.
func (o Overrides) IsEmpty() bool {
	return o.Global == nil && len(o.Categories) == 0 && len(o.Rules) == 0
}

// Level resolves the configured level for a diagnostic. ok is false when
// nothing in the override set applies and the rule's built-in severity
// stands.
func (o Overrides) Level(ruleID string, cat diag.Category) (diag.Level, bool) {
	if lv, hit := o.Rules[ruleID]; hit {
		return lv, true
	}
	if lv, hit := o.Categories[cat]; hit {
		return lv, true
	}
	if o.Global != nil {
		return *o.Global, true
	}
	return 0, false
}

// Merge layers overlay on top of o: every key overlay defines wins, keys
// it does not define keep o's value. Neither input is modified.
func (o Overrides) Merge(overlay Overrides) Overrides {
	out := Overrides{
		Global:     o.Global,
		Categories: make(map[diag.Category]diag.Level, len(o.Categories)+len(overlay.Categories)),
		Rules:      make(map[string]diag.Level, len(o.Rules)+len(overlay.Rules)),
	}
	for k, v := range o.Categories {
		out.Categories[k] = v
	}
	for k, v := range o.Rules {
		out.Rules[k] = v
	}
	if overlay.Global != nil {
		lv := *overlay.Global
		out.Global = &lv
	}
	for k, v := range overlay.Categories {
		out.Categories[k] = v
	}
	for k, v := range overlay.Rules {
		out.Rules[k] = v
	}
	return out
}

// Apply maps a diagnostic through the override set. keep=false means the
// diagnostic is dropped (an allow level); otherwise the returned
// diagnostic carries the effective severity.
func (o Overrides) Apply(d diag.Diagnostic) (diag.Diagnostic, bool) {
	lv, hit := o.Level(d.RuleID, d.Category)
	if !hit {
		return d, true
	}
	sev, keep := lv.Severity()
	if !keep {
		return d, false
	}
	return d.WithSeverity(sev), true
}

// manifest mirrors the slice of Cargo.toml the resolver cares about.
// Entries under [lints.guest] are either a bare level string or a
// { level = "...", priority = N } table; priority is accepted for
// manifest compatibility but the resolver's precedence is structural.
type manifest struct {
	Lints     lintsSection `toml:"lints"`
	Workspace struct {
		Lints lintsSection `toml:"lints"`
	} `toml:"workspace"`
}

type lintsSection struct {
	Guest map[string]toml.Primitive `toml:"guest"`
}

type levelEntry struct {
	Level    string `toml:"level"`
	Priority int    `toml:"priority"`
}

// Find walks from startDir toward the filesystem root looking for a
// Cargo.toml. Returns ok=false when none exists.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load parses the [lints.guest] and [workspace.lints.guest] tables of
// one manifest; package-level entries win over workspace-level ones. A
// malformed manifest yields empty overrides plus the parse error so the
// caller can warn and keep going.
func Load(path string) (Overrides, error) {
	var m manifest
	meta, err := toml.DecodeFile(path, &m)
	if err != nil {
		return Overrides{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}

	ws, err := parseGuestTable(meta, path, m.Workspace.Lints.Guest)
	if err != nil {
		return Overrides{}, err
	}
	pkg, err := parseGuestTable(meta, path, m.Lints.Guest)
	if err != nil {
		return Overrides{}, err
	}
	return ws.Merge(pkg), nil
}

// Resolve finds the nearest manifest above startDir and loads it. No
// manifest means empty overrides; that is not an error.
func Resolve(startDir string) (Overrides, string, error) {
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return Overrides{}, "", err
	}
	o, err := Load(path)
	return o, path, err
}

func parseGuestTable(meta toml.MetaData, path string, prims map[string]toml.Primitive) (Overrides, error) {
	out := Overrides{
		Categories: map[diag.Category]diag.Level{},
		Rules:      map[string]diag.Level{},
	}
	for key, prim := range prims {
		raw, err := decodeLevel(meta, prim)
		if err != nil {
			return Overrides{}, fmt.Errorf("%s: lints.guest.%s: %w", path, key, err)
		}
		lv, ok := diag.ParseLevel(raw)
		if !ok {
			return Overrides{}, fmt.Errorf("%s: lints.guest.%s: unknown level %q", path, key, raw)
		}
		switch {
		case strings.EqualFold(key, "all"):
			l := lv
			out.Global = &l
		default:
			if cat, ok := diag.CategoryFromKey(key); ok {
				out.Categories[cat] = lv
			} else {
				out.Rules[key] = lv
			}
		}
	}
	return out, nil
}

func decodeLevel(meta toml.MetaData, prim toml.Primitive) (string, error) {
	var s string
	if err := meta.PrimitiveDecode(prim, &s); err == nil {
		return s, nil
	}
	var e levelEntry
	if err := meta.PrimitiveDecode(prim, &e); err != nil {
		return "", fmt.Errorf("expected a level string or { level, priority } table: %w", err)
	}
	if e.Level == "" {
		return "", errors.New("level table is missing the level key")
	}
	return e.Level, nil
}

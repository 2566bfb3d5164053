// Package lint is the embedding facade: it owns an engine, resolved
// manifest overrides and caller filters, and exposes file/content entry
// points that return final, filtered diagnostics.
package lint

import (
	"fmt"
	"os"

	"guestlint/internal/diag"
	"guestlint/internal/engine"
	"guestlint/internal/lintcfg"
	"guestlint/internal/rules"
	"guestlint/internal/source"
)

// Config narrows what the linter reports after severity resolution.
// Zero value means "report everything at built-in severities".
type Config struct {
	// MinSeverity drops diagnostics below the threshold.
	MinSeverity diag.Severity
	// Categories, when non-empty, keeps only the listed categories.
	Categories []diag.Category
	// DisabledRules drops diagnostics by rule id.
	DisabledRules []string
	// Overrides are the manifest level overrides applied before filters.
	Overrides lintcfg.Overrides
}

// Linter ties the engine to a configuration.
type Linter struct {
	engine   *engine.Engine
	cfg      Config
	keepCat  map[diag.Category]struct{}
	disabled map[string]struct{}
}

// New builds a linter with a freshly compiled catalog.
func New(cfg Config) (*Linter, error) {
	catalog, err := rules.NewCatalog()
	if err != nil {
		return nil, fmt.Errorf("failed to compile rule catalog: %w", err)
	}
	return NewWithCatalog(catalog, cfg), nil
}

// NewWithCatalog builds a linter over an existing catalog, so callers
// analyzing many files compile the patterns once.
func NewWithCatalog(catalog *rules.Catalog, cfg Config) *Linter {
	l := &Linter{
		engine: engine.New(catalog),
		cfg:    cfg,
	}
	if len(cfg.Categories) > 0 {
		l.keepCat = make(map[diag.Category]struct{}, len(cfg.Categories))
		for _, c := range cfg.Categories {
			l.keepCat[c] = struct{}{}
		}
	}
	if len(cfg.DisabledRules) > 0 {
		l.disabled = make(map[string]struct{}, len(cfg.DisabledRules))
		for _, id := range cfg.DisabledRules {
			l.disabled[id] = struct{}{}
		}
	}
	return l
}

// Engine exposes the underlying engine for presentation layers.
func (l *Linter) Engine() *engine.Engine {
	return l.engine
}

// LintContent analyzes in-memory content as if it lived at path.
func (l *Linter) LintContent(path string, content []byte) []diag.Diagnostic {
	return l.filter(l.engine.Analyze(path, content))
}

// LintFile reads one file, normalizes BOM and CRLF line endings, and
// analyzes it.
func (l *Linter) LintFile(path string) ([]diag.Diagnostic, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return l.LintContent(path, source.Normalize(content)), nil
}

// filter applies manifest overrides first, then the caller's filters.
// Order matters: an override may lower a diagnostic under MinSeverity or
// allow it away entirely.
func (l *Linter) filter(in []diag.Diagnostic) []diag.Diagnostic {
	out := make([]diag.Diagnostic, 0, len(in))
	for _, d := range in {
		d, keep := l.cfg.Overrides.Apply(d)
		if !keep {
			continue
		}
		if d.Severity < l.cfg.MinSeverity {
			continue
		}
		if l.keepCat != nil {
			if _, ok := l.keepCat[d.Category]; !ok {
				continue
			}
		}
		if _, off := l.disabled[d.RuleID]; off {
			continue
		}
		out = append(out, d)
	}
	return out
}

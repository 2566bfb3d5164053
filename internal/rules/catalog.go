package rules

import (
	"fmt"
	"regexp"

	"guestlint/internal/diag"
)

// Catalog is the compiled, immutable rule collection shared by every
// analysis. Build it once with NewCatalog and pass it by pointer; there is
// no process-wide singleton.
type Catalog struct {
	rules      []Rule
	byID       map[string]*Rule
	forbidden  []ForbiddenConstruct
	crates     map[string]string // crate name -> suggested alternative
	crateUse   *regexp.Regexp
	crateExt   *regexp.Regexp
	capability []Capability
}

// NewCatalog compiles every built-in pattern. Any invalid pattern aborts
// construction with an error naming the offending rule id; a rule is never
// silently skipped.
func NewCatalog() (*Catalog, error) {
	specs := builtinRules()
	c := &Catalog{
		rules:  make([]Rule, 0, len(specs)),
		byID:   make(map[string]*Rule, len(specs)),
		crates: forbiddenCrates(),
	}

	for _, s := range specs {
		re, err := regexp.Compile(s.pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %s: invalid pattern %q: %w", s.id, s.pattern, err)
		}
		c.rules = append(c.rules, Rule{
			ID:           s.id,
			Name:         s.name,
			Category:     s.category,
			Severity:     s.severity,
			Description:  s.desc,
			Pattern:      re,
			AntiPattern:  !s.locationOnly,
			FixTemplate:  s.fix,
			DocReference: s.doc,
		})
	}
	for i := range c.rules {
		if _, dup := c.byID[c.rules[i].ID]; dup {
			return nil, fmt.Errorf("rule %s: duplicate id", c.rules[i].ID)
		}
		c.byID[c.rules[i].ID] = &c.rules[i]
	}

	fcs, err := compileForbiddenConstructs()
	if err != nil {
		return nil, err
	}
	c.forbidden = fcs

	c.crateUse, err = regexp.Compile(`use\s+(\w+)(?:::|;)`)
	if err != nil {
		return nil, fmt.Errorf("crate use pattern: %w", err)
	}
	c.crateExt, err = regexp.Compile(`extern\s+crate\s+(\w+)`)
	if err != nil {
		return nil, fmt.Errorf("crate extern pattern: %w", err)
	}

	c.capability, err = compileCapabilities()
	if err != nil {
		return nil, err
	}

	return c, nil
}

// Rules returns the compiled rules. Callers must not modify the slice.
func (c *Catalog) Rules() []Rule {
	return c.rules
}

// Get returns a rule by id.
func (c *Catalog) Get(id string) (*Rule, bool) {
	r, ok := c.byID[id]
	return r, ok
}

// ByCategory returns the rules belonging to a category.
func (c *Catalog) ByCategory(cat diag.Category) []*Rule {
	var out []*Rule
	for i := range c.rules {
		if c.rules[i].Category == cat {
			out = append(out, &c.rules[i])
		}
	}
	return out
}

// AntiPatterns returns only the rules whose match is itself the violation.
func (c *Catalog) AntiPatterns() []*Rule {
	var out []*Rule
	for i := range c.rules {
		if c.rules[i].AntiPattern {
			out = append(out, &c.rules[i])
		}
	}
	return out
}

// ForbiddenConstructs returns the compiled forbidden-construct table.
func (c *Catalog) ForbiddenConstructs() []ForbiddenConstruct {
	return c.forbidden
}

// CrateAlternative reports whether the crate is denylisted and, when it is,
// the suggested guest SDK alternative.
func (c *Catalog) CrateAlternative(name string) (string, bool) {
	alt, ok := c.crates[name]
	return alt, ok
}

// CrateUsePattern matches `use <crate>...;` statements.
func (c *Catalog) CrateUsePattern() *regexp.Regexp {
	return c.crateUse
}

// CrateExternPattern matches `extern crate <crate>` statements.
func (c *Catalog) CrateExternPattern() *regexp.Regexp {
	return c.crateExt
}

// Capabilities returns the closed capability call-shape table.
func (c *Catalog) Capabilities() []Capability {
	return c.capability
}

// KnownID reports whether the id names a catalog rule or one of the fixed
// synthetic ids used by the capability analyzer and the forbidden-crate
// check. Every emitted diagnostic must satisfy this predicate.
func (c *Catalog) KnownID(id string) bool {
	if _, ok := c.byID[id]; ok {
		return true
	}
	for i := range c.forbidden {
		if c.forbidden[i].ID == id {
			return true
		}
	}
	switch id {
	case SynthUnusedBound, SynthMissingBound, SynthNoBounds, SynthExcessBounds,
		SynthMissingFromInput, SynthMissingHandle:
		return true
	}
	if len(id) > len(crateIDPrefix) && id[:len(crateIDPrefix)] == crateIDPrefix {
		return true
	}
	return false
}

// Synthetic diagnostic ids produced outside the catalog tables.
const (
	SynthUnusedBound      = "capability_unused_bound"
	SynthMissingBound     = "capability_missing_bound"
	SynthNoBounds         = "capability_no_bounds"
	SynthExcessBounds     = "capability_excess_bounds"
	SynthMissingFromInput = "handler_missing_from_input"
	SynthMissingHandle    = "handler_missing_handle"

	crateIDPrefix = "forbidden_"
)

// CrateRuleID derives the synthetic id for a denylisted crate diagnostic.
func CrateRuleID(crate string) string {
	return crateIDPrefix + crate
}

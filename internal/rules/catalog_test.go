package rules

import (
	"testing"

	"guestlint/internal/diag"
)

func TestNewCatalogCompiles(t *testing.T) {
	c, err := NewCatalog()
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	if len(c.Rules()) == 0 {
		t.Fatalf("catalog has no rules")
	}
	for _, r := range c.Rules() {
		if r.ID == "" || r.Name == "" || r.Pattern == nil {
			t.Errorf("rule %q is missing metadata: %+v", r.ID, r)
		}
	}
	if len(c.ForbiddenConstructs()) == 0 {
		t.Fatalf("catalog has no forbidden constructs")
	}
	if len(c.Capabilities()) == 0 {
		t.Fatalf("catalog has no capability table")
	}
}

func TestCatalogIDsAreUnique(t *testing.T) {
	c, err := NewCatalog()
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	seen := make(map[string]struct{})
	for _, r := range c.Rules() {
		if _, dup := seen[r.ID]; dup {
			t.Errorf("duplicate rule id %q", r.ID)
		}
		seen[r.ID] = struct{}{}
	}
	for _, fc := range c.ForbiddenConstructs() {
		if _, dup := seen[fc.ID]; dup {
			t.Errorf("forbidden construct id %q collides with a rule", fc.ID)
		}
		seen[fc.ID] = struct{}{}
	}
}

func TestGetAndByCategory(t *testing.T) {
	c, err := NewCatalog()
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	r, ok := c.Get("error_generic_unwrap")
	if !ok {
		t.Fatalf("error_generic_unwrap not found")
	}
	if r.Category != diag.CatError {
		t.Errorf("error_generic_unwrap category = %v, want error", r.Category)
	}
	if !r.Pattern.MatchString(".unwrap()") {
		t.Errorf("error_generic_unwrap pattern must match .unwrap()")
	}

	if len(c.ByCategory(diag.CatWasm)) == 0 {
		t.Errorf("no wasm rules found")
	}
}

func TestKnownID(t *testing.T) {
	c, err := NewCatalog()
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	tests := []struct {
		id   string
		want bool
	}{
		{"error_generic_unwrap", true},
		{"std_fs", true},
		{SynthUnusedBound, true},
		{SynthMissingHandle, true},
		{CrateRuleID("reqwest"), true},
		{"made_up_rule", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := c.KnownID(tt.id); got != tt.want {
			t.Errorf("KnownID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestCratePatterns(t *testing.T) {
	c, err := NewCatalog()
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	tests := []struct {
		line  string
		crate string
	}{
		{`use reqwest::Client;`, "reqwest"},
		{`use tokio;`, "tokio"},
		{`extern crate redis;`, "redis"},
	}
	for _, tt := range tests {
		var crate string
		if m := c.CrateUsePattern().FindStringSubmatch(tt.line); m != nil {
			crate = m[1]
		} else if m := c.CrateExternPattern().FindStringSubmatch(tt.line); m != nil {
			crate = m[1]
		}
		if crate != tt.crate {
			t.Errorf("line %q: extracted crate %q, want %q", tt.line, crate, tt.crate)
		}
	}

	if _, forbidden := c.CrateAlternative("reqwest"); !forbidden {
		t.Errorf("reqwest must be denylisted")
	}
	if _, forbidden := c.CrateAlternative("serde"); forbidden {
		t.Errorf("serde must not be denylisted")
	}
}

func TestAntiPatternsExcludeLocationOnly(t *testing.T) {
	c, err := NewCatalog()
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	for _, r := range c.AntiPatterns() {
		if !r.AntiPattern {
			t.Errorf("AntiPatterns returned location-only rule %q", r.ID)
		}
	}
}

func TestIsCapabilityName(t *testing.T) {
	for _, name := range []string{"Config", "HttpRequest", "Publisher", "StateStore", "Identity", "TableStore"} {
		if !IsCapabilityName(name) {
			t.Errorf("%s must be a known capability", name)
		}
	}
	for _, name := range []string{"Send", "Sync", "Clone", "config"} {
		if IsCapabilityName(name) {
			t.Errorf("%s must not be a known capability", name)
		}
	}
}

package rules

import (
	"fmt"
	"regexp"
)

// Capability describes one provider trait and the textual call shapes that
// count as usage of it inside a handler block. The set is small and closed;
// it is a static lookup table, not an extension point.
type Capability struct {
	// Name is the provider trait name as it appears in a bound list.
	Name string
	// CallShapes match invocations of the trait's methods.
	CallShapes []*regexp.Regexp
}

type capabilitySpec struct {
	name   string
	shapes []string
}

// capabilitySpecs is the closed mapping from capability name to call
// shapes. Shape notes:
//   - Config reads take a string-literal key and are synchronous, so the
//     shape requires a quoted first argument and no .await.
//   - StateStore get/set/delete are awaited; get takes a non-literal key,
//     which keeps it disjoint from the Config shape.
func capabilitySpecs() []capabilitySpec {
	return []capabilitySpec{
		{
			name: "Config",
			shapes: []string{
				`ctx\.provider\.get\s*\(\s*"[^"]+"\s*\)\s*[?;.]`,
				`Config::get\s*\(`,
			},
		},
		{
			name: "HttpRequest",
			shapes: []string{
				`ctx\.provider\.fetch\s*\(`,
				`HttpRequest::fetch\s*\(`,
			},
		},
		{
			name: "Publisher",
			shapes: []string{
				`ctx\.provider\.send\s*\(`,
				`Publisher::send\s*\(`,
			},
		},
		{
			name: "StateStore",
			shapes: []string{
				`ctx\.provider\.get\s*\(\s*[^"\s][^)]*\)\s*\.\s*await`,
				`ctx\.provider\.set\s*\(`,
				`ctx\.provider\.delete\s*\(`,
				`StateStore::(?:get|set|delete)\s*\(`,
			},
		},
		{
			name: "Identity",
			shapes: []string{
				`ctx\.provider\.access_token\s*\(`,
				`Identity::access_token\s*\(`,
			},
		},
		{
			name: "TableStore",
			shapes: []string{
				`ctx\.provider\.query\s*\(`,
				`ctx\.provider\.exec\s*\(`,
				`TableStore::(?:query|exec)\s*\(`,
			},
		},
	}
}

func compileCapabilities() ([]Capability, error) {
	specs := capabilitySpecs()
	out := make([]Capability, 0, len(specs))
	for _, s := range specs {
		c := Capability{Name: s.name}
		for _, p := range s.shapes {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("capability %s: invalid call shape %q: %w", s.name, p, err)
			}
			c.CallShapes = append(c.CallShapes, re)
		}
		out = append(out, c)
	}
	return out, nil
}

// IsCapabilityName reports whether name is one of the known provider traits.
func IsCapabilityName(name string) bool {
	for _, s := range capabilitySpecs() {
		if s.name == name {
			return true
		}
	}
	return false
}

package agent

import (
	"fmt"
	"sort"
	"strings"
)

// Purpose names a remote capability.
type Purpose int

const (
	TrendAnalysis Purpose = iota + 1
	ImageGeneration
	ScriptGeneration
)

var purposeNames = map[Purpose]string{
	TrendAnalysis:    "trend",
	ImageGeneration:  "image",
	ScriptGeneration: "script",
}

// Purposes lists every purpose in declaration order.
func Purposes() []Purpose {
	return []Purpose{TrendAnalysis, ImageGeneration, ScriptGeneration}
}

func (p Purpose) String() string {
	if name, ok := purposeNames[p]; ok {
		return name
	}
	return fmt.Sprintf("purpose(%d)", int(p))
}

// Valid reports whether p is one of the declared purposes.
func (p Purpose) Valid() bool {
	_, ok := purposeNames[p]
	return ok
}

// ParsePurpose accepts the short names plus a few long-form aliases.
func ParsePurpose(s string) (Purpose, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trend", "trends", "trend_analysis", "trend-analysis":
		return TrendAnalysis, nil
	case "image", "images", "visuals", "image_generation", "image-generation":
		return ImageGeneration, nil
	case "script", "scripts", "script_generation", "script-generation":
		return ScriptGeneration, nil
	default:
		return 0, fmt.Errorf("agent: unknown purpose %q", s)
	}
}

// Registry maps purposes to opaque agent identifiers.
type Registry struct {
	ids map[Purpose]string
}

// NewRegistry builds a registry from config keys (see ParsePurpose). Every
// purpose must be mapped to a non-empty identifier.
func NewRegistry(agents map[string]string) (*Registry, error) {
	r := &Registry{ids: make(map[Purpose]string, len(purposeNames))}
	keys := make([]string, 0, len(agents))
	for k := range agents {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		p, err := ParsePurpose(k)
		if err != nil {
			return nil, err
		}
		id := strings.TrimSpace(agents[k])
		if id == "" {
			return nil, fmt.Errorf("agent: empty identifier for %s", p)
		}
		if prev, dup := r.ids[p]; dup && prev != id {
			return nil, fmt.Errorf("agent: %s mapped twice (%s, %s)", p, prev, id)
		}
		r.ids[p] = id
	}
	for _, p := range Purposes() {
		if _, ok := r.ids[p]; !ok {
			return nil, fmt.Errorf("agent: no identifier configured for %s", p)
		}
	}
	return r, nil
}

// Lookup returns the identifier for p.
func (r *Registry) Lookup(p Purpose) (string, error) {
	if r != nil {
		if id, ok := r.ids[p]; ok {
			return id, nil
		}
	}
	return "", fmt.Errorf("agent: no identifier configured for %s", p)
}

// PurposeOf is the reverse of Lookup.
func (r *Registry) PurposeOf(agentID string) (Purpose, bool) {
	if r == nil {
		return 0, false
	}
	for p, id := range r.ids {
		if id == agentID {
			return p, true
		}
	}
	return 0, false
}

// Package aliases maps friendly names to object paths so scripts and
// tests do not hardcode deep widget paths. Alias files are flat YAML
// mappings; values may reference other aliases with ${name} and are
// expanded when the file loads, in any definition order.
package aliases

import (
	"fmt"
	"os"
	"regexp"
	"sort"

	"github.com/aretw0/qpilot/pkg/domain"
	"gopkg.in/yaml.v3"
)

// refPattern matches one ${name} reference inside an alias value.
var refPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Set is an immutable collection of fully expanded aliases.
type Set struct {
	entries map[string]string
}

// Load reads and expands a YAML aliases file.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading aliases file: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("aliases file %s: %w", path, err)
	}
	return s, nil
}

// Parse builds a Set from YAML content. Duplicate names are rejected by
// the YAML decoder; unknown or cyclic ${name} references fail here, not
// at resolve time.
func Parse(data []byte) (*Set, error) {
	raw := map[string]string{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding aliases: %w", err)
	}
	return FromMap(raw)
}

// FromMap expands an in-memory alias mapping the same way Parse does.
func FromMap(raw map[string]string) (*Set, error) {
	x := &expansion{
		raw:    raw,
		done:   make(map[string]string, len(raw)),
		active: map[string]bool{},
	}
	for _, name := range names(raw) {
		if _, err := x.expand(name, ""); err != nil {
			return nil, err
		}
	}
	return &Set{entries: x.done}, nil
}

// Resolve returns the object path behind name.
func (s *Set) Resolve(name string) (string, error) {
	if v, ok := s.entries[name]; ok {
		return v, nil
	}
	return "", &domain.NotFoundError{Entity: "alias", Value: name, Candidates: s.Names()}
}

// Names returns every alias name in sorted order.
func (s *Set) Names() []string { return names(s.entries) }

// Len reports how many aliases the set holds.
func (s *Set) Len() int { return len(s.entries) }

// All returns a copy of the expanded name to path mapping.
func (s *Set) All() map[string]string {
	out := make(map[string]string, len(s.entries))
	for k, v := range s.entries {
		out[k] = v
	}
	return out
}

// Merge layers overlay on top of s and returns the combined set. Names
// present in both keep the overlay's path. Neither input is modified; a
// nil overlay yields a plain copy.
func (s *Set) Merge(overlay *Set) *Set {
	out := s.All()
	if overlay != nil {
		for k, v := range overlay.entries {
			out[k] = v
		}
	}
	return &Set{entries: out}
}

// expansion resolves ${name} references lazily. done memoizes finished
// entries; active holds the names currently being expanded, so a name
// showing up in it again is a cycle.
type expansion struct {
	raw    map[string]string
	done   map[string]string
	active map[string]bool
}

func (x *expansion) expand(name, from string) (string, error) {
	if v, ok := x.done[name]; ok {
		return v, nil
	}
	if x.active[name] {
		return "", fmt.Errorf("alias %q is part of a reference cycle", name)
	}
	raw, ok := x.raw[name]
	if !ok {
		return "", &domain.NotFoundError{
			Entity:     "alias",
			Value:      name,
			Location:   from,
			Candidates: names(x.raw),
		}
	}

	x.active[name] = true
	defer delete(x.active, name)

	var expandErr error
	value := refPattern.ReplaceAllStringFunc(raw, func(m string) string {
		ref := refPattern.FindStringSubmatch(m)[1]
		v, err := x.expand(ref, name)
		if err != nil {
			if expandErr == nil {
				expandErr = err
			}
			return m
		}
		return v
	})
	if expandErr != nil {
		return "", expandErr
	}

	x.done[name] = value
	return value, nil
}

func names(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for name := range m {
		out = append(out, name)
	}
	sort.Strings(out) // Deterministic order
	return out
}

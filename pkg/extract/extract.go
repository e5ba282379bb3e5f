// Package extract turns free-text participant fields into faction names.
package extract

import (
	"sort"
	"strings"
)

// civilianMarker excludes entries such as "Civilians" or "civilian militia"
const civilianMarker = "civilian"

// Set is an unordered set of faction names
type Set map[string]struct{}

// Has reports whether name is in the set
func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Sorted returns the names in lexicographic order
func (s Set) Sorted() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Extract splits a raw side field on commas, trims whitespace, and drops
// empty and civilian entries. Duplicates collapse into one name.
func Extract(raw string) Set {
	set := make(Set)
	if raw == "" {
		return set
	}

	for _, token := range strings.Split(raw, ",") {
		name := strings.TrimSpace(token)
		if name == "" {
			continue
		}
		if strings.Contains(strings.ToLower(name), civilianMarker) {
			continue
		}
		set[name] = struct{}{}
	}

	return set
}

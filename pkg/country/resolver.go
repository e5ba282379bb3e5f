// Package country matches free-text country names from event data against
// the feature names of the map layer.
package country

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/ritzau/conflict-atlas/pkg/logging"
)

//go:embed aliases.yaml
var defaultAliases []byte

// minFuzzyLength keeps very short keys like "us" from matching everything
const minFuzzyLength = 4

// Strategy names the step of the chain that produced a match
type Strategy string

const (
	StrategyExact      Strategy = "exact"
	StrategyNormalized Strategy = "normalized"
	StrategyAlias      Strategy = "alias"
	StrategySubstring  Strategy = "substring"
	StrategyNone       Strategy = "none"
)

type aliasFile struct {
	Aliases map[string]string `yaml:"aliases"`
}

// DefaultAliases returns the built-in alias table
func DefaultAliases() map[string]string {
	aliases, err := parseAliases(defaultAliases)
	if err != nil {
		// The embedded table is part of the binary
		panic(fmt.Sprintf("embedded aliases: %v", err))
	}
	return aliases
}

// LoadAliases reads an alias table and merges it over the built-in one
func LoadAliases(path string) (map[string]string, error) {
	aliases := DefaultAliases()
	if path == "" {
		return aliases, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	overrides, err := parseAliases(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	for k, v := range overrides {
		aliases[k] = v
	}
	return aliases, nil
}

func parseAliases(data []byte) (map[string]string, error) {
	var f aliasFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if f.Aliases == nil {
		f.Aliases = make(map[string]string)
	}
	return f.Aliases, nil
}

// Resolver maps event country names to feature names through the chain
// exact, normalized, alias, substring. It is safe for concurrent use.
type Resolver struct {
	features   []string
	exact      map[string]string
	normalized map[string]string
	aliases    map[string]string // normalized alias -> feature

	mu     sync.Mutex
	missed map[string]bool
}

// NewResolver indexes the feature names. Alias targets that are not
// features are dropped.
func NewResolver(features []string, aliases map[string]string) *Resolver {
	r := &Resolver{
		exact:      make(map[string]string, len(features)),
		normalized: make(map[string]string, len(features)),
		aliases:    make(map[string]string, len(aliases)),
		missed:     make(map[string]bool),
	}

	for _, f := range features {
		if f == "" {
			continue
		}
		if _, dup := r.exact[f]; dup {
			continue
		}
		r.features = append(r.features, f)
		r.exact[f] = f
		key := Normalize(f)
		if _, taken := r.normalized[key]; !taken {
			r.normalized[key] = f
		}
	}
	sort.Strings(r.features)

	for from, to := range aliases {
		target, ok := r.exact[to]
		if !ok {
			target, ok = r.normalized[Normalize(to)]
		}
		if !ok {
			logging.Debug("alias target is not a map feature", "alias", from, "target", to)
			continue
		}
		r.aliases[Normalize(from)] = target
	}

	return r
}

// Features returns the indexed feature names, sorted
func (r *Resolver) Features() []string {
	return r.features
}

// Resolve returns the feature name for an event country name. Misses are
// logged once per name and reported as false.
func (r *Resolver) Resolve(name string) (string, Strategy, bool) {
	if f, ok := r.exact[name]; ok {
		return f, StrategyExact, true
	}

	key := Normalize(name)
	if key == "" {
		return "", StrategyNone, false
	}
	if f, ok := r.normalized[key]; ok {
		return f, StrategyNormalized, true
	}
	if f, ok := r.aliases[key]; ok {
		return f, StrategyAlias, true
	}
	if f, ok := r.substring(key); ok {
		return f, StrategySubstring, true
	}

	r.mu.Lock()
	first := !r.missed[name]
	r.missed[name] = true
	r.mu.Unlock()
	if first {
		logging.Warn("no map feature for country", "country", name)
	}
	return "", StrategyNone, false
}

// substring picks the feature whose normalized name contains the key, or
// is contained in it, with the smallest length difference
func (r *Resolver) substring(key string) (string, bool) {
	if len(key) < minFuzzyLength {
		return "", false
	}

	best := ""
	bestDiff := -1
	for _, f := range r.features {
		fk := Normalize(f)
		if len(fk) < minFuzzyLength {
			continue
		}
		if !strings.Contains(fk, key) && !strings.Contains(key, fk) {
			continue
		}
		diff := len(fk) - len(key)
		if diff < 0 {
			diff = -diff
		}
		if bestDiff < 0 || diff < bestDiff {
			best, bestDiff = f, diff
		}
	}
	return best, bestDiff >= 0
}

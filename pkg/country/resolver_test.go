package country

import (
	"os"
	"path/filepath"
	"testing"
)

var features = []string{
	"Russia",
	"Dem. Rep. Congo",
	"Côte d'Ivoire",
	"Gambia",
	"United States of America",
	"Bosnia and Herz.",
	"Syria",
	"Sudan",
	"S. Sudan",
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Côte d'Ivoire", "cote d ivoire"},
		{"  The   Gambia ", "gambia"},
		{"Bosnia-Herzegovina", "bosnia herzegovina"},
		{"SYRIA", "syria"},
		{"The", "the"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolveChain(t *testing.T) {
	r := NewResolver(features, DefaultAliases())

	tests := []struct {
		name     string
		want     string
		strategy Strategy
		ok       bool
	}{
		{"Syria", "Syria", StrategyExact, true},
		{"the gambia", "Gambia", StrategyNormalized, true},
		{"Cote d'Ivoire", "Côte d'Ivoire", StrategyNormalized, true},
		{"Russia (Soviet Union)", "Russia", StrategyAlias, true},
		{"DR Congo (Zaire)", "Dem. Rep. Congo", StrategyAlias, true},
		{"Bosnia-Herzegovina", "Bosnia and Herz.", StrategyAlias, true},
		{"Ivory Coast", "Côte d'Ivoire", StrategyAlias, true},
		{"Syrian Arab Republic (Syria)", "Syria", StrategySubstring, true},
		{"Atlantis", "", StrategyNone, false},
		{"", "", StrategyNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, strategy, ok := r.Resolve(tt.name)
			if got != tt.want || strategy != tt.strategy || ok != tt.ok {
				t.Errorf("Resolve(%q) = (%q, %s, %v), want (%q, %s, %v)",
					tt.name, got, strategy, ok, tt.want, tt.strategy, tt.ok)
			}
		})
	}
}

func TestSubstringPrefersClosestLength(t *testing.T) {
	r := NewResolver(features, nil)

	got, strategy, ok := r.Resolve("Republic of Sudan")
	if !ok || got != "Sudan" || strategy != StrategySubstring {
		t.Errorf("Resolve = (%q, %s, %v), want Sudan by substring", got, strategy, ok)
	}
}

func TestAliasesDropUnknownTargets(t *testing.T) {
	r := NewResolver([]string{"Chad"}, map[string]string{"Tchad": "Chad", "Zaire": "Nowhere"})

	if got, _, ok := r.Resolve("Tchad"); !ok || got != "Chad" {
		t.Errorf("Tchad resolved to %q, %v", got, ok)
	}
	if _, _, ok := r.Resolve("Zaire"); ok {
		t.Error("alias to a missing feature should not resolve")
	}
}

func TestLoadAliasesMergesOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aliases.yaml")
	content := "aliases:\n  \"Burma\": \"Myanmar\"\n  \"USA\": \"United States\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	aliases, err := LoadAliases(path)
	if err != nil {
		t.Fatalf("LoadAliases: %v", err)
	}
	if aliases["Burma"] != "Myanmar" {
		t.Errorf("override missing: %v", aliases["Burma"])
	}
	if aliases["USA"] != "United States" {
		t.Errorf("override did not win: %v", aliases["USA"])
	}
	if aliases["Russia (Soviet Union)"] != "Russia" {
		t.Error("built-in aliases lost")
	}

	if _, err := LoadAliases(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

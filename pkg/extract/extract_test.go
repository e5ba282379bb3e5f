package extract

import (
	"reflect"
	"testing"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty", "", []string{}},
		{"single", "Government of Mali", []string{"Government of Mali"}},
		{"trims and splits", " Alpha ,Gamma,  Beta ", []string{"Alpha", "Beta", "Gamma"}},
		{"drops empty tokens", "Alpha,, ,Beta,", []string{"Alpha", "Beta"}},
		{"deduplicates", "Alpha, Alpha ,Alpha", []string{"Alpha"}},
		{"drops civilians", "Civilians", []string{}},
		{"civilian match is case-insensitive", "Alpha, CIVILIANS, civilian militia", []string{"Alpha"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.raw).Sorted()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Extract(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestSetHas(t *testing.T) {
	s := Extract("Alpha, Beta")
	if !s.Has("Alpha") || !s.Has("Beta") {
		t.Error("expected Alpha and Beta in set")
	}
	if s.Has("Gamma") {
		t.Error("Gamma should not be in set")
	}
}

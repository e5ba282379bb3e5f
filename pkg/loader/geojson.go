package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// nameProperties are tried in order to find a feature's display name
var nameProperties = []string{"name", "NAME", "ADMIN", "admin", "name_long"}

type featureCollection struct {
	Type     string `json:"type"`
	Features []struct {
		Properties map[string]any `json:"properties"`
	} `json:"features"`
}

// FeatureNames reads the country names of a GeoJSON FeatureCollection.
// Geometry is left to the browser; only names are needed for resolution.
func FeatureNames(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var fc featureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("%s: expected FeatureCollection, got %q", path, fc.Type)
	}

	seen := make(map[string]bool)
	names := make([]string, 0, len(fc.Features))
	for _, f := range fc.Features {
		for _, prop := range nameProperties {
			name, ok := f.Properties[prop].(string)
			if !ok || name == "" {
				continue
			}
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
			break
		}
	}
	sort.Strings(names)
	return names, nil
}

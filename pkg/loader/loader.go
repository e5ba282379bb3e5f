// Package loader reads event tables into model.Event values. All type
// coercion happens here; malformed or missing fields become zero values.
package loader

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ritzau/conflict-atlas/pkg/logging"
	"github.com/ritzau/conflict-atlas/pkg/model"
)

// Column names shared by the CSV header and the SQLite table
const (
	ColID              = "id"
	ColYear            = "year"
	ColMonth           = "month"
	ColCountry         = "country"
	ColRegion          = "region"
	ColBest            = "best"
	ColDeathsA         = "deaths_a"
	ColDeathsB         = "deaths_b"
	ColDeathsCivilians = "deaths_civilians"
	ColDeathsUnknown   = "deaths_unknown"
	ColViolenceType    = "type_of_violence"
	ColSideA           = "side_a"
	ColSideB           = "side_b"
	ColLatitude        = "latitude"
	ColLongitude       = "longitude"
)

// Source supplies the full event list
type Source interface {
	Load(ctx context.Context) ([]model.Event, error)
	Path() string
}

// Open picks a source by file extension
func Open(path string) (Source, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return NewCSVSource(path), nil
	case ".db", ".sqlite", ".sqlite3":
		return NewSQLiteSource(path), nil
	default:
		return nil, fmt.Errorf("unsupported data file %s: expected .csv or .sqlite", path)
	}
}

// parseFloat coerces a numeric field, treating blanks and garbage as zero
func parseFloat(field, raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		logging.Debug("malformed number", "field", field, "value", raw)
		return 0, false
	}
	return v, true
}

func parseInt(field, raw string) int {
	v, ok := parseFloat(field, raw)
	if !ok {
		return 0
	}
	return int(v)
}

// violenceType maps the UCDP code, falling back to unset for unknown codes
func violenceType(code int) model.ViolenceType {
	v := model.ViolenceType(code)
	if v < model.ViolenceStateBased || v > model.ViolenceOneSided {
		return model.ViolenceAny
	}
	return v
}

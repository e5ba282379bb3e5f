package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ritzau/conflict-atlas/pkg/logging"
	"github.com/ritzau/conflict-atlas/pkg/model"
)

// CSVSource reads a UCDP GED style CSV export
type CSVSource struct {
	path string
}

// NewCSVSource creates a source for the given file
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

// Path returns the file the source reads
func (s *CSVSource) Path() string {
	return s.path
}

// Load parses the whole file
func (s *CSVSource) Load(ctx context.Context) ([]model.Event, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", s.path, err)
	}
	defer f.Close()

	events, err := ReadCSV(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}

	logging.Info("loaded events", "source", s.path, "count", len(events))
	return events, nil
}

// ReadCSV parses events from r. The header row is required; only the year
// and side columns must be present.
func ReadCSV(ctx context.Context, r io.Reader) ([]model.Event, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("missing header row")
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		cols[name] = i
	}
	for _, required := range []string{ColYear, ColSideA, ColSideB} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	var events []model.Event
	for row := 1; ; row++ {
		if row%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}

		get := func(col string) string {
			i, ok := cols[col]
			if !ok || i >= len(record) {
				return ""
			}
			return record[i]
		}

		events = append(events, eventFromFields(row, get))
	}

	return events, nil
}

// eventFromFields builds an event from a column lookup. Row numbers stand
// in for missing ids.
func eventFromFields(row int, get func(string) string) model.Event {
	e := model.Event{
		ID:           strings.TrimSpace(get(ColID)),
		Year:         parseInt(ColYear, get(ColYear)),
		Month:        parseInt(ColMonth, get(ColMonth)),
		Country:      strings.TrimSpace(get(ColCountry)),
		Region:       strings.TrimSpace(get(ColRegion)),
		ViolenceType: violenceType(parseInt(ColViolenceType, get(ColViolenceType))),
		SideA:        get(ColSideA),
		SideB:        get(ColSideB),
	}
	if e.ID == "" {
		e.ID = strconv.Itoa(row)
	}

	e.Best, _ = parseFloat(ColBest, get(ColBest))
	e.DeathsA, _ = parseFloat(ColDeathsA, get(ColDeathsA))
	e.DeathsB, _ = parseFloat(ColDeathsB, get(ColDeathsB))
	e.DeathsCivilians, _ = parseFloat(ColDeathsCivilians, get(ColDeathsCivilians))
	e.DeathsUnknown, _ = parseFloat(ColDeathsUnknown, get(ColDeathsUnknown))

	lat, latOK := parseFloat(ColLatitude, get(ColLatitude))
	lon, lonOK := parseFloat(ColLongitude, get(ColLongitude))
	if latOK && lonOK {
		e.Latitude, e.Longitude, e.HasCoordinates = lat, lon, true
	}

	return e
}

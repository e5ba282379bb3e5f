package loader

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ritzau/conflict-atlas/pkg/model"
)

const sampleCSV = `id,year,month,country,region,best,deaths_a,deaths_b,deaths_civilians,deaths_unknown,type_of_violence,side_a,side_b,latitude,longitude
101,2001,3,Mali,Africa,10,4,3,2,1,1,Government of Mali,MNLA,17.5,-3.9
,2002,,Niger,Africa,abc,,,,,2,"Alpha, Gamma",Beta,,
103,2003,7,Syria,Middle East,-5,0,0,0,0,9,Government of Syria,Civilians,35.1,36.7
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadCSV(t *testing.T) {
	events, err := ReadCSV(context.Background(), strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}

	first := events[0]
	if first.ID != "101" || first.Year != 2001 || first.Month != 3 || first.Best != 10 {
		t.Errorf("first event = %+v", first)
	}
	if first.ViolenceType != model.ViolenceStateBased || !first.HasCoordinates || first.Longitude != -3.9 {
		t.Errorf("first event coercion = %+v", first)
	}

	second := events[1]
	if second.ID != "2" {
		t.Errorf("missing id should fall back to row number, got %q", second.ID)
	}
	if second.Best != 0 || second.HasCoordinates {
		t.Errorf("malformed fields should default to zero: %+v", second)
	}
	if second.SideA != "Alpha, Gamma" {
		t.Errorf("side A = %q", second.SideA)
	}

	third := events[2]
	if third.ViolenceType != model.ViolenceAny {
		t.Errorf("unknown violence code should be unset, got %v", third.ViolenceType)
	}
	if third.Casualties() != 0 {
		t.Errorf("negative best should count as zero casualties, got %v", third.Casualties())
	}
}

func TestReadCSVRequiresColumns(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"no sides", "id,year\n1,2001\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadCSV(context.Background(), strings.NewReader(tt.input)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestReadCSVShortRows(t *testing.T) {
	input := "year,side_a,side_b,best\n2001,Alpha\n"
	events, err := ReadCSV(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(events) != 1 || events[0].SideB != "" || events[0].Best != 0 {
		t.Errorf("short row = %+v", events)
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	events, err := ReadCSV(ctx, strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "events.sqlite")
	if err := SaveSQLite(ctx, path, events); err != nil {
		t.Fatalf("SaveSQLite: %v", err)
	}

	loaded, err := NewSQLiteSource(path).Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded) != len(events) {
		t.Fatalf("loaded %d events, want %d", len(loaded), len(events))
	}
	for i := range events {
		if loaded[i] != events[i] {
			t.Errorf("event %d = %+v, want %+v", i, loaded[i], events[i])
		}
	}
}

func TestSQLiteMissingFile(t *testing.T) {
	_, err := NewSQLiteSource(filepath.Join(t.TempDir(), "missing.db")).Load(context.Background())
	if err == nil {
		t.Error("expected error for missing database")
	}
}

func TestOpen(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{"events.csv", "*loader.CSVSource", false},
		{"events.SQLITE", "*loader.SQLiteSource", false},
		{"events.db", "*loader.SQLiteSource", false},
		{"events.xlsx", "", true},
	}
	for _, tt := range tests {
		src, err := Open(tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("Open(%q) error = %v", tt.path, err)
			continue
		}
		if tt.wantErr {
			continue
		}
		switch src.(type) {
		case *CSVSource:
			if tt.want != "*loader.CSVSource" {
				t.Errorf("Open(%q) = CSV source", tt.path)
			}
		case *SQLiteSource:
			if tt.want != "*loader.SQLiteSource" {
				t.Errorf("Open(%q) = SQLite source", tt.path)
			}
		}
	}
}

func TestCSVSourceLoad(t *testing.T) {
	path := writeFile(t, "events.csv", sampleCSV)
	events, err := NewCSVSource(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(events) != 3 {
		t.Errorf("got %d events", len(events))
	}
}

func TestFeatureNames(t *testing.T) {
	geo := `{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{"name":"Mali"},"geometry":null},
		{"type":"Feature","properties":{"ADMIN":"Niger"},"geometry":null},
		{"type":"Feature","properties":{"name":"Mali"},"geometry":null},
		{"type":"Feature","properties":{"iso":"XX"},"geometry":null}
	]}`
	names, err := FeatureNames(writeFile(t, "world.geojson", geo))
	if err != nil {
		t.Fatalf("FeatureNames: %v", err)
	}
	if len(names) != 2 || names[0] != "Mali" || names[1] != "Niger" {
		t.Errorf("names = %v", names)
	}

	if _, err := FeatureNames(writeFile(t, "bad.geojson", `{"type":"Feature"}`)); err == nil {
		t.Error("expected error for non-collection")
	}
}

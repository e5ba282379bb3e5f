package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/ritzau/conflict-atlas/pkg/config"
	"github.com/ritzau/conflict-atlas/pkg/country"
	"github.com/ritzau/conflict-atlas/pkg/loader"
	"github.com/ritzau/conflict-atlas/pkg/window"
)

const eventsCSV = `id,year,country,region,best,type_of_violence,side_a,side_b
1,2001,Mali,Africa,10,1,Alpha,Beta
2,2002,Niger,Africa,20,1,"Alpha, Gamma",Beta
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestImportCommand(t *testing.T) {
	testChdir(t, t.TempDir())
	csvPath := writeTemp(t, "events.csv", eventsCSV)
	dbPath := filepath.Join(t.TempDir(), "events.db")

	root := rootCmd()
	root.SetArgs([]string{"import", csvPath, dbPath})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}

	events, err := loader.NewSQLiteSource(dbPath).Load(testContext(t))
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 || events[1].SideA != "Alpha, Gamma" {
		t.Errorf("imported events = %+v", events)
	}
}

func TestImportCommandNeedsTwoArgs(t *testing.T) {
	root := rootCmd()
	root.SetArgs([]string{"import", "only-one.csv"})
	if err := root.Execute(); err == nil {
		t.Error("expected an argument error")
	}
}

func TestReportListsUnresolvedCountries(t *testing.T) {
	color.NoColor = true

	csvPath := writeTemp(t, "events.csv", eventsCSV)
	cfg := &config.Config{Data: csvPath, Countries: "countries.geojson"}
	cfg.Graph.Threshold = 1
	cfg.Graph.MinRadius = 4
	cfg.Graph.MaxRadius = 32

	events, err := loader.NewCSVSource(csvPath).Load(testContext(t))
	if err != nil {
		t.Fatal(err)
	}
	resolver := country.NewResolver([]string{"Mali"}, nil)

	var buf bytes.Buffer
	writeReport(&buf, cfg, events, resolver, window.Filter{}, 5)
	out := buf.String()

	if !strings.Contains(out, "Factions: 3") {
		t.Errorf("report missing faction count:\n%s", out)
	}
	if !strings.Contains(out, "Unmapped countries: 1") || !strings.Contains(out, "  Niger\n") {
		t.Errorf("report missing unresolved Niger:\n%s", out)
	}
}

func TestLoadEventsWithoutData(t *testing.T) {
	if _, err := loadEvents(testContext(t), &config.Config{}); err != errNoData {
		t.Errorf("err = %v, want errNoData", err)
	}
}

// testChdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func testChdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

// testContext mirrors testing.T.Context (Go 1.24+) for older toolchains.
func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}

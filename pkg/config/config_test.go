package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func newFlags() *pflag.FlagSet {
	f := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f.String("config", DefaultFile, "")
	f.String("data", "", "")
	f.Int("port", 8080, "")
	f.Bool("watch", false, "")
	f.Int("threshold", 5, "")
	f.Int("year", 0, "")
	f.Duration("debounce", 150*time.Millisecond, "")
	return f
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "atlas.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	testChdir(t, t.TempDir())

	cfg, err := Load(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 8080 || !cfg.OpenBrowser || cfg.Watch {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.Graph.Threshold != 5 || cfg.Graph.Year != 0 {
		t.Errorf("graph defaults = %+v", cfg.Graph)
	}
	if cfg.Interaction.Debounce != 150*time.Millisecond || cfg.Interaction.Guard != 300*time.Millisecond {
		t.Errorf("interaction defaults = %+v", cfg.Interaction)
	}
}

func TestLoadPrecedence(t *testing.T) {
	path := writeConfig(t, `
data = "from-file.csv"
port = 9000

[graph]
threshold = 3
year = 1995

[interaction]
debounce = "400ms"
`)

	tests := []struct {
		name      string
		env       map[string]string
		args      []string
		port      int
		threshold int
		year      int
		debounce  time.Duration
		data      string
	}{
		{
			name:      "file over defaults",
			port:      9000,
			threshold: 3,
			year:      1995,
			debounce:  400 * time.Millisecond,
			data:      "from-file.csv",
		},
		{
			name:      "env over file",
			env:       map[string]string{"CONFLICT_ATLAS_PORT": "9100", "CONFLICT_ATLAS_GRAPH_THRESHOLD": "2"},
			port:      9100,
			threshold: 2,
			year:      1995,
			debounce:  400 * time.Millisecond,
			data:      "from-file.csv",
		},
		{
			name:      "flags over env",
			env:       map[string]string{"CONFLICT_ATLAS_PORT": "9100"},
			args:      []string{"--port=9200", "--threshold=7", "--debounce=1s", "--data=flag.db"},
			port:      9200,
			threshold: 7,
			year:      1995,
			debounce:  time.Second,
			data:      "flag.db",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			f := newFlags()
			if err := f.Parse(append([]string{"--config=" + path}, tt.args...)); err != nil {
				t.Fatal(err)
			}

			cfg, err := Load(f)
			if err != nil {
				t.Fatal(err)
			}
			if cfg.Port != tt.port {
				t.Errorf("port = %d, want %d", cfg.Port, tt.port)
			}
			if cfg.Graph.Threshold != tt.threshold {
				t.Errorf("threshold = %d, want %d", cfg.Graph.Threshold, tt.threshold)
			}
			if cfg.Graph.Year != tt.year {
				t.Errorf("year = %d, want %d", cfg.Graph.Year, tt.year)
			}
			if cfg.Interaction.Debounce != tt.debounce {
				t.Errorf("debounce = %v, want %v", cfg.Interaction.Debounce, tt.debounce)
			}
			if cfg.Data != tt.data {
				t.Errorf("data = %q, want %q", cfg.Data, tt.data)
			}
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	f := newFlags()
	if err := f.Parse([]string{"--config=" + filepath.Join(t.TempDir(), "missing.toml")}); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(f); err == nil {
		t.Error("expected an error for a missing --config file")
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		toml string
	}{
		{"zero threshold", "[graph]\nthreshold = 0\n"},
		{"negative year", "[graph]\nyear = -5\n"},
		{"inverted radius", "[graph]\nminradius = 10.0\nmaxradius = 2.0\n"},
		{"bad port", "port = 70000\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFlags()
			if err := f.Parse([]string{"--config=" + writeConfig(t, tt.toml)}); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(f); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestSessionOptions(t *testing.T) {
	testChdir(t, t.TempDir())
	t.Setenv("CONFLICT_ATLAS_GRAPH_YEAR", "2003")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatal(err)
	}
	opts := cfg.SessionOptions()
	if opts.InitialYear != 2003 || opts.Graph.MinParticipation != 5 {
		t.Errorf("options = %+v", opts)
	}
	if opts.Throttle != cfg.Interaction.Throttle || opts.Guard != cfg.Interaction.Guard {
		t.Errorf("interaction timings not carried over: %+v", opts)
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

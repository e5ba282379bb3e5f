package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/ritzau/conflict-atlas/pkg/dashboard"
	"github.com/ritzau/conflict-atlas/pkg/graph"
	"github.com/ritzau/conflict-atlas/pkg/layout"
)

// DefaultFile is the config file read from the working directory
const DefaultFile = "conflict-atlas.toml"

// EnvPrefix prefixes every environment override, e.g. CONFLICT_ATLAS_PORT
const EnvPrefix = "CONFLICT_ATLAS_"

// Config holds all configuration for the application
type Config struct {
	Data        string            `koanf:"data"`      // Event CSV or SQLite file
	Countries   string            `koanf:"countries"` // GeoJSON with map feature names
	Aliases     string            `koanf:"aliases"`   // YAML alias overrides
	Port        int               `koanf:"port"`
	Watch       bool              `koanf:"watch"`
	OpenBrowser bool              `koanf:"open"`
	Verbosity   string            `koanf:"verbosity"`
	VerboseCnt  int               `koanf:"verbose"`
	JSONLogs    bool              `koanf:"json"`
	Graph       GraphConfig       `koanf:"graph"`
	Interaction InteractionConfig `koanf:"interaction"`
}

// GraphConfig controls graph construction and layout
type GraphConfig struct {
	Threshold int     `koanf:"threshold"` // Minimum events for a faction node
	Year      int     `koanf:"year"`      // Initial slider position, 0 = all years
	MinRadius float64 `koanf:"minradius"`
	MaxRadius float64 `koanf:"maxradius"`
	Height    float64 `koanf:"height"`
}

// InteractionConfig holds the UI timing knobs
type InteractionConfig struct {
	DoubleClick time.Duration `koanf:"doubleclick"`
	Debounce    time.Duration `koanf:"debounce"`
	MaxWait     time.Duration `koanf:"maxwait"`
	Throttle    float64       `koanf:"throttle"` // Focus refreshes per second
	Guard       time.Duration `koanf:"guard"`
}

// flagKeys maps dashed flag names onto nested config keys
var flagKeys = map[string]string{
	"threshold":    "graph.threshold",
	"year":         "graph.year",
	"min-radius":   "graph.minradius",
	"max-radius":   "graph.maxradius",
	"height":       "graph.height",
	"double-click": "interaction.doubleclick",
	"debounce":     "interaction.debounce",
	"max-wait":     "interaction.maxwait",
	"throttle":     "interaction.throttle",
	"guard":        "interaction.guard",
}

func defaults() map[string]interface{} {
	g := graph.DefaultOptions()
	d := dashboard.DefaultOptions()
	return map[string]interface{}{
		"data":      "",
		"countries": "",
		"aliases":   "",
		"port":      8080,
		"watch":     false,
		"open":      true,
		"verbosity": "",
		"verbose":   0,
		"json":      false,
		"graph": map[string]interface{}{
			"threshold": g.MinParticipation,
			"year":      0,
			"minradius": g.MinRadius,
			"maxradius": g.MaxRadius,
			"height":    layout.DefaultHeight,
		},
		"interaction": map[string]interface{}{
			"doubleclick": d.DoubleClick.String(),
			"debounce":    d.Debounce.String(),
			"maxwait":     d.MaxWait.String(),
			"throttle":    d.Throttle,
			"guard":       d.Guard.String(),
		},
	}
}

// Load loads configuration from defaults, config file, environment variables, and flags.
// Priority: Flags > Env > Config File > Defaults
//
// The config file is DefaultFile unless f carries a "config" flag. A missing
// default file is fine; a missing file that was asked for is an error.
func Load(f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(makeMapProvider(defaults()), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	path, explicit := configPath(f)
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	// 3. Environment Variables
	// Prefix: CONFLICT_ATLAS_ (e.g., CONFLICT_ATLAS_GRAPH_THRESHOLD=3)
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(
			strings.TrimPrefix(s, EnvPrefix)), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if f != nil {
		provider := posflag.ProviderWithFlag(f, ".", k, func(fl *pflag.Flag) (string, interface{}) {
			key := fl.Name
			if nested, ok := flagKeys[key]; ok {
				key = nested
			}
			return key, posflag.FlagVal(f, fl)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// Unmarshal into struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func configPath(f *pflag.FlagSet) (string, bool) {
	if f == nil {
		return DefaultFile, false
	}
	fl := f.Lookup("config")
	if fl == nil || fl.Value.String() == "" {
		return DefaultFile, false
	}
	return fl.Value.String(), fl.Changed
}

// Validate rejects settings the dashboard cannot run with
func (c *Config) Validate() error {
	switch {
	case c.Port < 0 || c.Port > 65535:
		return fmt.Errorf("port %d out of range", c.Port)
	case c.Graph.Threshold < 1:
		return fmt.Errorf("graph threshold must be at least 1, got %d", c.Graph.Threshold)
	case c.Graph.Year < 0:
		return fmt.Errorf("graph year must not be negative, got %d", c.Graph.Year)
	case c.Graph.MinRadius <= 0 || c.Graph.MaxRadius < c.Graph.MinRadius:
		return fmt.Errorf("invalid node radius range %v..%v", c.Graph.MinRadius, c.Graph.MaxRadius)
	case c.Graph.Height <= 0:
		return fmt.Errorf("graph height must be positive, got %v", c.Graph.Height)
	case c.Interaction.Throttle <= 0:
		return fmt.Errorf("throttle must be positive, got %v", c.Interaction.Throttle)
	}
	return nil
}

// SessionOptions converts the config into dashboard session options
func (c *Config) SessionOptions() dashboard.Options {
	opts := dashboard.DefaultOptions()
	opts.Graph = graph.Options{
		MinParticipation: c.Graph.Threshold,
		MinRadius:        c.Graph.MinRadius,
		MaxRadius:        c.Graph.MaxRadius,
	}
	opts.Height = c.Graph.Height
	opts.InitialYear = c.Graph.Year
	opts.DoubleClick = c.Interaction.DoubleClick
	opts.Debounce = c.Interaction.Debounce
	opts.MaxWait = c.Interaction.MaxWait
	opts.Throttle = c.Interaction.Throttle
	opts.Guard = c.Interaction.Guard
	return opts
}

// Helper to use map as a provider
type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]interface{}, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}

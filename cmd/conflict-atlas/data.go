package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ritzau/conflict-atlas/pkg/config"
	"github.com/ritzau/conflict-atlas/pkg/country"
	"github.com/ritzau/conflict-atlas/pkg/loader"
	"github.com/ritzau/conflict-atlas/pkg/logging"
	"github.com/ritzau/conflict-atlas/pkg/model"
)

var errNoData = errors.New("no event data configured; pass --data or set data in the config file")

// loadEvents reads the configured event file
func loadEvents(ctx context.Context, cfg *config.Config) ([]model.Event, error) {
	if cfg.Data == "" {
		return nil, errNoData
	}
	src, err := loader.Open(cfg.Data)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	events, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", src.Path(), err)
	}
	logging.Info("events loaded",
		"source", src.Path(),
		"count", len(events),
		"durationMs", time.Since(start).Milliseconds())
	return events, nil
}

// loadResolver builds the country resolver from the feature file and alias
// overrides. Without a feature file every country stays unresolved.
func loadResolver(cfg *config.Config) (*country.Resolver, error) {
	var features []string
	if cfg.Countries != "" {
		names, err := loader.FeatureNames(cfg.Countries)
		if err != nil {
			return nil, err
		}
		features = names
	}

	aliases, err := country.LoadAliases(cfg.Aliases)
	if err != nil {
		return nil, err
	}

	logging.Debug("country resolver ready", "features", len(features), "aliases", len(aliases))
	return country.NewResolver(features, aliases), nil
}

package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ritzau/conflict-atlas/pkg/config"
	"github.com/ritzau/conflict-atlas/pkg/country"
	"github.com/ritzau/conflict-atlas/pkg/graph"
	"github.com/ritzau/conflict-atlas/pkg/model"
	"github.com/ritzau/conflict-atlas/pkg/output"
	"github.com/ritzau/conflict-atlas/pkg/stats"
	"github.com/ritzau/conflict-atlas/pkg/window"
)

func reportCmd() *cobra.Command {
	var (
		violence int
		region   string
		top      int
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the faction graph for one time window",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if violence < int(model.ViolenceAny) || violence > int(model.ViolenceOneSided) {
				return fmt.Errorf("violence type must be 0-3, got %d", violence)
			}

			events, err := loadEvents(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			resolver, err := loadResolver(cfg)
			if err != nil {
				return err
			}

			f := window.Filter{
				Year:         cfg.Graph.Year,
				ViolenceType: model.ViolenceType(violence),
				Region:       region,
			}
			writeReport(os.Stdout, cfg, events, resolver, f, top)
			return nil
		},
	}

	cmd.Flags().IntVar(&violence, "violence", 0, "Violence type: 0 any, 1 state-based, 2 non-state, 3 one-sided")
	cmd.Flags().StringVar(&region, "region", "", "Restrict to one region")
	cmd.Flags().IntVar(&top, "top", stats.DefaultTopN, "Number of countries to list")
	return cmd
}

func writeReport(w io.Writer, cfg *config.Config, events []model.Event, resolver *country.Resolver, f window.Filter, top int) {
	opts := cfg.SessionOptions()
	g := graph.Build(events, f, opts.Graph)

	r := output.NewReport(cfg.Data, events, f, g, top)
	if cfg.Countries != "" {
		r.Unresolved = unresolvedCountries(events, f, resolver)
	}
	output.PrintGraphReport(w, r)
}

// unresolvedCountries lists the countries in the window that match no map feature
func unresolvedCountries(events []model.Event, f window.Filter, resolver *country.Resolver) []string {
	var missing []string
	for name := range stats.CountryTotals(window.Apply(events, f)) {
		if _, _, ok := resolver.Resolve(name); !ok {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

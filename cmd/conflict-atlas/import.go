package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ritzau/conflict-atlas/pkg/loader"
	"github.com/ritzau/conflict-atlas/pkg/logging"
)

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <events.csv> <events.db>",
		Short: "Convert a UCDP CSV export into a SQLite database",
		Long: "Reads a UCDP GED CSV export and writes it to a SQLite file that\n" +
			"loads faster than the CSV. An existing events table is replaced.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadConfig(cmd); err != nil {
				return err
			}

			events, err := loader.NewCSVSource(args[0]).Load(cmd.Context())
			if err != nil {
				return err
			}
			if err := loader.SaveSQLite(cmd.Context(), args[1], events); err != nil {
				return err
			}

			logging.Info("import complete", "from", args[0], "to", args[1], "events", len(events))
			fmt.Printf("Imported %d events into %s\n", len(events), args[1])
			return nil
		},
	}
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ritzau/conflict-atlas/pkg/config"
	"github.com/ritzau/conflict-atlas/pkg/graph"
	"github.com/ritzau/conflict-atlas/pkg/logging"
)

var version = "0.1.0"

func main() {
	// A .env file is optional; real environment variables win
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: could not read .env: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "conflict-atlas",
		Short:         "Explore armed-conflict events as a faction graph and map",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String("config", config.DefaultFile, "Config file (TOML)")
	flags.String("data", "", "Event data file (.csv or .db)")
	flags.String("countries", "", "GeoJSON file with map country features")
	flags.String("aliases", "", "YAML file with extra country name aliases")
	flags.Int("threshold", graph.DefaultMinParticipation, "Minimum events for a faction to appear in the graph")
	flags.Int("year", 0, "Initial year (0 shows all years)")
	flags.String("verbosity", "", "Log level: trace, debug, info, warn, error")
	flags.CountP("verbose", "v", "Increase log verbosity (-v debug, -vv trace)")
	flags.Bool("json", false, "Log as JSON")

	root.AddCommand(
		serveCmd(),
		reportCmd(),
		importCmd(),
	)
	return root
}

// loadConfig reads the layered config for cmd and applies the log settings
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, err
	}

	logging.SetLevel(logging.ParseLevel(cfg.Verbosity, cfg.VerboseCnt))
	if cfg.JSONLogs {
		logging.SetJSONOutput()
	}
	logging.Debug("configuration loaded",
		"data", cfg.Data,
		"countries", cfg.Countries,
		"threshold", cfg.Graph.Threshold,
		"year", cfg.Graph.Year)
	return cfg, nil
}

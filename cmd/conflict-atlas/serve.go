package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ritzau/conflict-atlas/pkg/config"
	"github.com/ritzau/conflict-atlas/pkg/dashboard"
	"github.com/ritzau/conflict-atlas/pkg/logging"
	"github.com/ritzau/conflict-atlas/pkg/pubsub"
	"github.com/ritzau/conflict-atlas/pkg/watcher"
	"github.com/ritzau/conflict-atlas/pkg/web"
)

// File saves often arrive as several writes; wait for them to settle
const (
	watchQuietPeriod = 500 * time.Millisecond
	watchMaxWait     = 3 * time.Second
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the interactive dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	d := dashboard.DefaultOptions()
	f := cmd.Flags()
	f.Int("port", 8080, "Port for the web server")
	f.Bool("watch", false, "Reload when the data, alias or country files change")
	f.Bool("open", true, "Open the dashboard in a browser")
	f.Float64("min-radius", d.Graph.MinRadius, "Smallest node radius")
	f.Float64("max-radius", d.Graph.MaxRadius, "Largest node radius")
	f.Float64("height", d.Height, "Canvas height used for region zones")
	f.Duration("double-click", d.DoubleClick, "Window for a double click on a node")
	f.Duration("debounce", d.Debounce, "Quiet period before a graph rebuild")
	f.Duration("max-wait", d.MaxWait, "Longest a burst of changes can delay a rebuild")
	f.Float64("throttle", d.Throttle, "Focus refreshes per second while a node is focused")
	f.Duration("guard", d.Guard, "Window for dropping repeated selections")
	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	resolver, err := loadResolver(cfg)
	if err != nil {
		return err
	}

	// Serve first and load in the background so the page can show progress
	pub := pubsub.NewDashboardPublisher()
	defer pub.Close()

	session := dashboard.NewSession(nil, resolver, pub, cfg.SessionOptions())
	session.Start(ctx)
	server := web.NewServer(session, pub)

	go func() {
		if err := server.PublishDataStatus("loading", "Loading event data", cfg.Data, 0); err != nil {
			logging.Warn("failed to publish data status", "error", err)
		}
		events, err := loadEvents(ctx, cfg)
		if err != nil {
			logging.Error("initial load failed", "error", err)
			_ = server.PublishDataStatus("error", err.Error(), cfg.Data, 0)
			return
		}
		session.Reload(events, cfg.Data)
	}()

	if cfg.Watch {
		if err := watchFiles(ctx, cfg, session, server); err != nil {
			return err
		}
	}

	url := fmt.Sprintf("http://localhost:%d", cfg.Port)
	if cfg.OpenBrowser {
		go func() {
			// Give the listener a moment to come up
			time.Sleep(300 * time.Millisecond)
			openBrowser(url)
		}()
	}

	return server.Start(ctx, cfg.Port)
}

// watchFiles reloads events and the country resolver when their files change
func watchFiles(ctx context.Context, cfg *config.Config, session *dashboard.Session, server *web.Server) error {
	watched := watcher.Watched{Data: cfg.Data, Aliases: cfg.Aliases, Countries: cfg.Countries}
	fw, err := watcher.NewFileWatcher(watched.Files()...)
	if err != nil {
		return err
	}
	if err := fw.Start(ctx); err != nil {
		fw.Stop()
		return err
	}

	changes := fw.Debounced(ctx, watchQuietPeriod, watchMaxWait)
	go func() {
		defer fw.Stop()
		for change := range changes {
			analysis := watcher.AnalyzeChanges(change, watched)
			logging.Info("watched files changed", "files", analysis.ChangedFiles)

			if analysis.ReloadAliases || analysis.ReloadFeatures {
				resolver, err := loadResolver(cfg)
				if err != nil {
					logging.Error("country reload failed", "error", err)
				} else {
					session.SetResolver(resolver)
				}
			}

			if analysis.ReloadEvents {
				_ = server.PublishDataStatus("loading", "Reloading event data", cfg.Data, 0)
				events, err := loadEvents(ctx, cfg)
				if err != nil {
					// Keep serving the previous data
					logging.Error("event reload failed", "error", err)
					_ = server.PublishDataStatus("error", err.Error(), cfg.Data, 0)
					continue
				}
				session.Reload(events, cfg.Data)
			}
		}
	}()
	return nil
}

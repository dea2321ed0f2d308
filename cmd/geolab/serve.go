// Geolab - PostGIS Teaching Lab: provisioning, lessons, and spatial dashboard
// Copyright 2026 sysdr
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sysdr/geolab

package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/sysdr/geolab/internal/api"
	"github.com/sysdr/geolab/internal/lesson"
	"github.com/sysdr/geolab/internal/logging"
	"github.com/sysdr/geolab/internal/supervisor"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard and lab API",
	Long: `Runs the HTTP dashboard under suture supervision. The server and a
background stats refresher restart with backoff if they crash; SIGINT
or SIGTERM triggers graceful shutdown.

With provisioning enabled the PostGIS container is started first and
the schema is created and seeded if empty.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		db, err := connectLab(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		if cfg.Provision.Enabled {
			if err := db.InitSchema(ctx); err != nil {
				return err
			}
			if err := db.Seed(ctx, cfg.Seed.Landmarks, cfg.Seed.RandomPoints); err != nil {
				return err
			}
		}

		registry := lesson.DefaultRegistry()
		runner := lesson.NewRunner(db, registry)
		handler := api.NewHandler(db, runner, registry, cfg)
		router := api.SetupChi(handler)

		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		server := &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       cfg.Server.Timeout,
			WriteTimeout:      cfg.Server.Timeout,
			IdleTimeout:       2 * cfg.Server.Timeout,
		}

		tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
		tree.AddAPIService(supervisor.NewHTTPService(server, supervisor.DefaultTreeConfig().ShutdownTimeout))
		tree.AddMaintenanceService(supervisor.NewStatsRefresher(db, time.Minute))

		logging.Info().
			Str("addr", addr).
			Str("environment", cfg.Server.Environment).
			Msg("Dashboard listening")

		if err := tree.Serve(ctx); err != nil && ctx.Err() == nil {
			return err
		}

		if unstopped, reportErr := tree.UnstoppedServiceReport(); reportErr == nil && len(unstopped) > 0 {
			logging.Warn().Int("count", len(unstopped)).Msg("Services did not stop cleanly")
		}
		logging.Info().Msg("Dashboard stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

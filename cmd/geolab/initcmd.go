// Geolab - PostGIS Teaching Lab: provisioning, lessons, and spatial dashboard
// Copyright 2026 sysdr
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sysdr/geolab

package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/sysdr/geolab/internal/database"
	"github.com/sysdr/geolab/internal/logging"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the lab schema and load sample data",
	Long: `Enables the postgis extension, creates the landmark, location,
region, and planner tables, and seeds them: world landmarks with
geometry and geography twins, bounding-box regions, and enough random
points for the planner lessons to show real effects.

With provisioning enabled (GEOLAB_PROVISION=true or provision.enabled
in config) the container is started first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		db, err := connectLab(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.InitSchema(ctx); err != nil {
			return err
		}

		if err := db.Seed(ctx, cfg.Seed.Landmarks, cfg.Seed.RandomPoints); err != nil {
			return err
		}

		version, err := db.PostGISVersion(ctx)
		if err != nil {
			return err
		}
		logging.Info().Str("postgis", version).Msg("Lab schema ready")

		stats, err := db.Stats(ctx)
		if err != nil {
			return err
		}
		return printJSON(stats)
	},
}

// connectLab provisions the container when enabled, then connects.
func connectLab(ctx context.Context) (*database.DB, error) {
	if cfg.Provision.Enabled {
		if _, err := startLabContainer(ctx); err != nil {
			return nil, err
		}
	}
	return openDatabase(ctx)
}

func init() {
	rootCmd.AddCommand(initCmd)
}

// Geolab - PostGIS Teaching Lab: provisioning, lessons, and spatial dashboard
// Copyright 2026 sysdr
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sysdr/geolab

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	gojson "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/sysdr/geolab/internal/config"
	"github.com/sysdr/geolab/internal/database"
	"github.com/sysdr/geolab/internal/logging"
)

var (
	flagConfigPath string
	flagLogLevel   string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "geolab",
	Short: "PostGIS teaching lab",
	Long: `geolab runs a hands-on PostGIS lab: it provisions a PostGIS container,
seeds landmarks, regions, and synthetic points, and walks through six
lessons covering geometry vs geography, GIST indexing, spatial
predicates, CTE materialization, SRID transforms, and work_mem tuning.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if flagConfigPath != "" {
			os.Setenv(config.ConfigPathEnvVar, flagConfigPath)
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		if flagLogLevel != "" {
			cfg.Logging.Level = flagLogLevel
		}
		logCfg := logging.DefaultConfig()
		logCfg.Level = cfg.Logging.Level
		logCfg.Format = cfg.Logging.Format
		logCfg.Caller = cfg.Logging.Caller
		logging.Init(logCfg)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfigPath, "config", "c", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "override log level (trace|debug|info|warn|error)")
}

// signalContext returns a context canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// openDatabase connects to the configured lab database.
func openDatabase(ctx context.Context) (*database.DB, error) {
	db, err := database.New(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect to %s:%d: %w", cfg.Database.Host, cfg.Database.Port, err)
	}
	return db, nil
}

// printJSON writes v to stdout as indented JSON. CLI commands use it
// for structured results; logs go to stderr.
func printJSON(v any) error {
	enc := gojson.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Geolab - PostGIS Teaching Lab: provisioning, lessons, and spatial dashboard
// Copyright 2026 sysdr
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sysdr/geolab

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sysdr/geolab/internal/config"
	"github.com/sysdr/geolab/internal/logging"
	"github.com/sysdr/geolab/internal/provision"
)

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Start the PostGIS lab container",
	Long: `Starts (or reuses) a Dockerized PostGIS instance for the lab and
prints the connection details. Re-running against a live container is
a no-op thanks to container name reuse.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		container, err := startLabContainer(ctx)
		if err != nil {
			return err
		}

		host, err := container.Host(ctx)
		if err != nil {
			return err
		}
		port, err := container.Port(ctx)
		if err != nil {
			return err
		}

		logging.Info().Str("host", host).Int("port", port).Msg("PostGIS lab container ready")
		return printJSON(map[string]any{
			"host":     host,
			"port":     port,
			"database": cfg.Database.Name,
			"user":     cfg.Database.User,
		})
	},
}

var teardownCmd = &cobra.Command{
	Use:   "teardown",
	Short: "Stop and remove the PostGIS lab container",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		if !provision.IsDockerAvailable() {
			return errors.New("docker is not available; nothing to tear down")
		}

		removed, err := provision.TerminateByName(ctx, cfg.Provision.ContainerName)
		if err != nil {
			return fmt.Errorf("teardown: %w", err)
		}
		if !removed {
			logging.Info().Str("container", cfg.Provision.ContainerName).Msg("No lab container to remove")
			return nil
		}
		logging.Info().Str("container", cfg.Provision.ContainerName).Msg("PostGIS lab container removed")
		return nil
	},
}

// startLabContainer starts or reattaches to the configured lab
// container and points the database config at it.
func startLabContainer(ctx context.Context) (*provision.PostgisContainer, error) {
	if !provision.IsDockerAvailable() {
		return nil, errors.New("docker is not available; install Docker or point geolab at an existing PostGIS instance")
	}

	container, err := provision.Start(ctx,
		provision.WithImage(cfg.Provision.Image),
		provision.WithDatabase(cfg.Database.Name, cfg.Database.User, cfg.Database.Password),
		provision.WithContainerName(cfg.Provision.ContainerName),
		provision.WithHostPort(cfg.Provision.HostPort),
		provision.WithStartTimeout(cfg.Provision.StartupTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("provision postgis: %w", err)
	}

	if err := pointConfigAt(ctx, container, cfg); err != nil {
		container.Terminate(ctx)
		return nil, err
	}
	return container, nil
}

// pointConfigAt rewrites the database config to target the container.
func pointConfigAt(ctx context.Context, container *provision.PostgisContainer, cfg *config.Config) error {
	host, err := container.Host(ctx)
	if err != nil {
		return fmt.Errorf("resolve container host: %w", err)
	}
	port, err := container.Port(ctx)
	if err != nil {
		return fmt.Errorf("resolve container port: %w", err)
	}
	cfg.Database.Host = host
	cfg.Database.Port = port
	return nil
}

func init() {
	rootCmd.AddCommand(provisionCmd)
	rootCmd.AddCommand(teardownCmd)
}

// Geolab - PostGIS Teaching Lab: provisioning, lessons, and spatial dashboard
// Copyright 2026 sysdr
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sysdr/geolab

package provision

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	// database/sql driver for the SQL readiness probe
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/sysdr/geolab/internal/logging"
	"github.com/sysdr/geolab/internal/metrics"
)

const (
	// DefaultImage is the PostGIS-enabled PostgreSQL image
	DefaultImage = "postgis/postgis:16-3.4"

	// DefaultDatabase, DefaultUser, DefaultPassword are the lab credentials
	DefaultDatabase = "geolab"
	DefaultUser     = "geolab"
	DefaultPassword = "geolab"

	postgresPort = "5432/tcp"
)

// PostgisContainer represents a running PostGIS container
type PostgisContainer struct {
	testcontainers.Container
	database string
	user     string
	password string
}

// Option configures the PostGIS container
type Option func(*containerConfig)

type containerConfig struct {
	image         string
	database      string
	user          string
	password      string
	containerName string
	hostPort      int
	startTimeout  time.Duration
	reuse         bool
}

// WithImage sets a custom PostGIS Docker image
func WithImage(image string) Option {
	return func(c *containerConfig) {
		c.image = image
	}
}

// WithDatabase sets the database name and credentials
func WithDatabase(name, user, password string) Option {
	return func(c *containerConfig) {
		c.database = name
		c.user = user
		c.password = password
	}
}

// WithContainerName names the container so repeat provisions find it again
func WithContainerName(name string) Option {
	return func(c *containerConfig) {
		c.containerName = name
		c.reuse = true
	}
}

// WithHostPort binds the database to a fixed host port. Zero keeps the
// default random mapping.
func WithHostPort(port int) Option {
	return func(c *containerConfig) {
		c.hostPort = port
	}
}

// WithStartTimeout sets the readiness wait timeout
func WithStartTimeout(timeout time.Duration) Option {
	return func(c *containerConfig) {
		c.startTimeout = timeout
	}
}

// Start creates and starts a PostGIS container, waiting until it accepts
// SQL queries. With WithContainerName an already-running container of that
// name is reused instead of started.
func Start(ctx context.Context, opts ...Option) (_ *PostgisContainer, err error) {
	begin := time.Now()
	defer func() { metrics.RecordProvision(time.Since(begin), err) }()

	cfg := &containerConfig{
		image:        DefaultImage,
		database:     DefaultDatabase,
		user:         DefaultUser,
		password:     DefaultPassword,
		startTimeout: 90 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	req := testcontainers.ContainerRequest{
		Image:        cfg.image,
		Name:         cfg.containerName,
		ExposedPorts: []string{postgresPort},
		Env: map[string]string{
			"POSTGRES_DB":       cfg.database,
			"POSTGRES_USER":     cfg.user,
			"POSTGRES_PASSWORD": cfg.password,
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort(postgresPort),
			wait.ForSQL(postgresPort, "pgx", func(host string, port nat.Port) string {
				return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
					cfg.user, cfg.password, host, port.Port(), cfg.database)
			}),
		).WithStartupTimeout(cfg.startTimeout),
	}

	if cfg.hostPort > 0 {
		req.HostConfigModifier = func(hc *container.HostConfig) {
			hc.PortBindings = nat.PortMap{
				nat.Port(postgresPort): []nat.PortBinding{
					{HostIP: "0.0.0.0", HostPort: fmt.Sprintf("%d", cfg.hostPort)},
				},
			}
		}
	}

	logging.Info().
		Str("image", cfg.image).
		Str("container", cfg.containerName).
		Msg("Starting PostGIS container")

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
		Reuse:            cfg.reuse,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start PostGIS container: %w", err)
	}

	pc := &PostgisContainer{
		Container: c,
		database:  cfg.database,
		user:      cfg.user,
		password:  cfg.password,
	}

	connStr, err := pc.ConnString(ctx)
	if err != nil {
		_ = c.Terminate(ctx)
		return nil, err
	}
	logging.Info().
		Str("conn", connStr).
		Dur("startup", time.Since(begin)).
		Msg("PostGIS container ready")
	return pc, nil
}

// Host returns the address the database is reachable at from the host
func (c *PostgisContainer) Host(ctx context.Context) (string, error) {
	host, err := c.Container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to resolve container host: %w", err)
	}
	return host, nil
}

// Port returns the mapped host port for PostgreSQL
func (c *PostgisContainer) Port(ctx context.Context) (int, error) {
	mapped, err := c.MappedPort(ctx, nat.Port(postgresPort))
	if err != nil {
		return 0, fmt.Errorf("failed to resolve mapped port: %w", err)
	}
	return mapped.Int(), nil
}

// ConnString builds a pgx connection string for the running container
func (c *PostgisContainer) ConnString(ctx context.Context) (string, error) {
	host, err := c.Host(ctx)
	if err != nil {
		return "", err
	}
	port, err := c.Port(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.user, c.password, host, port, c.database), nil
}

// Terminate stops and removes the container. Best effort: failures are
// logged, not returned, so teardown never blocks shutdown.
func (c *PostgisContainer) Terminate(ctx context.Context) {
	if c == nil || c.Container == nil {
		return
	}
	if err := c.Container.Terminate(ctx); err != nil {
		logging.Warn().Err(err).Msg("Failed to terminate PostGIS container")
		return
	}
	logging.Info().Msg("PostGIS container terminated")
}

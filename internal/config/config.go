// Geolab - PostGIS Teaching Lab: provisioning, lessons, and spatial dashboard
// Copyright 2026 sysdr
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sysdr/geolab

// Package config holds Geolab's layered configuration.
//
// Configuration is loaded via Koanf v2 with clear precedence:
// environment variables > optional YAML config file > built-in defaults.
package config

import (
	"fmt"
	"net"
	"regexp"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// workMemPattern matches PostgreSQL memory quantities the lab accepts for
// work_mem, e.g. "64kB", "4MB", "1GB". Applied before any SET LOCAL so the
// value can be interpolated into SQL safely.
var workMemPattern = regexp.MustCompile(`^[0-9]{1,6}(kB|MB|GB)$`)

// Config is the root configuration for the Geolab binary.
type Config struct {
	Database  DatabaseConfig  `koanf:"database"`
	Provision ProvisionConfig `koanf:"provision"`
	Server    ServerConfig    `koanf:"server"`
	API       APIConfig       `koanf:"api"`
	Seed      SeedConfig      `koanf:"seed"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// DatabaseConfig holds PostgreSQL/PostGIS connection settings.
type DatabaseConfig struct {
	Host     string `koanf:"host" validate:"required"`
	Port     int    `koanf:"port" validate:"min=1,max=65535"`
	Name     string `koanf:"name" validate:"required"`
	User     string `koanf:"user" validate:"required"`
	Password string `koanf:"password"`
	SSLMode  string `koanf:"ssl_mode" validate:"oneof=disable allow prefer require verify-ca verify-full"`

	// MaxConns and MinConns bound the pgx connection pool.
	MaxConns int32 `koanf:"max_conns" validate:"min=1,max=100"`
	MinConns int32 `koanf:"min_conns" validate:"min=0,max=100"`

	ConnectTimeout   time.Duration `koanf:"connect_timeout"`
	StatementTimeout time.Duration `koanf:"statement_timeout"`

	// WorkMem is the session default applied to every pooled connection.
	// Lessons override it per-transaction with SET LOCAL.
	WorkMem string `koanf:"work_mem"`
}

// ConnString builds a pgx-compatible connection string.
func (c *DatabaseConfig) ConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s",
		c.User, c.Password,
		net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		c.Name, c.SSLMode)
}

// ProvisionConfig controls the Docker-hosted PostGIS lab instance.
type ProvisionConfig struct {
	Enabled bool `koanf:"enabled"`

	// Image is the PostGIS Docker image to run.
	Image string `koanf:"image" validate:"required"`

	// ContainerName identifies the lab container so repeated provision
	// runs reuse it instead of stacking duplicates.
	ContainerName string `koanf:"container_name"`

	// HostPort is the fixed host port to bind. 0 picks a random free port.
	HostPort int `koanf:"host_port" validate:"min=0,max=65535"`

	StartupTimeout time.Duration `koanf:"startup_timeout"`
}

// ServerConfig holds HTTP dashboard settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port" validate:"min=1,max=65535"`
	Timeout time.Duration `koanf:"timeout"`

	// Environment is "development" or "production".
	Environment string `koanf:"environment" validate:"oneof=development production"`

	CORSOrigins []string `koanf:"cors_origins"`

	// RateLimitReqs requests per RateLimitWindow per client IP.
	RateLimitReqs   int           `koanf:"rate_limit_reqs" validate:"min=1"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// APIConfig holds pagination defaults for list endpoints.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size" validate:"min=1"`
	MaxPageSize     int `koanf:"max_page_size" validate:"min=1"`
}

// SeedConfig controls sample data loading during geolab init.
type SeedConfig struct {
	// Landmarks enables the fixed landmark/region rows every lesson uses.
	Landmarks bool `koanf:"landmarks"`

	// RandomPoints is the number of synthetic points generated for the
	// indexing, planner, and work_mem lessons. These lessons need enough
	// rows for the planner's choices to be visible.
	RandomPoints int `koanf:"random_points" validate:"min=0,max=10000000"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

// Validate checks the configuration beyond what struct tags express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("database.min_conns (%d) exceeds database.max_conns (%d)",
			c.Database.MinConns, c.Database.MaxConns)
	}
	if c.Database.WorkMem != "" && !ValidWorkMem(c.Database.WorkMem) {
		return fmt.Errorf("database.work_mem %q: must match %s", c.Database.WorkMem, workMemPattern)
	}
	if c.API.DefaultPageSize > c.API.MaxPageSize {
		return fmt.Errorf("api.default_page_size (%d) exceeds api.max_page_size (%d)",
			c.API.DefaultPageSize, c.API.MaxPageSize)
	}
	return nil
}

// ValidWorkMem reports whether s is an acceptable work_mem quantity.
// Only simple kB/MB/GB quantities are accepted; anything else is rejected
// because the value is spliced into a SET LOCAL statement.
func ValidWorkMem(s string) bool {
	return workMemPattern.MatchString(s)
}

// Geolab - PostGIS Teaching Lab: provisioning, lessons, and spatial dashboard
// Copyright 2026 sysdr
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sysdr/geolab

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, in order.
// The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/geolab/config.yaml",
	"/etc/geolab/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all defaults applied. Defaults load
// first, then the config file, then environment variables.
func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Host:             "localhost",
			Port:             5432,
			Name:             "geolab",
			User:             "geolab",
			Password:         "geolab",
			SSLMode:          "disable",
			MaxConns:         8,
			MinConns:         1,
			ConnectTimeout:   10 * time.Second,
			StatementTimeout: 30 * time.Second,
			WorkMem:          "4MB", // PostgreSQL's shipped default; day6 overrides per-tx
		},
		Provision: ProvisionConfig{
			Enabled:        false,
			Image:          "postgis/postgis:16-3.4",
			ContainerName:  "geolab-postgis",
			HostPort:       0,
			StartupTimeout: 90 * time.Second,
		},
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    3857, // EPSG:3857 - the Web Mercator pun is the whole point of day5
			Timeout: 30 * time.Second,

			Environment:     "development",
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   300,
			RateLimitWindow: time.Minute,
		},
		API: APIConfig{
			DefaultPageSize: 20,
			MaxPageSize:     100,
		},
		Seed: SeedConfig{
			Landmarks:    true,
			RandomPoints: 50000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load loads configuration using Koanf v2 with layered sources:
//  1. Built-in defaults
//  2. Optional YAML config file
//  3. Environment variables (highest priority)
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// GEOLAB_DB_HOST -> database.host etc. via the explicit mapping table.
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first config file that exists, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths lists config paths parsed as comma-separated slices when
// they arrive as env var strings.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields converts comma-separated strings to slices for known
// slice fields. Env vars come in as strings; the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransformFunc maps environment variable names to koanf config paths.
// Only mapped variables are honored; everything else is skipped so random
// environment variables cannot pollute the config.
func envTransformFunc(key string) string {
	envMappings := map[string]string{
		// Database mappings (the GEOLAB_DB_* names mirror the original
		// lab scripts' DB_HOST/DB_NAME/DB_USER/DB_PASSWORD/DB_PORT vars)
		"geolab_db_host":              "database.host",
		"geolab_db_port":              "database.port",
		"geolab_db_name":              "database.name",
		"geolab_db_user":              "database.user",
		"geolab_db_password":          "database.password",
		"geolab_db_ssl_mode":          "database.ssl_mode",
		"geolab_db_max_conns":         "database.max_conns",
		"geolab_db_min_conns":         "database.min_conns",
		"geolab_db_connect_timeout":   "database.connect_timeout",
		"geolab_db_statement_timeout": "database.statement_timeout",
		"geolab_work_mem":             "database.work_mem",

		// Provision mappings
		"geolab_provision":               "provision.enabled",
		"geolab_provision_image":         "provision.image",
		"geolab_container_name":          "provision.container_name",
		"geolab_provision_port":          "provision.host_port",
		"geolab_provision_start_timeout": "provision.startup_timeout",

		// Server mappings
		"http_host":         "server.host",
		"http_port":         "server.port",
		"http_timeout":      "server.timeout",
		"environment":       "server.environment",
		"cors_origins":      "server.cors_origins",
		"rate_limit_reqs":   "server.rate_limit_reqs",
		"rate_limit_window": "server.rate_limit_window",

		// API mappings
		"api_default_page_size": "api.default_page_size",
		"api_max_page_size":     "api.max_page_size",

		// Seed mappings
		"seed_landmarks":     "seed.landmarks",
		"seed_random_points": "seed.random_points",

		// Logging mappings
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}

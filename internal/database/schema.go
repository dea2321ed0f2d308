// Geolab - PostGIS Teaching Lab: provisioning, lessons, and spatial dashboard
// Copyright 2026 sysdr
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sysdr/geolab

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/sysdr/geolab/internal/logging"
)

// schemaStatements is the complete lab schema. Every statement is
// idempotent so init can run against an already-initialized database.
var schemaStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS postgis`,

	// Named sample points kept in both spatial types. The geography column
	// is generated from the geometry so the two can never drift apart.
	`CREATE TABLE IF NOT EXISTS landmarks (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL UNIQUE,
		geom GEOMETRY(Point, 4326) NOT NULL,
		geog GEOGRAPHY(Point, 4326) GENERATED ALWAYS AS (geom::geography) STORED,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_landmarks_geom ON landmarks USING GIST (geom)`,
	`CREATE INDEX IF NOT EXISTS idx_landmarks_geog ON landmarks USING GIST (geog)`,

	// SRID exercise tables. Rows are inserted pairwise inside one
	// transaction: every 4326 point has a 3857 twin with the same id.
	`CREATE TABLE IF NOT EXISTS locations_4326 (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		geom GEOMETRY(Point, 4326) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS locations_3857 (
		id BIGINT PRIMARY KEY REFERENCES locations_4326(id) ON DELETE CASCADE,
		name VARCHAR(100) NOT NULL,
		geom GEOMETRY(Point, 3857) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_locations_4326_geom ON locations_4326 USING GIST (geom)`,
	`CREATE INDEX IF NOT EXISTS idx_locations_3857_geom ON locations_3857 USING GIST (geom)`,

	// Geofence polygons for the intersection exercise.
	`CREATE TABLE IF NOT EXISTS regions (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL UNIQUE,
		boundary GEOMETRY(Polygon, 4326) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_regions_boundary ON regions USING GIST (boundary)`,

	// Bulk random points for the planner, indexing, and work_mem
	// exercises. The GIST index is intentionally absent: the indexing
	// lesson creates and drops it to show the before/after plans.
	`CREATE TABLE IF NOT EXISTS planner_points (
		id BIGSERIAL PRIMARY KEY,
		geom GEOMETRY(Point, 4326) NOT NULL,
		measurement DOUBLE PRECISION NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// InitSchema creates the PostGIS extension and all lab tables
func (db *DB) InitSchema(ctx context.Context) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	for _, stmt := range schemaStatements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	logging.Info().
		Dur("duration", time.Since(start)).
		Int("statements", len(schemaStatements)).
		Msg("Schema initialized")
	return nil
}

// PostGISVersion returns the installed PostGIS version string
func (db *DB) PostGISVersion(ctx context.Context) (string, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var version string
	err := db.pool.QueryRow(ctx, "SELECT PostGIS_Lib_Version()").Scan(&version)
	if err != nil {
		return "", fmt.Errorf("failed to query PostGIS version: %w", err)
	}
	return version, nil
}

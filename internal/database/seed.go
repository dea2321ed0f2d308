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
	"github.com/sysdr/geolab/internal/metrics"
)

// seedLandmark is a named point inserted during seeding
type seedLandmark struct {
	Name string
	Lon  float64
	Lat  float64
}

// defaultLandmarks spans low, mid, and high latitudes so the distance
// comparisons show how projection distortion grows away from the equator.
var defaultLandmarks = []seedLandmark{
	{"Eiffel Tower", 2.2945, 48.8584},
	{"Statue of Liberty", -74.0445, 40.6892},
	{"Sydney Opera House", 151.2153, -33.8568},
	{"Golden Gate Bridge", -122.4783, 37.8199},
	{"Tokyo Tower", 139.7454, 35.6586},
	{"Big Ben", -0.1246, 51.5007},
	{"Christ the Redeemer", -43.2105, -22.9519},
	{"Pyramids of Giza", 31.1342, 29.9792},
}

// seedRegion is a rectangular geofence inserted during seeding
type seedRegion struct {
	Name           string
	MinLon, MinLat float64
	MaxLon, MaxLat float64
}

var defaultRegions = []seedRegion{
	{"Western Europe", -10.0, 36.0, 20.0, 60.0},
	{"North America East", -90.0, 25.0, -60.0, 50.0},
	{"Australia", 110.0, -45.0, 155.0, -10.0},
	{"Equatorial Band", -180.0, -10.0, 180.0, 10.0},
}

// Seed loads the sample data: the fixed landmark and region rows when
// landmarks is set, and up to randomPoints bulk random points. The two are
// independent knobs. Idempotent: landmarks and regions upsert on name, and
// planner points are only generated when the table holds fewer rows than
// requested.
func (db *DB) Seed(ctx context.Context, landmarks bool, randomPoints int) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if landmarks {
		if err := db.seedLandmarks(ctx); err != nil {
			return err
		}
		if err := db.seedRegions(ctx); err != nil {
			return err
		}
	}
	return db.seedPlannerPoints(ctx, randomPoints)
}

func (db *DB) seedLandmarks(ctx context.Context) (err error) {
	done := db.track("INSERT", "landmarks", time.Now())
	defer func() { done(err) }()

	const query = `
		INSERT INTO landmarks (name, geom)
		VALUES ($1, ST_SetSRID(ST_MakePoint($2, $3), 4326))
		ON CONFLICT (name) DO NOTHING`

	inserted := 0
	for _, lm := range defaultLandmarks {
		tag, execErr := db.pool.Exec(ctx, query, lm.Name, lm.Lon, lm.Lat)
		if execErr != nil {
			err = fmt.Errorf("failed to seed landmark %q: %w", lm.Name, execErr)
			return err
		}
		inserted += int(tag.RowsAffected())
	}

	metrics.RecordSeedRows("landmarks", inserted)
	logging.Info().Int("inserted", inserted).Int("total", len(defaultLandmarks)).Msg("Landmarks seeded")
	return nil
}

func (db *DB) seedRegions(ctx context.Context) (err error) {
	done := db.track("INSERT", "regions", time.Now())
	defer func() { done(err) }()

	const query = `
		INSERT INTO regions (name, boundary)
		VALUES ($1, ST_MakeEnvelope($2, $3, $4, $5, 4326))
		ON CONFLICT (name) DO NOTHING`

	inserted := 0
	for _, r := range defaultRegions {
		tag, execErr := db.pool.Exec(ctx, query, r.Name, r.MinLon, r.MinLat, r.MaxLon, r.MaxLat)
		if execErr != nil {
			err = fmt.Errorf("failed to seed region %q: %w", r.Name, execErr)
			return err
		}
		inserted += int(tag.RowsAffected())
	}

	metrics.RecordSeedRows("regions", inserted)
	logging.Info().Int("inserted", inserted).Msg("Regions seeded")
	return nil
}

// seedPlannerPoints tops the planner_points table up to count rows using a
// single generate_series insert on the server side.
func (db *DB) seedPlannerPoints(ctx context.Context, count int) (err error) {
	if count <= 0 {
		return nil
	}
	done := db.track("INSERT", "planner_points", time.Now())
	defer func() { done(err) }()

	var existing int64
	if err = db.pool.QueryRow(ctx, "SELECT count(*) FROM planner_points").Scan(&existing); err != nil {
		err = fmt.Errorf("failed to count planner points: %w", err)
		return err
	}
	missing := int64(count) - existing
	if missing <= 0 {
		logging.Debug().Int64("existing", existing).Msg("Planner points already seeded")
		return nil
	}

	const query = `
		INSERT INTO planner_points (geom, measurement)
		SELECT
			ST_SetSRID(ST_MakePoint(random() * 360 - 180, random() * 170 - 85), 4326),
			random() * 1000
		FROM generate_series(1, $1)`

	start := time.Now()
	tag, execErr := db.pool.Exec(ctx, query, missing)
	if execErr != nil {
		err = fmt.Errorf("failed to seed planner points: %w", execErr)
		return err
	}

	metrics.RecordSeedRows("planner_points", int(tag.RowsAffected()))
	logging.Info().
		Int64("inserted", tag.RowsAffected()).
		Dur("duration", time.Since(start)).
		Msg("Planner points seeded")
	return nil
}

// Geolab - PostGIS Teaching Lab: provisioning, lessons, and spatial dashboard
// Copyright 2026 sysdr
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sysdr/geolab

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/sysdr/geolab/internal/metrics"
	"github.com/sysdr/geolab/internal/models"
)

// RegionStats counts planner points against every region polygon.
// ST_Intersects matches boundary-touching points, ST_Contains does not;
// identical counts on random data are the expected outcome, the lesson is
// in the predicate semantics.
func (db *DB) RegionStats(ctx context.Context) (_ []models.RegionStats, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	done := db.track("SELECT", "regions", time.Now())
	defer func() { done(err) }()
	metrics.RecordSpatialOperation("intersects")

	const query = `
		SELECT
			r.id,
			r.name,
			ST_Area(r.boundary::geography) / 1000000,
			count(p.id) FILTER (WHERE ST_Intersects(r.boundary, p.geom)),
			count(p.id) FILTER (WHERE ST_Contains(r.boundary, p.geom))
		FROM regions r
		LEFT JOIN planner_points p ON ST_Intersects(r.boundary, p.geom)
		GROUP BY r.id, r.name, r.boundary
		ORDER BY r.name`

	rows, err := db.pool.Query(ctx, query)
	if err != nil {
		err = fmt.Errorf("failed to query region stats: %w", err)
		return nil, err
	}
	defer rows.Close()

	var stats []models.RegionStats
	for rows.Next() {
		var rs models.RegionStats
		if err = rows.Scan(&rs.ID, &rs.Name, &rs.AreaSqKm, &rs.IntersectCount, &rs.ContainsCount); err != nil {
			err = fmt.Errorf("failed to scan region row: %w", err)
			return nil, err
		}
		stats = append(stats, rs)
	}
	err = rows.Err()
	return stats, err
}

// RegionGeoJSON renders one region's polygon with ST_AsGeoJSON. The
// geometry JSON is passed through untouched.
func (db *DB) RegionGeoJSON(ctx context.Context, id int64) (_ *models.RegionGeoJSON, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	done := db.track("SELECT", "regions", time.Now())
	defer func() { done(err) }()
	metrics.RecordSpatialOperation("geojson")

	const query = `
		SELECT id, name, ST_AsGeoJSON(boundary)::jsonb
		FROM regions
		WHERE id = $1`

	var region models.RegionGeoJSON
	err = db.pool.QueryRow(ctx, query, id).Scan(&region.ID, &region.Name, &region.Geometry)
	if err != nil {
		err = fmt.Errorf("failed to fetch region %d geojson: %w", id, notFound(err))
		return nil, err
	}
	return &region, nil
}

// PointsInRegion counts planner points inside one region by name
func (db *DB) PointsInRegion(ctx context.Context, name string) (_ int64, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	done := db.track("SELECT", "regions", time.Now())
	defer func() { done(err) }()
	metrics.RecordSpatialOperation("intersects")

	const query = `
		SELECT count(*)
		FROM planner_points p
		JOIN regions r ON ST_Intersects(r.boundary, p.geom)
		WHERE r.name = $1`

	var count int64
	if err = db.pool.QueryRow(ctx, query, name).Scan(&count); err != nil {
		err = fmt.Errorf("failed to count points in region %q: %w", name, err)
		return 0, err
	}
	return count, nil
}

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

// CompareDistance measures the distance between two named landmarks three
// ways: ST_Distance on the raw GEOMETRY (planar degrees), on the GEOGRAPHY
// column (geodesic meters), and on the geometry transformed to Web
// Mercator (projected meters).
func (db *DB) CompareDistance(ctx context.Context, from, to string) (_ *models.DistanceComparison, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	done := db.track("SELECT", "landmarks", time.Now())
	defer func() { done(err) }()
	metrics.RecordSpatialOperation("distance")

	const query = `
		SELECT
			a.name,
			b.name,
			ST_Distance(a.geom, b.geom),
			ST_Distance(a.geog, b.geog),
			ST_Distance(ST_Transform(a.geom, 3857), ST_Transform(b.geom, 3857))
		FROM landmarks a, landmarks b
		WHERE a.name = $1 AND b.name = $2`

	var cmp models.DistanceComparison
	err = db.pool.QueryRow(ctx, query, from, to).Scan(
		&cmp.From,
		&cmp.To,
		&cmp.GeometryDegrees,
		&cmp.GeographyMeters,
		&cmp.MercatorMeters,
	)
	if err != nil {
		err = fmt.Errorf("failed to compare distance %q to %q: %w", from, to, notFound(err))
		return nil, err
	}
	return &cmp, nil
}

// ListLandmarks returns all sample landmarks with their WGS84 coordinates
func (db *DB) ListLandmarks(ctx context.Context) (_ []models.Landmark, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	done := db.track("SELECT", "landmarks", time.Now())
	defer func() { done(err) }()

	const query = `
		SELECT id, name, ST_X(geom), ST_Y(geom), created_at
		FROM landmarks
		ORDER BY name`

	rows, err := db.pool.Query(ctx, query)
	if err != nil {
		err = fmt.Errorf("failed to list landmarks: %w", err)
		return nil, err
	}
	defer rows.Close()

	var landmarks []models.Landmark
	for rows.Next() {
		var lm models.Landmark
		if err = rows.Scan(&lm.ID, &lm.Name, &lm.Longitude, &lm.Latitude, &lm.CreatedAt); err != nil {
			err = fmt.Errorf("failed to scan landmark row: %w", err)
			return nil, err
		}
		landmarks = append(landmarks, lm)
	}
	err = rows.Err()
	return landmarks, err
}

// Nearby finds landmarks within radiusMeters of a point using ST_DWithin
// on the geography column, ordered nearest first.
func (db *DB) Nearby(ctx context.Context, lon, lat, radiusMeters float64) (_ []models.NearbyLandmark, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	done := db.track("SELECT", "landmarks", time.Now())
	defer func() { done(err) }()
	metrics.RecordSpatialOperation("dwithin")

	const query = `
		SELECT
			id, name, ST_X(geom), ST_Y(geom), created_at,
			ST_Distance(geog, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography)
		FROM landmarks
		WHERE ST_DWithin(geog, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography, $3)
		ORDER BY 6`

	rows, err := db.pool.Query(ctx, query, lon, lat, radiusMeters)
	if err != nil {
		err = fmt.Errorf("failed to query nearby landmarks: %w", err)
		return nil, err
	}
	defer rows.Close()

	var results []models.NearbyLandmark
	for rows.Next() {
		var n models.NearbyLandmark
		if err = rows.Scan(&n.ID, &n.Name, &n.Longitude, &n.Latitude, &n.CreatedAt, &n.DistanceMeters); err != nil {
			err = fmt.Errorf("failed to scan nearby row: %w", err)
			return nil, err
		}
		results = append(results, n)
	}
	err = rows.Err()
	return results, err
}

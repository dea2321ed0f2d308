// Geolab - PostGIS Teaching Lab: provisioning, lessons, and spatial dashboard
// Copyright 2026 sysdr
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sysdr/geolab

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/sysdr/geolab/internal/logging"
	"github.com/sysdr/geolab/internal/metrics"
	"github.com/sysdr/geolab/internal/models"
)

// AddLocation stores a named point in WGS84 and its Web Mercator transform
// in one transaction, so the two tables can never disagree. Returns the
// shared id.
func (db *DB) AddLocation(ctx context.Context, name string, lon, lat float64) (_ int64, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	done := db.track("INSERT", "locations_4326", time.Now())
	defer func() { done(err) }()
	metrics.RecordSpatialOperation("transform")

	tx, err := db.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var id int64
	err = tx.QueryRow(ctx, `
		INSERT INTO locations_4326 (name, geom)
		VALUES ($1, ST_SetSRID(ST_MakePoint($2, $3), 4326))
		RETURNING id`, name, lon, lat).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert 4326 point: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO locations_3857 (id, name, geom)
		SELECT id, name, ST_Transform(geom, 3857)
		FROM locations_4326
		WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert 3857 twin: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit location insert: %w", err)
	}

	logging.Info().
		Int64("id", id).
		Str("name", name).
		Float64("lon", lon).
		Float64("lat", lat).
		Msg("Location added in both SRIDs")
	return id, nil
}

// ListLocations returns stored points from one SRID table as WKT. srid
// must be 4326 or 3857. limit <= 0 disables pagination.
func (db *DB) ListLocations(ctx context.Context, srid, limit, offset int) (_ []models.Location, err error) {
	table, err := locationTable(srid)
	if err != nil {
		return nil, err
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	done := db.track("SELECT", table, time.Now())
	defer func() { done(err) }()

	query := fmt.Sprintf(`
		SELECT id, name, ST_AsText(geom), created_at
		FROM %s
		ORDER BY id`, table)
	args := []any{}
	if limit > 0 {
		query += " LIMIT $1 OFFSET $2"
		args = append(args, limit, offset)
	}

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		err = fmt.Errorf("failed to list %s: %w", table, err)
		return nil, err
	}
	defer rows.Close()

	var locations []models.Location
	for rows.Next() {
		loc := models.Location{SRID: srid}
		if err = rows.Scan(&loc.ID, &loc.Name, &loc.WKT, &loc.CreatedAt); err != nil {
			err = fmt.Errorf("failed to scan location row: %w", err)
			return nil, err
		}
		locations = append(locations, loc)
	}
	err = rows.Err()
	return locations, err
}

// CountLocations returns the number of rows in one SRID table.
func (db *DB) CountLocations(ctx context.Context, srid int) (_ int64, err error) {
	table, err := locationTable(srid)
	if err != nil {
		return 0, err
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	done := db.track("SELECT", table, time.Now())
	defer func() { done(err) }()

	var total int64
	err = db.pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&total)
	return total, err
}

// TransformPoint returns one stored point rendered in both spatial
// reference systems with its X/Y components.
func (db *DB) TransformPoint(ctx context.Context, id int64) (_ *models.TransformResult, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	done := db.track("SELECT", "locations_4326", time.Now())
	defer func() { done(err) }()
	metrics.RecordSpatialOperation("transform")

	const query = `
		SELECT
			a.id,
			a.name,
			ST_AsText(a.geom),
			ST_AsText(b.geom),
			ST_X(a.geom),
			ST_Y(a.geom),
			ST_X(b.geom),
			ST_Y(b.geom)
		FROM locations_4326 a
		JOIN locations_3857 b ON b.id = a.id
		WHERE a.id = $1`

	var res models.TransformResult
	err = db.pool.QueryRow(ctx, query, id).Scan(
		&res.ID,
		&res.Name,
		&res.WKT4326,
		&res.WKT3857,
		&res.Lon4326,
		&res.Lat4326,
		&res.X3857,
		&res.Y3857,
	)
	if err != nil {
		err = fmt.Errorf("failed to transform point %d: %w", id, notFound(err))
		return nil, err
	}
	return &res, nil
}

// locationTable maps an SRID to its table name. Table names are never
// built from user input directly.
func locationTable(srid int) (string, error) {
	switch srid {
	case 4326:
		return "locations_4326", nil
	case 3857:
		return "locations_3857", nil
	default:
		return "", fmt.Errorf("unsupported SRID %d: expected 4326 or 3857", srid)
	}
}

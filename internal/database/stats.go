// Geolab - PostGIS Teaching Lab: provisioning, lessons, and spatial dashboard
// Copyright 2026 sysdr
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sysdr/geolab

package database

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sysdr/geolab/internal/models"
)

// statsTables are the lab tables reported by the stats endpoint
var statsTables = []string{"landmarks", "locations_4326", "locations_3857", "regions", "planner_points"}

// Stats collects server and extension versions, database size, and
// per-table row counts for the dashboard summary.
func (db *DB) Stats(ctx context.Context) (_ *models.DatabaseStats, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	done := db.track("SELECT", "pg_catalog", time.Now())
	defer func() { done(err) }()

	stats := &models.DatabaseStats{}

	const versionQuery = `
		SELECT
			current_setting('server_version'),
			PostGIS_Lib_Version(),
			pg_size_pretty(pg_database_size(current_database()))`
	err = db.pool.QueryRow(ctx, versionQuery).Scan(
		&stats.PostgresVersion,
		&stats.PostGISVersion,
		&stats.DatabaseSize,
	)
	if err != nil {
		err = fmt.Errorf("failed to query database stats: %w", err)
		return nil, err
	}

	// Counts are independent; fan out across pool connections.
	counts := make([]int64, len(statsTables))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, table := range statsTables {
		g.Go(func() error {
			// table names come from the fixed list above, never from input
			if scanErr := db.pool.QueryRow(gctx, fmt.Sprintf("SELECT count(*) FROM %s", table)).Scan(&counts[i]); scanErr != nil {
				return fmt.Errorf("failed to count rows in %s: %w", table, scanErr)
			}
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return nil, err
	}

	for i, table := range statsTables {
		stats.Tables = append(stats.Tables, models.TableCount{Table: table, Rows: counts[i]})
	}
	return stats, nil
}

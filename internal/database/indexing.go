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
	"github.com/sysdr/geolab/internal/models"
)

const plannerPointsIndex = "idx_planner_points_geom"

// indexDemoQuery is the radius search whose plan flips from a sequential
// scan to an index scan once the GIST index exists.
const indexDemoQuery = `
	SELECT count(*) FROM planner_points
	WHERE ST_DWithin(geom, ST_SetSRID(ST_MakePoint(2.2945, 48.8584), 4326), 0.5)`

// CompareIndexing captures the plan of a spatial radius query before and
// after creating a GIST index on planner_points. The index is dropped
// first so repeat runs always show the contrast, and left in place
// afterwards for the work_mem lesson to reuse or ignore.
func (db *DB) CompareIndexing(ctx context.Context) (_ *models.IndexComparison, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	done := db.track("EXPLAIN", "planner_points", time.Now())
	defer func() { done(err) }()

	if _, err = db.pool.Exec(ctx, fmt.Sprintf("DROP INDEX IF EXISTS %s", plannerPointsIndex)); err != nil {
		return nil, fmt.Errorf("failed to drop index: %w", err)
	}

	before, err := db.explainOnce(ctx, indexDemoQuery)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	if _, err = db.pool.Exec(ctx, fmt.Sprintf(
		"CREATE INDEX %s ON planner_points USING GIST (geom)", plannerPointsIndex)); err != nil {
		return nil, fmt.Errorf("failed to create GIST index: %w", err)
	}
	logging.Info().Dur("duration", time.Since(start)).Str("index", plannerPointsIndex).Msg("GIST index built")

	// ANALYZE so the planner sees the new index with fresh statistics
	if _, err = db.pool.Exec(ctx, "ANALYZE planner_points"); err != nil {
		return nil, fmt.Errorf("failed to analyze table: %w", err)
	}

	after, err := db.explainOnce(ctx, indexDemoQuery)
	if err != nil {
		return nil, err
	}

	cmp := &models.IndexComparison{
		Query:     indexDemoQuery,
		Before:    before,
		After:     after,
		IndexUsed: planUsesIndexScan(after),
	}
	if after.ExecutionTimeMs > 0 {
		cmp.SpeedupRatio = before.ExecutionTimeMs / after.ExecutionTimeMs
	}
	return cmp, nil
}

// explainOnce runs one EXPLAIN (ANALYZE, FORMAT JSON) in its own
// read-only transaction.
func (db *DB) explainOnce(ctx context.Context, query string) (models.PlanRun, error) {
	tx, err := db.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return models.PlanRun{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	run, err := explainAnalyze(ctx, tx, query)
	if err != nil {
		return models.PlanRun{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return models.PlanRun{}, fmt.Errorf("failed to commit explain transaction: %w", err)
	}
	return run, nil
}

// planUsesIndexScan reports whether the captured plan contains any index
// scan node.
func planUsesIndexScan(run models.PlanRun) bool {
	var envelopes []explainEnvelope
	if err := unmarshalPlan(run.Plan, &envelopes); err != nil || len(envelopes) == 0 {
		return false
	}
	root := envelopes[0].Plan
	return containsNodeType(root, "Index Scan") ||
		containsNodeType(root, "Index Only Scan") ||
		containsNodeType(root, "Bitmap Index Scan") ||
		containsNodeType(root, "Bitmap Heap Scan")
}

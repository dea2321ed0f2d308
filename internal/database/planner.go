// Geolab - PostGIS Teaching Lab: provisioning, lessons, and spatial dashboard
// Copyright 2026 sysdr
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sysdr/geolab

package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"

	"github.com/sysdr/geolab/internal/config"
	"github.com/sysdr/geolab/internal/models"
)

// planNode mirrors the fields of an EXPLAIN (FORMAT JSON) plan node that
// the lab extracts. Everything else stays in the raw JSON.
type planNode struct {
	NodeType      string     `json:"Node Type"`
	SortMethod    string     `json:"Sort Method"`
	SortSpaceUsed int64      `json:"Sort Space Used"`
	SortSpaceType string     `json:"Sort Space Type"`
	Plans         []planNode `json:"Plans"`
}

// explainEnvelope is the top-level element of the JSON array EXPLAIN
// returns.
type explainEnvelope struct {
	Plan          planNode `json:"Plan"`
	PlanningTime  float64  `json:"Planning Time"`
	ExecutionTime float64  `json:"Execution Time"`
}

// unmarshalPlan decodes raw EXPLAIN JSON with the same codec used
// everywhere else.
func unmarshalPlan(raw []byte, v any) error {
	return gojson.Unmarshal(raw, v)
}

// parsePlan extracts the summary fields from raw EXPLAIN (ANALYZE,
// FORMAT JSON) output while keeping the planner's JSON verbatim.
func parsePlan(query string, raw []byte) (models.PlanRun, error) {
	var envelopes []explainEnvelope
	if err := gojson.Unmarshal(raw, &envelopes); err != nil {
		return models.PlanRun{}, fmt.Errorf("failed to parse explain output: %w", err)
	}
	if len(envelopes) == 0 {
		return models.PlanRun{}, fmt.Errorf("explain output contained no plan")
	}

	env := envelopes[0]
	return models.PlanRun{
		Query:           query,
		Plan:            json.RawMessage(raw),
		RootNodeType:    env.Plan.NodeType,
		PlanningTimeMs:  env.PlanningTime,
		ExecutionTimeMs: env.ExecutionTime,
	}, nil
}

// findSortNode walks the plan tree depth-first for the first node carrying
// sort statistics.
func findSortNode(node planNode) (planNode, bool) {
	if node.SortMethod != "" {
		return node, true
	}
	for _, child := range node.Plans {
		if found, ok := findSortNode(child); ok {
			return found, true
		}
	}
	return planNode{}, false
}

// containsNodeType reports whether any node in the tree has the given type
func containsNodeType(node planNode, nodeType string) bool {
	if node.NodeType == nodeType {
		return true
	}
	for _, child := range node.Plans {
		if containsNodeType(child, nodeType) {
			return true
		}
	}
	return false
}

// explainAnalyze runs a query under EXPLAIN (ANALYZE, FORMAT JSON) inside
// the given transaction and returns the parsed run.
func explainAnalyze(ctx context.Context, tx pgx.Tx, query string, args ...any) (models.PlanRun, error) {
	var raw []byte
	explainSQL := "EXPLAIN (ANALYZE, FORMAT JSON) " + query
	if err := tx.QueryRow(ctx, explainSQL, args...).Scan(&raw); err != nil {
		return models.PlanRun{}, fmt.Errorf("failed to explain query: %w", err)
	}
	return parsePlan(query, raw)
}

// cteQueries is the day4 pair: identical aggregations over planner_points,
// differing only in the CTE materialization keyword. MATERIALIZED forces
// the CTE into a tuplestore scanned afterwards; NOT MATERIALIZED lets the
// planner inline the CTE and push the outer WHERE into the scan.
const (
	cteMaterializedQuery = `
		WITH expensive AS MATERIALIZED (
			SELECT id, measurement, ST_X(geom) AS lon, ST_Y(geom) AS lat
			FROM planner_points
		)
		SELECT count(*), avg(measurement)
		FROM expensive
		WHERE lon BETWEEN -10 AND 20 AND lat BETWEEN 36 AND 60`

	cteNotMaterializedQuery = `
		WITH expensive AS NOT MATERIALIZED (
			SELECT id, measurement, ST_X(geom) AS lon, ST_Y(geom) AS lat
			FROM planner_points
		)
		SELECT count(*), avg(measurement)
		FROM expensive
		WHERE lon BETWEEN -10 AND 20 AND lat BETWEEN 36 AND 60`
)

// CompareCTE runs the materialized and not-materialized variants of the
// same CTE query and returns both plans.
func (db *DB) CompareCTE(ctx context.Context) (_ *models.CTEComparison, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	done := db.track("EXPLAIN", "planner_points", time.Now())
	defer func() { done(err) }()

	tx, err := db.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	materialized, err := explainAnalyze(ctx, tx, cteMaterializedQuery)
	if err != nil {
		return nil, err
	}
	notMaterialized, err := explainAnalyze(ctx, tx, cteNotMaterializedQuery)
	if err != nil {
		return nil, err
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit explain transaction: %w", err)
	}

	return &models.CTEComparison{
		Materialized:    materialized,
		NotMaterialized: notMaterialized,
	}, nil
}

// workMemQuery sorts the whole planner_points table by a non-indexed
// expression, which spills to disk under a small work_mem.
const workMemQuery = `
	SELECT id FROM planner_points
	ORDER BY measurement, ST_X(geom)`

// RunWithWorkMem executes the sort-heavy query with work_mem applied via
// SET LOCAL inside a transaction and reports the sort method the planner
// chose. workMem must already satisfy config.ValidWorkMem.
func (db *DB) RunWithWorkMem(ctx context.Context, workMem string) (_ *models.WorkMemRun, err error) {
	if !config.ValidWorkMem(workMem) {
		return nil, fmt.Errorf("invalid work_mem value %q", workMem)
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	done := db.track("EXPLAIN", "planner_points", time.Now())
	defer func() { done(err) }()

	tx, err := db.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// SET LOCAL scopes the setting to this transaction; the pattern check
	// above makes the interpolation safe.
	if _, err = tx.Exec(ctx, fmt.Sprintf("SET LOCAL work_mem = '%s'", workMem)); err != nil {
		return nil, fmt.Errorf("failed to set work_mem: %w", err)
	}

	run, err := explainAnalyze(ctx, tx, workMemQuery)
	if err != nil {
		return nil, err
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit work_mem transaction: %w", err)
	}

	result := &models.WorkMemRun{
		WorkMem:         workMem,
		ExecutionTimeMs: run.ExecutionTimeMs,
	}

	sort, ok, err := sortStatsFromPlan(run.Plan)
	if err != nil {
		return nil, err
	}
	if ok {
		result.SortMethod = sort.SortMethod
		result.SortSpaceUsedKB = sort.SortSpaceUsed
		result.SortSpaceType = sort.SortSpaceType
	}
	return result, nil
}

// sortStatsFromPlan reparses raw EXPLAIN JSON and returns the first node
// carrying sort statistics, if any.
func sortStatsFromPlan(raw []byte) (planNode, bool, error) {
	var envelopes []explainEnvelope
	if err := unmarshalPlan(raw, &envelopes); err != nil {
		return planNode{}, false, fmt.Errorf("failed to reparse work_mem plan: %w", err)
	}
	if len(envelopes) == 0 {
		return planNode{}, false, fmt.Errorf("work_mem plan contained no envelope")
	}
	node, ok := findSortNode(envelopes[0].Plan)
	return node, ok, nil
}

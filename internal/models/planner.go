// Geolab - PostGIS Teaching Lab: provisioning, lessons, and spatial dashboard
// Copyright 2026 sysdr
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sysdr/geolab

package models

import "encoding/json"

// PlanRun is the result of one EXPLAIN (ANALYZE, FORMAT JSON) execution.
// Plan carries the planner's JSON untouched; the extracted fields are
// convenience summaries, never a reinterpretation.
type PlanRun struct {
	Query           string          `json:"query"`
	Plan            json.RawMessage `json:"plan"`
	RootNodeType    string          `json:"root_node_type"`
	PlanningTimeMs  float64         `json:"planning_time_ms"`
	ExecutionTimeMs float64         `json:"execution_time_ms"`
}

// CTEComparison contrasts the same query run with WITH ... AS MATERIALIZED
// against AS NOT MATERIALIZED. Materialized forces the CTE to compute once
// into a tuplestore; not-materialized lets the planner inline it and push
// predicates down.
type CTEComparison struct {
	Materialized    PlanRun `json:"materialized"`
	NotMaterialized PlanRun `json:"not_materialized"`
}

// WorkMemRun is one sorted query executed under SET LOCAL work_mem.
// SortMethod comes straight out of the plan: "quicksort" means the sort fit
// in memory, "external merge" means it spilled to disk.
type WorkMemRun struct {
	WorkMem         string  `json:"work_mem"`
	SortMethod      string  `json:"sort_method"`
	SortSpaceUsedKB int64   `json:"sort_space_used_kb"`
	SortSpaceType   string  `json:"sort_space_type"`
	ExecutionTimeMs float64 `json:"execution_time_ms"`
}

// Spilled reports whether the sort overflowed work_mem to disk.
func (w WorkMemRun) Spilled() bool {
	return w.SortSpaceType == "Disk" || w.SortMethod == "external merge"
}

// IndexComparison shows the same ST_DWithin query planned without and with
// a GIST index on the geometry column.
type IndexComparison struct {
	Query        string  `json:"query"`
	Before       PlanRun `json:"before"`
	After        PlanRun `json:"after"`
	IndexUsed    bool    `json:"index_used"`
	SpeedupRatio float64 `json:"speedup_ratio"`
}

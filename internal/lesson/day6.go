// Geolab - PostGIS Teaching Lab: provisioning, lessons, and spatial dashboard
// Copyright 2026 sysdr
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sysdr/geolab

package lesson

import (
	"context"
	"fmt"

	"github.com/sysdr/geolab/internal/database"
	"github.com/sysdr/geolab/internal/models"
)

// day6 demonstrates work_mem: the same sort spills to disk under a small
// budget and stays in memory under a large one.
func day6() Lesson {
	return Lesson{
		ID:      "day6",
		Title:   "work_mem and sort spills",
		Summary: "SET LOCAL work_mem changes where a sort happens: external merge on disk when the budget is small, quicksort in memory when it fits.",
		Steps: []Step{
			{
				Name:        "starved_sort",
				Description: "The full-table sort under a 64kB work_mem",
				Run:         workMemStep("64kB"),
			},
			{
				Name:        "comfortable_sort",
				Description: "The same sort with 64MB to work in",
				Run:         workMemStep("64MB"),
			},
		},
	}
}

// workMemStep builds a step running the sort query under one work_mem
// setting.
func workMemStep(workMem string) func(context.Context, *database.DB) (*StepResult, error) {
	return func(ctx context.Context, db *database.DB) (*StepResult, error) {
		run, err := db.RunWithWorkMem(ctx, workMem)
		if err != nil {
			return nil, err
		}
		return &StepResult{
			SQL:         fmt.Sprintf("SET LOCAL work_mem = '%s'; EXPLAIN (ANALYZE, FORMAT JSON) SELECT id FROM planner_points ORDER BY measurement, ST_X(geom)", workMem),
			Rows:        run,
			PlannerNote: workMemNote(run),
		}, nil
	}
}

func workMemNote(run *models.WorkMemRun) string {
	if run.SortMethod == "" {
		return "planner reported no sort node"
	}
	if run.Spilled() {
		return fmt.Sprintf("sort spilled: %s using %d kB on disk in %.1fms",
			run.SortMethod, run.SortSpaceUsedKB, run.ExecutionTimeMs)
	}
	return fmt.Sprintf("sort stayed in memory: %s using %d kB in %.1fms",
		run.SortMethod, run.SortSpaceUsedKB, run.ExecutionTimeMs)
}

// Geolab - PostGIS Teaching Lab: provisioning, lessons, and spatial dashboard
// Copyright 2026 sysdr
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sysdr/geolab

package lesson

import (
	"context"
	"fmt"

	"github.com/sysdr/geolab/internal/database"
)

// day4 contrasts MATERIALIZED and NOT MATERIALIZED CTEs on the same query.
func day4() Lesson {
	return Lesson{
		ID:      "day4",
		Title:   "CTE materialization",
		Summary: "WITH ... AS MATERIALIZED forces the CTE into a tuplestore; NOT MATERIALIZED lets the planner inline it and push predicates down. The plans show the difference.",
		Steps: []Step{
			{
				Name:        "materialized_vs_inlined",
				Description: "The same aggregation run once with each CTE mode, plans captured",
				Run: func(ctx context.Context, db *database.DB) (*StepResult, error) {
					cmp, err := db.CompareCTE(ctx)
					if err != nil {
						return nil, err
					}
					return &StepResult{
						Rows: cmp,
						PlannerNote: fmt.Sprintf(
							"materialized: %s at %.1fms; not materialized: %s at %.1fms",
							cmp.Materialized.RootNodeType, cmp.Materialized.ExecutionTimeMs,
							cmp.NotMaterialized.RootNodeType, cmp.NotMaterialized.ExecutionTimeMs),
					}, nil
				},
			},
		},
	}
}

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

// day2 shows what a GIST index does to a spatial radius query's plan.
func day2() Lesson {
	return Lesson{
		ID:      "day2",
		Title:   "GIST spatial indexing",
		Summary: "The same ST_DWithin query planned without and with a GIST index: sequential scan versus index scan, with the speedup measured.",
		Steps: []Step{
			{
				Name:        "before_and_after",
				Description: "Drop the index, capture the plan, build the index, capture it again",
				Run: func(ctx context.Context, db *database.DB) (*StepResult, error) {
					cmp, err := db.CompareIndexing(ctx)
					if err != nil {
						return nil, err
					}
					note := fmt.Sprintf(
						"before: %s at %.1fms; after: %s at %.1fms (%.1fx)",
						cmp.Before.RootNodeType, cmp.Before.ExecutionTimeMs,
						cmp.After.RootNodeType, cmp.After.ExecutionTimeMs,
						cmp.SpeedupRatio)
					if !cmp.IndexUsed {
						note += "; planner declined the index, table may be too small"
					}
					return &StepResult{
						SQL:         cmp.Query,
						Rows:        cmp,
						PlannerNote: note,
					}, nil
				},
			},
		},
	}
}

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

// day3 is geofencing: counting points against region polygons with
// ST_Intersects and ST_Contains.
func day3() Lesson {
	return Lesson{
		ID:      "day3",
		Title:   "Geofencing with ST_Intersects",
		Summary: "Region polygons as geofences: how many random points fall inside each, and where ST_Intersects and ST_Contains differ.",
		Steps: []Step{
			{
				Name:        "region_counts",
				Description: "Point-in-polygon counts for every region",
				Run: func(ctx context.Context, db *database.DB) (*StepResult, error) {
					stats, err := db.RegionStats(ctx)
					if err != nil {
						return nil, err
					}
					return &StepResult{
						SQL:  "SELECT r.name, count(*) FROM planner_points p JOIN regions r ON ST_Intersects(r.boundary, p.geom) GROUP BY r.name",
						Rows: stats,
					}, nil
				},
			},
			{
				Name:        "single_fence",
				Description: "One region queried on its own",
				Run: func(ctx context.Context, db *database.DB) (*StepResult, error) {
					count, err := db.PointsInRegion(ctx, "Western Europe")
					if err != nil {
						return nil, err
					}
					return &StepResult{
						Rows:        map[string]int64{"western_europe_points": count},
						PlannerNote: fmt.Sprintf("%d points inside the Western Europe envelope", count),
					}, nil
				},
			},
			{
				Name:        "region_geojson",
				Description: "A region boundary rendered with ST_AsGeoJSON, ready for a map layer",
				Run: func(ctx context.Context, db *database.DB) (*StepResult, error) {
					stats, err := db.RegionStats(ctx)
					if err != nil {
						return nil, err
					}
					if len(stats) == 0 {
						return &StepResult{PlannerNote: "no regions seeded"}, nil
					}
					region, err := db.RegionGeoJSON(ctx, stats[0].ID)
					if err != nil {
						return nil, err
					}
					return &StepResult{
						SQL:  "SELECT name, ST_AsGeoJSON(boundary) FROM regions WHERE id = $1",
						Rows: region,
					}, nil
				},
			},
		},
	}
}

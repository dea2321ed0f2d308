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

// day5Demo are the three points inserted by the SRID walkthrough
var day5Demo = []struct {
	Name string
	Lon  float64
	Lat  float64
}{
	{"Eiffel Tower", 2.2945, 48.8584},
	{"Statue of Liberty", -74.0445, 40.6892},
	{"Sydney Opera House", 151.2153, -33.8568},
}

// day5 stores points in SRID 4326 and their ST_Transform twins in 3857,
// then reads them back in both systems.
func day5() Lesson {
	return Lesson{
		ID:      "day5",
		Title:   "SRID 4326 vs 3857",
		Summary: "The same point as WGS84 degrees and Web Mercator meters: insert into both tables with ST_Transform, list as WKT, and compare X/Y components.",
		Steps: []Step{
			{
				Name:        "add_demo_points",
				Description: "Insert three well-known points into locations_4326 with their 3857 twins",
				Run: func(ctx context.Context, db *database.DB) (*StepResult, error) {
					ids := make([]int64, 0, len(day5Demo))
					for _, p := range day5Demo {
						id, err := db.AddLocation(ctx, p.Name, p.Lon, p.Lat)
						if err != nil {
							return nil, err
						}
						ids = append(ids, id)
					}
					return &StepResult{
						SQL:  "INSERT INTO locations_4326 (name, geom) VALUES ($1, ST_SetSRID(ST_MakePoint($2, $3), 4326)); INSERT INTO locations_3857 SELECT id, name, ST_Transform(geom, 3857) FROM locations_4326 WHERE id = $4",
						Rows: map[string][]int64{"ids": ids},
					}, nil
				},
			},
			{
				Name:        "list_wgs84",
				Description: "The 4326 table as WKT: familiar lon/lat degrees",
				Run: func(ctx context.Context, db *database.DB) (*StepResult, error) {
					locs, err := db.ListLocations(ctx, 4326, 0, 0)
					if err != nil {
						return nil, err
					}
					return &StepResult{
						SQL:  "SELECT id, name, ST_AsText(geom) FROM locations_4326 ORDER BY id",
						Rows: locs,
					}, nil
				},
			},
			{
				Name:        "list_mercator",
				Description: "The 3857 table as WKT: the same points in projected meters",
				Run: func(ctx context.Context, db *database.DB) (*StepResult, error) {
					locs, err := db.ListLocations(ctx, 3857, 0, 0)
					if err != nil {
						return nil, err
					}
					return &StepResult{
						SQL:  "SELECT id, name, ST_AsText(geom) FROM locations_3857 ORDER BY id",
						Rows: locs,
					}, nil
				},
			},
			{
				Name:        "transform_each",
				Description: "Each point side by side in both spatial reference systems",
				Run: func(ctx context.Context, db *database.DB) (*StepResult, error) {
					locs, err := db.ListLocations(ctx, 4326, 0, 0)
					if err != nil {
						return nil, err
					}
					results := make([]*models.TransformResult, 0, len(locs))
					for _, loc := range locs {
						res, err := db.TransformPoint(ctx, loc.ID)
						if err != nil {
							return nil, err
						}
						results = append(results, res)
					}
					note := ""
					if len(results) > 0 {
						first := results[0]
						note = fmt.Sprintf("%s: (%.4f, %.4f) degrees becomes (%.0f, %.0f) meters",
							first.Name, first.Lon4326, first.Lat4326, first.X3857, first.Y3857)
					}
					return &StepResult{
						Rows:        results,
						PlannerNote: note,
					}, nil
				},
			},
		},
	}
}

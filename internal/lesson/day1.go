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

// day1 contrasts GEOMETRY and GEOGRAPHY distance semantics: the same two
// points yield degrees on the geometry column and meters on geography.
func day1() Lesson {
	return Lesson{
		ID:      "day1",
		Title:   "GEOMETRY vs GEOGRAPHY",
		Summary: "ST_Distance on a GEOMETRY column returns planar degrees; on GEOGRAPHY it returns geodesic meters. Same points, different math.",
		Steps: []Step{
			{
				Name:        "list_landmarks",
				Description: "The sample landmarks with their WGS84 coordinates",
				Run: func(ctx context.Context, db *database.DB) (*StepResult, error) {
					landmarks, err := db.ListLandmarks(ctx)
					if err != nil {
						return nil, err
					}
					return &StepResult{
						SQL:  "SELECT id, name, ST_X(geom), ST_Y(geom) FROM landmarks ORDER BY name",
						Rows: landmarks,
					}, nil
				},
			},
			{
				Name:        "paris_to_new_york",
				Description: "One landmark pair measured three ways",
				Run: func(ctx context.Context, db *database.DB) (*StepResult, error) {
					cmp, err := db.CompareDistance(ctx, "Eiffel Tower", "Statue of Liberty")
					if err != nil {
						return nil, err
					}
					return &StepResult{
						SQL:  "SELECT ST_Distance(a.geom, b.geom), ST_Distance(a.geog, b.geog), ST_Distance(ST_Transform(a.geom, 3857), ST_Transform(b.geom, 3857)) FROM landmarks a, landmarks b WHERE a.name = $1 AND b.name = $2",
						Rows: cmp,
						PlannerNote: fmt.Sprintf(
							"%.2f degrees is not a distance anyone can use; %.1f km is the true geodesic; Web Mercator overstates it by %.1f%%",
							cmp.GeometryDegrees, cmp.GeographyKm(), cmp.MercatorErrorPercent()),
					}, nil
				},
			},
			{
				Name:        "high_latitude_pair",
				Description: "The same comparison far from the equator, where projection distortion is worst",
				Run: func(ctx context.Context, db *database.DB) (*StepResult, error) {
					cmp, err := db.CompareDistance(ctx, "Big Ben", "Tokyo Tower")
					if err != nil {
						return nil, err
					}
					return &StepResult{
						Rows: cmp,
						PlannerNote: fmt.Sprintf("Mercator error at these latitudes: %.1f%%",
							cmp.MercatorErrorPercent()),
					}, nil
				},
			},
			{
				Name:        "radius_search",
				Description: "ST_DWithin on geography: landmarks within 500 km of central Paris",
				Run: func(ctx context.Context, db *database.DB) (*StepResult, error) {
					nearby, err := db.Nearby(ctx, 2.35, 48.85, 500_000)
					if err != nil {
						return nil, err
					}
					return &StepResult{
						SQL:  "SELECT name, ST_Distance(geog, $point) FROM landmarks WHERE ST_DWithin(geog, $point, 500000) ORDER BY 2",
						Rows: nearby,
					}, nil
				},
			},
		},
	}
}

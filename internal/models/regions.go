// Geolab - PostGIS Teaching Lab: provisioning, lessons, and spatial dashboard
// Copyright 2026 sysdr
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sysdr/geolab

package models

import "encoding/json"

// RegionStats is one geofence polygon with the number of planner points
// it contains (ST_Intersects) and those strictly inside it (ST_Contains).
// The two counts differ only for points exactly on the boundary.
type RegionStats struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	AreaSqKm       float64 `json:"area_sq_km"`
	IntersectCount int64   `json:"intersect_count"`
	ContainsCount  int64   `json:"contains_count"`
}

// RegionGeoJSON is a region polygon rendered by ST_AsGeoJSON. Geometry is
// kept as raw JSON so the database's output reaches the dashboard verbatim.
type RegionGeoJSON struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Geometry json.RawMessage `json:"geometry"`
}

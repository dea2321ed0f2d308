// Geolab - PostGIS Teaching Lab: provisioning, lessons, and spatial dashboard
// Copyright 2026 sysdr
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sysdr/geolab

package models

import "time"

// Landmark is a named sample point stored as both GEOMETRY(Point, 4326)
// and GEOGRAPHY in the landmarks table.
type Landmark struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Longitude float64   `json:"longitude"`
	Latitude  float64   `json:"latitude"`
	CreatedAt time.Time `json:"created_at"`
}

// Location is a user-added point from the SRID exercise tables. SRID is
// 4326 or 3857; WKT is rendered by ST_AsText in SQL.
type Location struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	SRID      int       `json:"srid"`
	WKT       string    `json:"wkt"`
	CreatedAt time.Time `json:"created_at"`
}

// TransformResult shows one stored point in both spatial reference
// systems: WGS84 degrees and Web Mercator meters.
type TransformResult struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	WKT4326  string  `json:"wkt_4326"`
	WKT3857  string  `json:"wkt_3857"`
	Lon4326  float64 `json:"lon_4326"`
	Lat4326  float64 `json:"lat_4326"`
	X3857    float64 `json:"x_3857"`
	Y3857    float64 `json:"y_3857"`
}

// DistanceComparison pairs the three distance readings for two landmarks:
// planar degrees (GEOMETRY, SRID 4326), geodesic meters (GEOGRAPHY), and
// projected meters (GEOMETRY, SRID 3857). The geography value is the true
// ground distance; the other two are the lesson.
type DistanceComparison struct {
	From            string  `json:"from"`
	To              string  `json:"to"`
	GeometryDegrees float64 `json:"geometry_degrees"`
	GeographyMeters float64 `json:"geography_meters"`
	MercatorMeters  float64 `json:"mercator_meters"`
}

// GeographyKm returns the geodesic distance in kilometers.
func (d DistanceComparison) GeographyKm() float64 {
	return d.GeographyMeters / 1000
}

// MercatorErrorPercent reports how far the Web Mercator measurement
// deviates from the geodesic one. Grows with latitude; that distortion is
// the point of the comparison.
func (d DistanceComparison) MercatorErrorPercent() float64 {
	if d.GeographyMeters == 0 {
		return 0
	}
	return (d.MercatorMeters - d.GeographyMeters) / d.GeographyMeters * 100
}

// NearbyLandmark is a landmark matched by an ST_DWithin geography search,
// with its geodesic distance from the query point.
type NearbyLandmark struct {
	Landmark
	DistanceMeters float64 `json:"distance_meters"`
}

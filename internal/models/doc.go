// Geolab - PostGIS Teaching Lab: provisioning, lessons, and spatial dashboard
// Copyright 2026 sysdr
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sysdr/geolab

/*
Package models defines the data structures shared between the database layer,
the lesson runner, and the HTTP API.

The central distinction the lab teaches runs through these types: the same
point stored as GEOMETRY in SRID 4326 measures distance in degrees, while
GEOGRAPHY measures in meters, and SRID 3857 (Web Mercator) measures in
projected meters that distort with latitude. DistanceComparison carries all
three numbers side by side so a reader can see the difference for one pair
of landmarks.

All types serialize to JSON with snake_case field names for the dashboard
API. Geometry columns never cross this boundary as raw WKB; they are
rendered to WKT or GeoJSON in SQL before scanning.
*/
package models

// Geolab - PostGIS Teaching Lab: provisioning, lessons, and spatial dashboard
// Copyright 2026 sysdr
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sysdr/geolab

package models

// TableCount is a per-table row count for the stats endpoint.
type TableCount struct {
	Table string `json:"table"`
	Rows  int64  `json:"rows"`
}

// DatabaseStats is the dashboard's summary card: server and extension
// versions, on-disk size, and per-table row counts.
type DatabaseStats struct {
	PostgresVersion string       `json:"postgres_version"`
	PostGISVersion  string       `json:"postgis_version"`
	DatabaseSize    string       `json:"database_size"`
	Tables          []TableCount `json:"tables"`
}

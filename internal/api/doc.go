// Geolab - PostGIS Teaching Lab: provisioning, lessons, and spatial dashboard
// Copyright 2026 sysdr
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sysdr/geolab

// Package api implements the HTTP dashboard for the lab: health and
// stats endpoints, CRUD over the twin SRID location tables, spatial
// query endpoints backed by PostGIS, planner experiment endpoints, and
// lesson execution. Routing uses chi; every response is wrapped in a
// uniform JSON envelope with a request ID and timing metadata.
package api

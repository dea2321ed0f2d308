// Geolab - PostGIS Teaching Lab: provisioning, lessons, and spatial dashboard
// Copyright 2026 sysdr
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sysdr/geolab

package api

import (
	"net/http"
	"time"

	"github.com/sysdr/geolab/internal/logging"
)

// HealthStatus is the body of GET /api/v1/health.
type HealthStatus struct {
	Status         string  `json:"status"`
	UptimeSeconds  float64 `json:"uptime_seconds"`
	Database       string  `json:"database"`
	PostGISVersion string  `json:"postgis_version,omitempty"`
}

// HandleLiveness reports that the process is up. It never touches the
// database, so orchestrators can distinguish a hung process from a
// broken dependency.
func (h *Handler) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]string{"status": "alive"})
}

// HandleReadiness reports whether the database accepts connections.
func (h *Handler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if err := h.store.Ping(r.Context()); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Readiness check failed")
		rw.Unavailable("database not ready")
		return
	}
	rw.Success(map[string]string{"status": "ready"})
}

// HandleHealth reports full health including the PostGIS version.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	status := HealthStatus{
		Status:        "healthy",
		UptimeSeconds: time.Since(h.startTime).Seconds(),
		Database:      "up",
	}

	if err := h.store.Ping(r.Context()); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Health check: database unreachable")
		status.Status = "degraded"
		status.Database = "down"
		rw.Success(status)
		return
	}

	version, err := h.store.PostGISVersion(r.Context())
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Health check: postgis_full_version failed")
		status.Status = "degraded"
	} else {
		status.PostGISVersion = version
	}
	rw.Success(status)
}

// HandleStats returns version, size, and per-table row counts.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	stats, err := h.store.Stats(r.Context())
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Stats query failed")
		rw.DatabaseError()
		return
	}
	rw.Success(stats)
}

// Geolab - PostGIS Teaching Lab: provisioning, lessons, and spatial dashboard
// Copyright 2026 sysdr
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sysdr/geolab

package api

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sysdr/geolab/internal/middleware"
	"github.com/sysdr/geolab/internal/web"
)

// SetupChi builds the dashboard router: health endpoints under a
// permissive rate limit, the lab API under the standard limit with
// Prometheus instrumentation, the /metrics scrape endpoint, and the
// embedded static dashboard at the root.
func SetupChi(h *Handler) *chi.Mux {
	mw := NewChiMiddleware(&h.cfg.Server)

	r := chi.NewRouter()
	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(mw.CORS())

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(mw.RateLimitHealth())
		r.Get("/", h.HandleHealth)
		r.Get("/live", h.HandleLiveness)
		r.Get("/ready", h.HandleReadiness)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.RateLimit())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))

		r.Get("/stats", h.HandleStats)

		r.Get("/landmarks", h.HandleListLandmarks)
		r.Get("/distance", h.HandleDistance)
		r.Get("/nearby", h.HandleNearby)

		r.Get("/locations", h.HandleListLocations)
		r.Post("/locations", h.HandleAddLocation)
		r.Get("/locations/{id}/transform", h.HandleTransformLocation)

		r.Get("/regions", h.HandleRegions)
		r.Get("/regions/{id}/geojson", h.HandleRegionGeoJSON)

		r.Get("/planner/cte", h.HandlePlannerCTE)
		r.Get("/planner/workmem", h.HandlePlannerWorkMem)
		r.Get("/planner/indexing", h.HandlePlannerIndexing)

		r.Get("/lessons", h.HandleListLessons)
		r.Post("/lessons/{id}/run", h.HandleRunLesson)
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/*", web.Handler())

	return r
}

// Geolab - PostGIS Teaching Lab: provisioning, lessons, and spatial dashboard
// Copyright 2026 sysdr
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sysdr/geolab

package api

import (
	"net/http"

	"github.com/sysdr/geolab/internal/config"
	"github.com/sysdr/geolab/internal/logging"
	"github.com/sysdr/geolab/internal/models"
)

// HandlePlannerCTE runs the same aggregate query with MATERIALIZED and
// NOT MATERIALIZED CTEs and returns both EXPLAIN ANALYZE plans. The
// optional materialized query parameter (true/false) narrows the
// response to one variant.
func (h *Handler) HandlePlannerCTE(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	cmp, err := h.store.CompareCTE(r.Context())
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("CTE comparison failed")
		rw.DatabaseError()
		return
	}

	switch r.URL.Query().Get("materialized") {
	case "":
		rw.Success(cmp)
	case "true":
		rw.Success(cmp.Materialized)
	case "false":
		rw.Success(cmp.NotMaterialized)
	default:
		rw.BadRequest("materialized must be true or false", nil)
	}
}

// HandlePlannerWorkMem runs the big sort under the work_mem given in
// the work_mem query parameter and reports whether it spilled to disk.
func (h *Handler) HandlePlannerWorkMem(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	workMem := r.URL.Query().Get("work_mem")
	if workMem == "" {
		rw.BadRequest("missing query parameter \"work_mem\"", nil)
		return
	}
	if !config.ValidWorkMem(workMem) {
		rw.ValidationError("work_mem must look like 64kB, 4MB, or 1GB", map[string]string{
			"work_mem": workMem,
		})
		return
	}

	run, err := h.store.RunWithWorkMem(r.Context(), workMem)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("work_mem", workMem).Msg("work_mem run failed")
		rw.DatabaseError()
		return
	}
	rw.Success(run)
}

// IndexingResponse augments the raw comparison with a one-line verdict
// for the dashboard.
type IndexingResponse struct {
	*models.IndexComparison
	Verdict string `json:"verdict"`
}

// HandlePlannerIndexing drops and recreates the GIST index around the
// demo query and returns the before/after plans.
func (h *Handler) HandlePlannerIndexing(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	cmp, err := h.store.CompareIndexing(r.Context())
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Indexing comparison failed")
		rw.DatabaseError()
		return
	}

	verdict := "planner chose a sequential scan even with the index"
	if cmp.IndexUsed {
		verdict = "planner used the GIST index"
	}
	rw.Success(IndexingResponse{IndexComparison: cmp, Verdict: verdict})
}

// Geolab - PostGIS Teaching Lab: provisioning, lessons, and spatial dashboard
// Copyright 2026 sysdr
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sysdr/geolab

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sysdr/geolab/internal/database"
	"github.com/sysdr/geolab/internal/logging"
)

// HandleListLessons returns the lesson catalogue in day order.
func (h *Handler) HandleListLessons(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(h.lessons.All())
}

// HandleRunLesson executes one lesson and returns the per-step results
// including the SQL each step ran.
func (h *Handler) HandleRunLesson(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id := chi.URLParam(r, "id")
	result, err := h.runner.Run(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		rw.NotFound("unknown lesson")
		return
	}
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("lesson", id).Msg("Lesson run failed")
		rw.DatabaseError()
		return
	}
	rw.Success(result)
}

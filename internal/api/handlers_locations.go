// Geolab - PostGIS Teaching Lab: provisioning, lessons, and spatial dashboard
// Copyright 2026 sysdr
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sysdr/geolab

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sysdr/geolab/internal/database"
	"github.com/sysdr/geolab/internal/logging"
)

// HandleListLocations returns the stored points of one SRID table.
// Query parameters: srid (4326 default, or 3857), limit, offset.
func (h *Handler) HandleListLocations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	srid := 4326
	if raw := r.URL.Query().Get("srid"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			rw.BadRequest("srid must be an integer", nil)
			return
		}
		srid = parsed
	}
	if srid != 4326 && srid != 3857 {
		rw.BadRequest("srid must be 4326 or 3857", nil)
		return
	}

	limit, offset, err := h.pagination(r)
	if err != nil {
		rw.BadRequest(err.Error(), nil)
		return
	}

	locations, err := h.store.ListLocations(r.Context(), srid, limit, offset)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Int("srid", srid).Msg("List locations failed")
		rw.DatabaseError()
		return
	}
	total, err := h.store.CountLocations(r.Context(), srid)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Int("srid", srid).Msg("Count locations failed")
		rw.DatabaseError()
		return
	}

	rw.SuccessWithPagination(locations, &PaginationMeta{
		Limit:   limit,
		Offset:  offset,
		Total:   total,
		HasMore: int64(offset+len(locations)) < total,
	})
}

// HandleAddLocation inserts a WGS 84 point and its Web Mercator twin
// in one transaction, then returns the transform comparison so the
// response shows both representations of the point just added.
func (h *Handler) HandleAddLocation(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req AddLocationRequest
	malformed, err := decodeBody(r, &req)
	if malformed {
		rw.BadRequest(err.Error(), nil)
		return
	}
	if err != nil {
		rw.ValidationError("invalid location", validationDetails(err))
		return
	}

	id, err := h.store.AddLocation(r.Context(), req.Name, req.Longitude, req.Latitude)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("name", req.Name).Msg("Add location failed")
		rw.DatabaseError()
		return
	}

	result, err := h.store.TransformPoint(r.Context(), id)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Int64("id", id).Msg("Transform after insert failed")
		rw.DatabaseError()
		return
	}
	rw.Created(result)
}

// HandleTransformLocation returns one stored point in both SRIDs.
func (h *Handler) HandleTransformLocation(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		rw.BadRequest("id must be a positive integer", nil)
		return
	}

	result, err := h.store.TransformPoint(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		rw.NotFound("location not found")
		return
	}
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Int64("id", id).Msg("Transform location failed")
		rw.DatabaseError()
		return
	}
	rw.Success(result)
}

// pagination reads limit/offset query parameters, clamping limit to
// the configured maximum and defaulting it when absent.
func (h *Handler) pagination(r *http.Request) (limit, offset int, err error) {
	limit = h.cfg.API.DefaultPageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return 0, 0, errors.New("limit must be a positive integer")
		}
	}
	if limit > h.cfg.API.MaxPageSize {
		limit = h.cfg.API.MaxPageSize
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		offset, err = strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return 0, 0, errors.New("offset must be a non-negative integer")
		}
	}
	return limit, offset, nil
}

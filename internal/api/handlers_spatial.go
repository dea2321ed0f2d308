// Geolab - PostGIS Teaching Lab: provisioning, lessons, and spatial dashboard
// Copyright 2026 sysdr
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sysdr/geolab

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sysdr/geolab/internal/database"
	"github.com/sysdr/geolab/internal/logging"
)

// HandleListLandmarks returns the seeded landmark catalogue.
func (h *Handler) HandleListLandmarks(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	landmarks, err := h.store.ListLandmarks(r.Context())
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("List landmarks failed")
		rw.DatabaseError()
		return
	}
	rw.Success(landmarks)
}

// HandleDistance compares the distance between two landmarks measured
// three ways: geometry degrees, geography meters, and Web Mercator
// meters. Query parameters: from, to (landmark names).
func (h *Handler) HandleDistance(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req := DistanceRequest{
		From: r.URL.Query().Get("from"),
		To:   r.URL.Query().Get("to"),
	}
	if err := validate.Struct(req); err != nil {
		rw.ValidationError("from and to must name two distinct landmarks", validationDetails(err))
		return
	}

	cmp, err := h.store.CompareDistance(r.Context(), req.From, req.To)
	if errors.Is(err, database.ErrNotFound) {
		rw.NotFound("landmark not found")
		return
	}
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).
			Str("from", req.From).Str("to", req.To).Msg("Distance comparison failed")
		rw.DatabaseError()
		return
	}
	rw.Success(cmp)
}

// HandleNearby returns landmarks within radius_m meters of a lon/lat
// point, nearest first. The radius is evaluated on the geography
// column so it means real meters at any latitude.
func (h *Handler) HandleNearby(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req NearbyRequest
	var err error
	if req.Latitude, err = queryFloat(r, "lat"); err != nil {
		rw.BadRequest(err.Error(), nil)
		return
	}
	if req.Longitude, err = queryFloat(r, "lon"); err != nil {
		rw.BadRequest(err.Error(), nil)
		return
	}
	if req.RadiusM, err = queryFloat(r, "radius_m"); err != nil {
		rw.BadRequest(err.Error(), nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		rw.ValidationError("invalid search point or radius", validationDetails(err))
		return
	}

	landmarks, err := h.store.Nearby(r.Context(), req.Longitude, req.Latitude, req.RadiusM)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Nearby search failed")
		rw.DatabaseError()
		return
	}
	rw.Success(landmarks)
}

// HandleRegions returns per-region area and landmark counts, contrasting
// ST_Intersects with ST_Contains.
func (h *Handler) HandleRegions(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	regions, err := h.store.RegionStats(r.Context())
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Region stats failed")
		rw.DatabaseError()
		return
	}
	rw.Success(regions)
}

// HandleRegionGeoJSON returns one region boundary as GeoJSON.
func (h *Handler) HandleRegionGeoJSON(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		rw.BadRequest("id must be a positive integer", nil)
		return
	}

	region, err := h.store.RegionGeoJSON(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		rw.NotFound("region not found")
		return
	}
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Int64("id", id).Msg("Region GeoJSON failed")
		rw.DatabaseError()
		return
	}
	rw.Success(region)
}

// queryFloat parses a required float query parameter.
func queryFloat(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, fmt.Errorf("missing query parameter %q", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("query parameter %q must be a number", name)
	}
	return v, nil
}

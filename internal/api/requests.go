// Geolab - PostGIS Teaching Lab: provisioning, lessons, and spatial dashboard
// Copyright 2026 sysdr
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sysdr/geolab

package api

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	gojson "github.com/goccy/go-json"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// AddLocationRequest is the body of POST /api/v1/locations. The point
// is always supplied in WGS 84 lon/lat; the server derives the Web
// Mercator twin.
type AddLocationRequest struct {
	Name      string  `json:"name" validate:"required,min=1,max=120"`
	Longitude float64 `json:"longitude" validate:"min=-180,max=180"`
	Latitude  float64 `json:"latitude" validate:"min=-90,max=90"`
}

// DistanceRequest holds the query parameters of GET /api/v1/distance.
type DistanceRequest struct {
	From string `validate:"required,min=1,max=120"`
	To   string `validate:"required,min=1,max=120,nefield=From"`
}

// NearbyRequest holds the query parameters of GET /api/v1/nearby.
type NearbyRequest struct {
	Longitude float64 `validate:"min=-180,max=180"`
	Latitude  float64 `validate:"min=-90,max=90"`
	RadiusM   float64 `validate:"gt=0,max=20037508"`
}

// decodeBody parses a JSON request body into dst and validates it.
// The two failure modes map to different error codes, so the caller
// can tell malformed JSON from a value that is out of range.
func decodeBody(r *http.Request, dst any) (malformed bool, err error) {
	if err := gojson.NewDecoder(r.Body).Decode(dst); err != nil {
		return true, fmt.Errorf("invalid JSON body: %w", err)
	}
	if err := validate.Struct(dst); err != nil {
		return false, err
	}
	return false, nil
}

// validationDetails flattens validator errors into a field -> violated
// constraint map fit for an API error response.
func validationDetails(err error) map[string]string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"error": err.Error()}
	}
	details := make(map[string]string, len(errs))
	for _, fe := range errs {
		details[fe.Field()] = fe.Tag()
	}
	return details
}

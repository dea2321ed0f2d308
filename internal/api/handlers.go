// Geolab - PostGIS Teaching Lab: provisioning, lessons, and spatial dashboard
// Copyright 2026 sysdr
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sysdr/geolab

package api

import (
	"context"
	"time"

	"github.com/sysdr/geolab/internal/config"
	"github.com/sysdr/geolab/internal/database"
	"github.com/sysdr/geolab/internal/lesson"
	"github.com/sysdr/geolab/internal/models"
)

// Store is the database surface the handlers depend on. *database.DB
// implements it; tests substitute a fake.
type Store interface {
	Ping(ctx context.Context) error
	PostGISVersion(ctx context.Context) (string, error)
	Stats(ctx context.Context) (*models.DatabaseStats, error)

	ListLandmarks(ctx context.Context) ([]models.Landmark, error)
	CompareDistance(ctx context.Context, from, to string) (*models.DistanceComparison, error)
	Nearby(ctx context.Context, lon, lat, radiusMeters float64) ([]models.NearbyLandmark, error)

	AddLocation(ctx context.Context, name string, lon, lat float64) (int64, error)
	ListLocations(ctx context.Context, srid, limit, offset int) ([]models.Location, error)
	CountLocations(ctx context.Context, srid int) (int64, error)
	TransformPoint(ctx context.Context, id int64) (*models.TransformResult, error)

	RegionStats(ctx context.Context) ([]models.RegionStats, error)
	RegionGeoJSON(ctx context.Context, id int64) (*models.RegionGeoJSON, error)

	CompareCTE(ctx context.Context) (*models.CTEComparison, error)
	RunWithWorkMem(ctx context.Context, workMem string) (*models.WorkMemRun, error)
	CompareIndexing(ctx context.Context) (*models.IndexComparison, error)
}

var _ Store = (*database.DB)(nil)

// LessonRunner executes a registered lesson against the lab database.
// *lesson.Runner implements it.
type LessonRunner interface {
	Run(ctx context.Context, id string) (*lesson.Result, error)
}

// Handler holds the dependencies shared by all endpoint handlers. The
// handlers themselves are split across the handlers_*.go files by
// concern.
type Handler struct {
	store     Store
	runner    LessonRunner
	lessons   *lesson.Registry
	cfg       *config.Config
	startTime time.Time
}

// NewHandler wires the handler set.
func NewHandler(store Store, runner LessonRunner, lessons *lesson.Registry, cfg *config.Config) *Handler {
	return &Handler{
		store:     store,
		runner:    runner,
		lessons:   lessons,
		cfg:       cfg,
		startTime: time.Now(),
	}
}

// Geolab - PostGIS Teaching Lab: provisioning, lessons, and spatial dashboard
// Copyright 2026 sysdr
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sysdr/geolab

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sysdr/geolab/internal/config"
	"github.com/sysdr/geolab/internal/database"
	"github.com/sysdr/geolab/internal/lesson"
	"github.com/sysdr/geolab/internal/models"
)

// fakeStore implements Store in memory. Zero-value fields fall back to
// canned fixtures; set an err field to force a failure path.
type fakeStore struct {
	pingErr error
	failAll bool

	landmarks []models.Landmark
	locations map[int][]models.Location
	added     []models.Location
	nextID    int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		landmarks: []models.Landmark{
			{ID: 1, Name: "Eiffel Tower", Longitude: 2.2945, Latitude: 48.8584},
			{ID: 2, Name: "Big Ben", Longitude: -0.1246, Latitude: 51.5007},
		},
		locations: map[int][]models.Location{4326: {}, 3857: {}},
		nextID:    1,
	}
}

var errBoom = errors.New("boom")

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

func (f *fakeStore) PostGISVersion(context.Context) (string, error) {
	if f.failAll {
		return "", errBoom
	}
	return "POSTGIS=\"3.4.2\" GEOS=\"3.12.1\"", nil
}

func (f *fakeStore) Stats(context.Context) (*models.DatabaseStats, error) {
	if f.failAll {
		return nil, errBoom
	}
	return &models.DatabaseStats{
		PostgresVersion: "PostgreSQL 16.3",
		PostGISVersion:  "POSTGIS=\"3.4.2\"",
		DatabaseSize:    "12 MB",
		Tables:          []models.TableCount{{Table: "landmarks", Rows: 2}},
	}, nil
}

func (f *fakeStore) ListLandmarks(context.Context) ([]models.Landmark, error) {
	if f.failAll {
		return nil, errBoom
	}
	return f.landmarks, nil
}

func (f *fakeStore) CompareDistance(_ context.Context, from, to string) (*models.DistanceComparison, error) {
	if f.failAll {
		return nil, errBoom
	}
	for _, name := range []string{from, to} {
		if !f.hasLandmark(name) {
			return nil, fmt.Errorf("landmark %q: %w", name, database.ErrNotFound)
		}
	}
	return &models.DistanceComparison{
		From: from, To: to,
		GeometryDegrees: 3.1, GeographyMeters: 343_000, MercatorMeters: 551_000,
	}, nil
}

func (f *fakeStore) hasLandmark(name string) bool {
	for _, l := range f.landmarks {
		if l.Name == name {
			return true
		}
	}
	return false
}

func (f *fakeStore) Nearby(_ context.Context, _, _, radiusMeters float64) ([]models.NearbyLandmark, error) {
	if f.failAll {
		return nil, errBoom
	}
	if radiusMeters < 1000 {
		return []models.NearbyLandmark{}, nil
	}
	return []models.NearbyLandmark{
		{Landmark: f.landmarks[0], DistanceMeters: 120},
	}, nil
}

func (f *fakeStore) AddLocation(_ context.Context, name string, lon, lat float64) (int64, error) {
	if f.failAll {
		return 0, errBoom
	}
	id := f.nextID
	f.nextID++
	loc := models.Location{ID: id, Name: name, SRID: 4326,
		WKT: fmt.Sprintf("POINT(%g %g)", lon, lat), CreatedAt: time.Now()}
	f.locations[4326] = append(f.locations[4326], loc)
	twin := loc
	twin.SRID = 3857
	f.locations[3857] = append(f.locations[3857], twin)
	f.added = append(f.added, loc)
	return id, nil
}

func (f *fakeStore) ListLocations(_ context.Context, srid, limit, offset int) ([]models.Location, error) {
	if f.failAll {
		return nil, errBoom
	}
	all := f.locations[srid]
	if offset >= len(all) {
		return []models.Location{}, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (f *fakeStore) CountLocations(_ context.Context, srid int) (int64, error) {
	if f.failAll {
		return 0, errBoom
	}
	return int64(len(f.locations[srid])), nil
}

func (f *fakeStore) TransformPoint(_ context.Context, id int64) (*models.TransformResult, error) {
	if f.failAll {
		return nil, errBoom
	}
	for _, loc := range f.locations[4326] {
		if loc.ID == id {
			return &models.TransformResult{ID: id, Name: loc.Name,
				Lon4326: 2.2945, Lat4326: 48.8584, X3857: 255_422.6, Y3857: 6_250_962.1}, nil
		}
	}
	return nil, fmt.Errorf("location %d: %w", id, database.ErrNotFound)
}

func (f *fakeStore) RegionStats(context.Context) ([]models.RegionStats, error) {
	if f.failAll {
		return nil, errBoom
	}
	return []models.RegionStats{
		{ID: 1, Name: "Western Europe", AreaSqKm: 7_654_321, IntersectCount: 2, ContainsCount: 2},
	}, nil
}

func (f *fakeStore) RegionGeoJSON(_ context.Context, id int64) (*models.RegionGeoJSON, error) {
	if f.failAll {
		return nil, errBoom
	}
	if id != 1 {
		return nil, fmt.Errorf("region %d: %w", id, database.ErrNotFound)
	}
	return &models.RegionGeoJSON{ID: 1, Name: "Western Europe",
		Geometry: json.RawMessage(`{"type":"Polygon","coordinates":[]}`)}, nil
}

func (f *fakeStore) CompareCTE(context.Context) (*models.CTEComparison, error) {
	if f.failAll {
		return nil, errBoom
	}
	return &models.CTEComparison{
		Materialized:    models.PlanRun{RootNodeType: "Aggregate", ExecutionTimeMs: 42.0},
		NotMaterialized: models.PlanRun{RootNodeType: "Aggregate", ExecutionTimeMs: 17.5},
	}, nil
}

func (f *fakeStore) RunWithWorkMem(_ context.Context, workMem string) (*models.WorkMemRun, error) {
	if f.failAll {
		return nil, errBoom
	}
	run := &models.WorkMemRun{WorkMem: workMem, SortMethod: "quicksort",
		SortSpaceUsedKB: 2048, SortSpaceType: "Memory", ExecutionTimeMs: 12.0}
	if workMem == "64kB" {
		run.SortMethod = "external merge"
		run.SortSpaceType = "Disk"
		run.SortSpaceUsedKB = 18_992
	}
	return run, nil
}

func (f *fakeStore) CompareIndexing(context.Context) (*models.IndexComparison, error) {
	if f.failAll {
		return nil, errBoom
	}
	return &models.IndexComparison{
		Before:       models.PlanRun{RootNodeType: "Seq Scan", ExecutionTimeMs: 120},
		After:        models.PlanRun{RootNodeType: "Bitmap Heap Scan", ExecutionTimeMs: 4},
		IndexUsed:    true,
		SpeedupRatio: 30,
	}, nil
}

type fakeRunner struct {
	ran []string
	err error
}

func (f *fakeRunner) Run(_ context.Context, id string) (*lesson.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	if id != "day1" {
		return nil, fmt.Errorf("lesson %q: %w", id, database.ErrNotFound)
	}
	f.ran = append(f.ran, id)
	return &lesson.Result{LessonID: id, Title: "Geometry vs geography",
		Steps: []lesson.StepResult{{Name: "list_landmarks"}}, CompletedAt: time.Now()}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Environment:     "development",
			RateLimitReqs:   1000,
			RateLimitWindow: time.Minute,
		},
		API: config.APIConfig{DefaultPageSize: 50, MaxPageSize: 200},
	}
}

func newTestRouter(t *testing.T, store Store, runner LessonRunner) http.Handler {
	t.Helper()
	registry, err := lesson.NewRegistry(
		lesson.Lesson{ID: "day1", Title: "Geometry vs geography", Summary: "distance three ways"},
		lesson.Lesson{ID: "day2", Title: "GIST indexing", Summary: "before and after"},
	)
	require.NoError(t, err)
	return SetupChi(NewHandler(store, runner, registry, testConfig()))
}

func doJSON(t *testing.T, router http.Handler, method, path string, body []byte) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var envelope APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope), "body: %s", rec.Body.String())
	return rec, envelope
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t, newFakeStore(), &fakeRunner{})

	rec, env := doJSON(t, router, http.MethodGet, "/api/v1/health/live", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	rec, env = doJSON(t, router, http.MethodGet, "/api/v1/health/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	rec, env = doJSON(t, router, http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	data := env.Data.(map[string]any)
	assert.Equal(t, "healthy", data["status"])
	assert.Contains(t, data["postgis_version"], "POSTGIS")
	assert.NotEmpty(t, env.Meta.RequestID)
}

func TestHealthEndpoints_DatabaseDown(t *testing.T) {
	store := newFakeStore()
	store.pingErr = errBoom
	router := newTestRouter(t, store, &fakeRunner{})

	rec, env := doJSON(t, router, http.MethodGet, "/api/v1/health/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, ErrCodeUnavailable, env.Error.Code)

	// Liveness must not care about the database.
	rec, _ = doJSON(t, router, http.MethodGet, "/api/v1/health/live", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = doJSON(t, router, http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "degraded", env.Data.(map[string]any)["status"])
}

func TestStats(t *testing.T) {
	router := newTestRouter(t, newFakeStore(), &fakeRunner{})

	rec, env := doJSON(t, router, http.MethodGet, "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := env.Data.(map[string]any)
	assert.Equal(t, "12 MB", data["database_size"])
	assert.Len(t, data["tables"], 1)
}

func TestDistance(t *testing.T) {
	router := newTestRouter(t, newFakeStore(), &fakeRunner{})

	rec, env := doJSON(t, router, http.MethodGet,
		"/api/v1/distance?from=Eiffel+Tower&to=Big+Ben", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := env.Data.(map[string]any)
	assert.Equal(t, 343_000.0, data["geography_meters"])
	assert.Greater(t, data["mercator_meters"], data["geography_meters"])
}

func TestDistance_Validation(t *testing.T) {
	router := newTestRouter(t, newFakeStore(), &fakeRunner{})

	tests := []struct {
		name  string
		query string
		code  string
	}{
		{"missing params", "", ErrCodeValidationFailed},
		{"missing to", "?from=Eiffel+Tower", ErrCodeValidationFailed},
		{"same landmark", "?from=Eiffel+Tower&to=Eiffel+Tower", ErrCodeValidationFailed},
		{"unknown landmark", "?from=Eiffel+Tower&to=Atlantis", ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := doJSON(t, router, http.MethodGet, "/api/v1/distance"+tt.query, nil)
			assert.False(t, env.Success)
			assert.Equal(t, tt.code, env.Error.Code)
			if tt.code == ErrCodeNotFound {
				assert.Equal(t, http.StatusNotFound, rec.Code)
			} else {
				assert.Equal(t, http.StatusBadRequest, rec.Code)
			}
		})
	}
}

func TestNearby(t *testing.T) {
	router := newTestRouter(t, newFakeStore(), &fakeRunner{})

	rec, env := doJSON(t, router, http.MethodGet,
		"/api/v1/nearby?lat=48.8584&lon=2.2945&radius_m=500000", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rows := env.Data.([]any)
	require.Len(t, rows, 1)
	assert.Equal(t, "Eiffel Tower", rows[0].(map[string]any)["name"])
}

func TestNearby_Validation(t *testing.T) {
	router := newTestRouter(t, newFakeStore(), &fakeRunner{})

	tests := []struct {
		name  string
		query string
	}{
		{"missing lat", "?lon=2.29&radius_m=1000"},
		{"lat out of range", "?lat=95&lon=2.29&radius_m=1000"},
		{"lon out of range", "?lat=48.8&lon=181&radius_m=1000"},
		{"zero radius", "?lat=48.8&lon=2.29&radius_m=0"},
		{"non-numeric", "?lat=abc&lon=2.29&radius_m=1000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := doJSON(t, router, http.MethodGet, "/api/v1/nearby"+tt.query, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.False(t, env.Success)
		})
	}
}

func TestAddLocation(t *testing.T) {
	store := newFakeStore()
	router := newTestRouter(t, store, &fakeRunner{})

	body := []byte(`{"name":"Office","longitude":2.2945,"latitude":48.8584}`)
	rec, env := doJSON(t, router, http.MethodPost, "/api/v1/locations", body)
	require.Equal(t, http.StatusCreated, rec.Code)
	data := env.Data.(map[string]any)
	assert.Equal(t, "Office", data["name"])
	assert.InDelta(t, 255_422.6, data["x_3857"], 0.1)
	require.Len(t, store.added, 1)
}

func TestAddLocation_Validation(t *testing.T) {
	router := newTestRouter(t, newFakeStore(), &fakeRunner{})

	tests := []struct {
		name string
		body string
		code string
	}{
		{"malformed JSON", `{"name":`, ErrCodeBadRequest},
		{"empty name", `{"name":"","longitude":0,"latitude":0}`, ErrCodeValidationFailed},
		{"latitude out of range", `{"name":"x","longitude":0,"latitude":91}`, ErrCodeValidationFailed},
		{"longitude out of range", `{"name":"x","longitude":-181,"latitude":0}`, ErrCodeValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := doJSON(t, router, http.MethodPost, "/api/v1/locations", []byte(tt.body))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}
}

func TestListLocations_Pagination(t *testing.T) {
	store := newFakeStore()
	router := newTestRouter(t, store, &fakeRunner{})

	for i := 0; i < 5; i++ {
		_, err := store.AddLocation(context.Background(), fmt.Sprintf("p%d", i), float64(i), 0)
		require.NoError(t, err)
	}

	rec, env := doJSON(t, router, http.MethodGet, "/api/v1/locations?limit=2&offset=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, env.Data.([]any), 2)
	require.NotNil(t, env.Meta.Pagination)
	assert.Equal(t, int64(5), env.Meta.Pagination.Total)
	assert.True(t, env.Meta.Pagination.HasMore)

	// limit above the configured maximum is clamped, not rejected.
	rec, env = doJSON(t, router, http.MethodGet, "/api/v1/locations?limit=9999", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 200, env.Meta.Pagination.Limit)

	rec, _ = doJSON(t, router, http.MethodGet, "/api/v1/locations?srid=9999", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = doJSON(t, router, http.MethodGet, "/api/v1/locations?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTransformLocation(t *testing.T) {
	store := newFakeStore()
	router := newTestRouter(t, store, &fakeRunner{})
	_, err := store.AddLocation(context.Background(), "Office", 2.2945, 48.8584)
	require.NoError(t, err)

	rec, env := doJSON(t, router, http.MethodGet, "/api/v1/locations/1/transform", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Office", env.Data.(map[string]any)["name"])

	rec, env = doJSON(t, router, http.MethodGet, "/api/v1/locations/42/transform", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, ErrCodeNotFound, env.Error.Code)

	rec, _ = doJSON(t, router, http.MethodGet, "/api/v1/locations/abc/transform", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegions(t *testing.T) {
	router := newTestRouter(t, newFakeStore(), &fakeRunner{})

	rec, env := doJSON(t, router, http.MethodGet, "/api/v1/regions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rows := env.Data.([]any)
	require.Len(t, rows, 1)
	assert.Equal(t, "Western Europe", rows[0].(map[string]any)["name"])

	rec, env = doJSON(t, router, http.MethodGet, "/api/v1/regions/1/geojson", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	geom := env.Data.(map[string]any)["geometry"].(map[string]any)
	assert.Equal(t, "Polygon", geom["type"])

	rec, _ = doJSON(t, router, http.MethodGet, "/api/v1/regions/99/geojson", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPlannerCTE(t *testing.T) {
	router := newTestRouter(t, newFakeStore(), &fakeRunner{})

	rec, env := doJSON(t, router, http.MethodGet, "/api/v1/planner/cte", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := env.Data.(map[string]any)
	assert.Contains(t, data, "materialized")
	assert.Contains(t, data, "not_materialized")

	rec, env = doJSON(t, router, http.MethodGet, "/api/v1/planner/cte?materialized=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 42.0, env.Data.(map[string]any)["execution_time_ms"])

	rec, env = doJSON(t, router, http.MethodGet, "/api/v1/planner/cte?materialized=false", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 17.5, env.Data.(map[string]any)["execution_time_ms"])

	rec, _ = doJSON(t, router, http.MethodGet, "/api/v1/planner/cte?materialized=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlannerWorkMem(t *testing.T) {
	router := newTestRouter(t, newFakeStore(), &fakeRunner{})

	rec, env := doJSON(t, router, http.MethodGet, "/api/v1/planner/workmem?work_mem=64kB", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := env.Data.(map[string]any)
	assert.Equal(t, "external merge", data["sort_method"])
	assert.Equal(t, "Disk", data["sort_space_type"])

	rec, _ = doJSON(t, router, http.MethodGet, "/api/v1/planner/workmem", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Injection attempts never reach the database.
	rec, env = doJSON(t, router, http.MethodGet,
		"/api/v1/planner/workmem?work_mem=64kB%27%3B+DROP+TABLE+landmarks%3B--", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, ErrCodeValidationFailed, env.Error.Code)
}

func TestPlannerIndexing(t *testing.T) {
	router := newTestRouter(t, newFakeStore(), &fakeRunner{})

	rec, env := doJSON(t, router, http.MethodGet, "/api/v1/planner/indexing", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := env.Data.(map[string]any)
	assert.Equal(t, true, data["index_used"])
	assert.Equal(t, "planner used the GIST index", data["verdict"])
}

func TestLessons(t *testing.T) {
	runner := &fakeRunner{}
	router := newTestRouter(t, newFakeStore(), runner)

	rec, env := doJSON(t, router, http.MethodGet, "/api/v1/lessons", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rows := env.Data.([]any)
	require.Len(t, rows, 2)
	assert.Equal(t, "day1", rows[0].(map[string]any)["id"])

	rec, env = doJSON(t, router, http.MethodPost, "/api/v1/lessons/day1/run", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "day1", env.Data.(map[string]any)["lesson_id"])
	assert.Equal(t, []string{"day1"}, runner.ran)

	rec, _ = doJSON(t, router, http.MethodPost, "/api/v1/lessons/day99/run", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDatabaseErrorsAreOpaque(t *testing.T) {
	store := newFakeStore()
	store.failAll = true
	router := newTestRouter(t, store, &fakeRunner{})

	paths := []string{
		"/api/v1/stats",
		"/api/v1/landmarks",
		"/api/v1/regions",
		"/api/v1/planner/cte",
		"/api/v1/planner/indexing",
	}
	for _, path := range paths {
		rec, env := doJSON(t, router, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusInternalServerError, rec.Code, path)
		assert.Equal(t, ErrCodeDatabaseError, env.Error.Code, path)
		assert.NotContains(t, rec.Body.String(), "boom", path)
	}
}

func TestStaticDashboard(t *testing.T) {
	router := newTestRouter(t, newFakeStore(), &fakeRunner{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Geolab")
}

func TestRequestIDPropagation(t *testing.T) {
	router := newTestRouter(t, newFakeStore(), &fakeRunner{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	req.Header.Set("X-Request-ID", "test-req-42")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "test-req-42", rec.Header().Get("X-Request-ID"))
	var env APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "test-req-42", env.Meta.RequestID)
}

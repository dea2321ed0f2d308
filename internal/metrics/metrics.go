// Geolab - PostGIS Teaching Lab: provisioning, lessons, and spatial dashboard
// Copyright 2026 sysdr
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sysdr/geolab

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for the lab:
// - PostgreSQL/PostGIS query performance
// - API endpoint latency and throughput
// - Lesson run outcomes
// - Container provisioning

var (
	// Database Metrics
	PGQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pg_query_duration_seconds",
			Help:    "Duration of PostgreSQL queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	PGQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pg_query_errors_total",
			Help: "Total number of PostgreSQL query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	PGPoolAcquired = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pg_pool_acquired_connections",
			Help: "Current number of acquired connections in the pgx pool",
		},
	)

	PostGISOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "postgis_operations_total",
			Help: "Total number of spatial operations (ST_* functions)",
		},
		[]string{"operation_type"}, // "distance", "transform", "dwithin", "intersects", "geojson"
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Lesson Metrics
	LessonRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lesson_runs_total",
			Help: "Total number of lesson runs",
		},
		[]string{"lesson", "result"}, // result: "success", "failure"
	)

	LessonRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lesson_run_duration_seconds",
			Help:    "Duration of complete lesson runs in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120},
		},
		[]string{"lesson"},
	)

	LessonStepsExecuted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lesson_steps_executed_total",
			Help: "Total number of lesson steps executed",
		},
	)

	// Provisioning Metrics
	ProvisionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "provision_duration_seconds",
			Help:    "Duration of PostGIS container provisioning in seconds",
			Buckets: []float64{1, 5, 10, 20, 30, 60, 90, 120},
		},
	)

	ProvisionErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "provision_errors_total",
			Help: "Total number of container provisioning failures",
		},
	)

	SeedRowsInserted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seed_rows_inserted_total",
			Help: "Total number of rows inserted during seeding",
		},
		[]string{"table"},
	)
)

// RecordPGQuery records a database query metric
func RecordPGQuery(operation, table string, duration time.Duration, err error) {
	PGQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		// Truncate long error messages to keep cardinality sane
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		PGQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordSpatialOperation records use of a PostGIS spatial function
func RecordSpatialOperation(operationType string) {
	PostGISOperations.WithLabelValues(operationType).Inc()
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordLessonRun records a complete lesson run
func RecordLessonRun(lesson string, duration time.Duration, err error) {
	LessonRunDuration.WithLabelValues(lesson).Observe(duration.Seconds())
	result := "success"
	if err != nil {
		result = "failure"
	}
	LessonRunsTotal.WithLabelValues(lesson, result).Inc()
}

// RecordLessonStep records execution of a single lesson step
func RecordLessonStep() {
	LessonStepsExecuted.Inc()
}

// RecordProvision records a provisioning attempt
func RecordProvision(duration time.Duration, err error) {
	ProvisionDuration.Observe(duration.Seconds())
	if err != nil {
		ProvisionErrors.Inc()
	}
}

// RecordSeedRows records rows inserted during a seed pass
func RecordSeedRows(table string, count int) {
	SeedRowsInserted.WithLabelValues(table).Add(float64(count))
}

// UpdatePoolAcquired updates the pgx pool acquired-connections gauge
func UpdatePoolAcquired(n int32) {
	PGPoolAcquired.Set(float64(n))
}

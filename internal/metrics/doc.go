// Geolab - PostGIS Teaching Lab: provisioning, lessons, and spatial dashboard
// Copyright 2026 sysdr
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sysdr/geolab

/*
Package metrics provides Prometheus metrics collection and export for observability.

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:3857/metrics

Database metrics:
  - pg_query_duration_seconds: Query execution time (histogram)
    Labels: operation, table
  - pg_query_errors_total: Failed queries (counter)
    Labels: operation, table, error_type
  - pg_pool_acquired_connections: Acquired pgx pool connections (gauge)
  - postgis_operations_total: Spatial function usage (counter)
    Labels: operation_type (distance, transform, dwithin, intersects, geojson)

API metrics:
  - api_requests_total: Total API requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
    Labels: method, endpoint
  - api_active_requests: In-flight requests (gauge)

Lesson metrics:
  - lesson_runs_total: Lesson run outcomes (counter)
    Labels: lesson, result
  - lesson_run_duration_seconds: Lesson run duration (histogram)
    Labels: lesson
  - lesson_steps_executed_total: Steps executed (counter)

Provisioning metrics:
  - provision_duration_seconds: Container startup duration (histogram)
  - provision_errors_total: Provisioning failures (counter)
  - seed_rows_inserted_total: Rows inserted during seeding (counter)
    Labels: table

All recording functions are safe for concurrent use; the Prometheus client
handles synchronization internally. Endpoint labels use chi route patterns
rather than raw paths to keep cardinality bounded.
*/
package metrics

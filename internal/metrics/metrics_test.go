// Geolab - PostGIS Teaching Lab: provisioning, lessons, and spatial dashboard
// Copyright 2026 sysdr
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sysdr/geolab

package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestRecordPGQuery tests database query metric recording
func TestRecordPGQuery(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		table     string
		duration  time.Duration
		err       error
	}{
		{
			name:      "successful SELECT query",
			operation: "SELECT",
			table:     "landmarks",
			duration:  10 * time.Millisecond,
			err:       nil,
		},
		{
			name:      "successful INSERT query",
			operation: "INSERT",
			table:     "locations_4326",
			duration:  5 * time.Millisecond,
			err:       nil,
		},
		{
			name:      "failed query with short error",
			operation: "SELECT",
			table:     "regions",
			duration:  100 * time.Millisecond,
			err:       errors.New("connection refused"),
		},
		{
			name:      "failed query with long error truncated to 50 chars",
			operation: "SELECT",
			table:     "planner_points",
			duration:  50 * time.Millisecond,
			err:       errors.New("this is a very long error message that exceeds fifty characters and should be truncated"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.CollectAndCount(PGQueryDuration)
			RecordPGQuery(tt.operation, tt.table, tt.duration, tt.err)
			after := testutil.CollectAndCount(PGQueryDuration)
			if after < before {
				t.Errorf("histogram series count decreased: %d -> %d", before, after)
			}
		})
	}
}

func TestRecordPGQuery_ErrorTruncation(t *testing.T) {
	longErr := errors.New("0123456789012345678901234567890123456789012345678901234567890123456789")
	RecordPGQuery("UPDATE", "locations_3857", time.Millisecond, longErr)

	got := testutil.ToFloat64(PGQueryErrors.WithLabelValues(
		"UPDATE", "locations_3857", longErr.Error()[:50]))
	if got < 1 {
		t.Errorf("expected truncated error label to be incremented, got %f", got)
	}
}

func TestRecordSpatialOperation(t *testing.T) {
	before := testutil.ToFloat64(PostGISOperations.WithLabelValues("distance"))
	RecordSpatialOperation("distance")
	after := testutil.ToFloat64(PostGISOperations.WithLabelValues("distance"))
	if after != before+1 {
		t.Errorf("expected counter to increase by 1, got %f -> %f", before, after)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/stats", "200"))
	RecordAPIRequest("GET", "/api/v1/stats", "200", 25*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/stats", "200"))
	if after != before+1 {
		t.Errorf("expected request counter to increase by 1, got %f -> %f", before, after)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	base := testutil.ToFloat64(APIActiveRequests)

	TrackActiveRequest(true)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != base+2 {
		t.Errorf("expected gauge %f, got %f", base+2, got)
	}

	TrackActiveRequest(false)
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != base {
		t.Errorf("expected gauge back to %f, got %f", base, got)
	}
}

func TestTrackActiveRequest_Concurrent(t *testing.T) {
	base := testutil.ToFloat64(APIActiveRequests)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			TrackActiveRequest(true)
			TrackActiveRequest(false)
		}()
	}
	wg.Wait()

	if got := testutil.ToFloat64(APIActiveRequests); got != base {
		t.Errorf("expected gauge %f after balanced inc/dec, got %f", base, got)
	}
}

func TestRecordLessonRun(t *testing.T) {
	before := testutil.ToFloat64(LessonRunsTotal.WithLabelValues("day5", "success"))
	RecordLessonRun("day5", 2*time.Second, nil)
	after := testutil.ToFloat64(LessonRunsTotal.WithLabelValues("day5", "success"))
	if after != before+1 {
		t.Errorf("expected success counter +1, got %f -> %f", before, after)
	}

	beforeFail := testutil.ToFloat64(LessonRunsTotal.WithLabelValues("day6", "failure"))
	RecordLessonRun("day6", time.Second, errors.New("sort spilled unexpectedly"))
	afterFail := testutil.ToFloat64(LessonRunsTotal.WithLabelValues("day6", "failure"))
	if afterFail != beforeFail+1 {
		t.Errorf("expected failure counter +1, got %f -> %f", beforeFail, afterFail)
	}
}

func TestRecordSeedRows(t *testing.T) {
	before := testutil.ToFloat64(SeedRowsInserted.WithLabelValues("planner_points"))
	RecordSeedRows("planner_points", 50000)
	after := testutil.ToFloat64(SeedRowsInserted.WithLabelValues("planner_points"))
	if after != before+50000 {
		t.Errorf("expected counter +50000, got %f -> %f", before, after)
	}
}

func TestRecordProvision(t *testing.T) {
	errsBefore := testutil.ToFloat64(ProvisionErrors)
	RecordProvision(12*time.Second, nil)
	if got := testutil.ToFloat64(ProvisionErrors); got != errsBefore {
		t.Errorf("success should not bump error counter: %f -> %f", errsBefore, got)
	}

	RecordProvision(3*time.Second, errors.New("docker not available"))
	if got := testutil.ToFloat64(ProvisionErrors); got != errsBefore+1 {
		t.Errorf("expected error counter +1, got %f", got)
	}
}

func TestUpdatePoolAcquired(t *testing.T) {
	UpdatePoolAcquired(7)
	if got := testutil.ToFloat64(PGPoolAcquired); got != 7 {
		t.Errorf("expected gauge 7, got %f", got)
	}
	UpdatePoolAcquired(0)
	if got := testutil.ToFloat64(PGPoolAcquired); got != 0 {
		t.Errorf("expected gauge 0, got %f", got)
	}
}

// Geolab - PostGIS Teaching Lab: provisioning, lessons, and spatial dashboard
// Copyright 2026 sysdr
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sysdr/geolab

package models

import (
	"math"
	"testing"
)

func TestDistanceComparison_GeographyKm(t *testing.T) {
	d := DistanceComparison{GeographyMeters: 5837413.0}
	if got := d.GeographyKm(); math.Abs(got-5837.413) > 1e-9 {
		t.Errorf("GeographyKm() = %f, want 5837.413", got)
	}
}

func TestDistanceComparison_MercatorErrorPercent(t *testing.T) {
	tests := []struct {
		name      string
		geography float64
		mercator  float64
		want      float64
	}{
		// Paris to New York: Mercator overstates mid-latitude distances
		// by roughly a third.
		{"mid latitude inflation", 5837413, 7800000, 33.62},
		{"exact match", 1000, 1000, 0},
		{"zero geography guards divide", 0, 500, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := DistanceComparison{
				GeographyMeters: tt.geography,
				MercatorMeters:  tt.mercator,
			}
			if got := d.MercatorErrorPercent(); math.Abs(got-tt.want) > 0.01 {
				t.Errorf("MercatorErrorPercent() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestWorkMemRun_Spilled(t *testing.T) {
	tests := []struct {
		name string
		run  WorkMemRun
		want bool
	}{
		{"quicksort in memory", WorkMemRun{SortMethod: "quicksort", SortSpaceType: "Memory"}, false},
		{"external merge", WorkMemRun{SortMethod: "external merge", SortSpaceType: "Disk"}, true},
		{"disk space type alone", WorkMemRun{SortMethod: "top-N heapsort", SortSpaceType: "Disk"}, true},
		{"empty fields", WorkMemRun{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.run.Spilled(); got != tt.want {
				t.Errorf("Spilled() = %v, want %v", got, tt.want)
			}
		})
	}
}

// Geolab - PostGIS Teaching Lab: provisioning, lessons, and spatial dashboard
// Copyright 2026 sysdr
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sysdr/geolab

package database

import (
	"strings"
	"testing"

	"github.com/sysdr/geolab/internal/models"
)

// quicksortPlan is EXPLAIN (ANALYZE, FORMAT JSON) output for a sort that
// fit in work_mem, trimmed to the fields the parser reads.
const quicksortPlan = `[
  {
    "Plan": {
      "Node Type": "Sort",
      "Sort Method": "quicksort",
      "Sort Space Used": 3214,
      "Sort Space Type": "Memory",
      "Plans": [
        {
          "Node Type": "Seq Scan",
          "Relation Name": "planner_points"
        }
      ]
    },
    "Planning Time": 0.213,
    "Execution Time": 184.77
  }
]`

// spillPlan is the same query under a 64kB work_mem: the sort node reports
// an external merge with disk space usage.
const spillPlan = `[
  {
    "Plan": {
      "Node Type": "Gather Merge",
      "Plans": [
        {
          "Node Type": "Sort",
          "Sort Method": "external merge",
          "Sort Space Used": 18992,
          "Sort Space Type": "Disk",
          "Plans": [
            {
              "Node Type": "Seq Scan",
              "Relation Name": "planner_points"
            }
          ]
        }
      ]
    },
    "Planning Time": 0.198,
    "Execution Time": 947.02
  }
]`

const indexScanPlan = `[
  {
    "Plan": {
      "Node Type": "Aggregate",
      "Plans": [
        {
          "Node Type": "Bitmap Heap Scan",
          "Relation Name": "planner_points",
          "Plans": [
            {
              "Node Type": "Bitmap Index Scan",
              "Index Name": "idx_planner_points_geom"
            }
          ]
        }
      ]
    },
    "Planning Time": 0.42,
    "Execution Time": 3.11
  }
]`

const seqScanPlan = `[
  {
    "Plan": {
      "Node Type": "Aggregate",
      "Plans": [
        {
          "Node Type": "Seq Scan",
          "Relation Name": "planner_points"
        }
      ]
    },
    "Planning Time": 0.11,
    "Execution Time": 201.5
  }
]`

func TestParsePlan(t *testing.T) {
	run, err := parsePlan("SELECT 1", []byte(quicksortPlan))
	if err != nil {
		t.Fatalf("parsePlan failed: %v", err)
	}

	if run.Query != "SELECT 1" {
		t.Errorf("unexpected query: %q", run.Query)
	}
	if run.RootNodeType != "Sort" {
		t.Errorf("RootNodeType = %q, want Sort", run.RootNodeType)
	}
	if run.PlanningTimeMs != 0.213 {
		t.Errorf("PlanningTimeMs = %f, want 0.213", run.PlanningTimeMs)
	}
	if run.ExecutionTimeMs != 184.77 {
		t.Errorf("ExecutionTimeMs = %f, want 184.77", run.ExecutionTimeMs)
	}
	if string(run.Plan) != quicksortPlan {
		t.Error("raw plan JSON was not preserved verbatim")
	}
}

func TestParsePlan_Invalid(t *testing.T) {
	if _, err := parsePlan("SELECT 1", []byte("not json")); err == nil {
		t.Error("expected error for malformed JSON")
	}
	if _, err := parsePlan("SELECT 1", []byte("[]")); err == nil {
		t.Error("expected error for empty plan array")
	}
}

func TestFindSortNode(t *testing.T) {
	var envelopes []explainEnvelope
	if err := unmarshalPlan([]byte(spillPlan), &envelopes); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	sort, ok := findSortNode(envelopes[0].Plan)
	if !ok {
		t.Fatal("expected to find a sort node under Gather Merge")
	}
	if sort.SortMethod != "external merge" {
		t.Errorf("SortMethod = %q, want external merge", sort.SortMethod)
	}
	if sort.SortSpaceUsed != 18992 {
		t.Errorf("SortSpaceUsed = %d, want 18992", sort.SortSpaceUsed)
	}
	if sort.SortSpaceType != "Disk" {
		t.Errorf("SortSpaceType = %q, want Disk", sort.SortSpaceType)
	}
}

func TestFindSortNode_Absent(t *testing.T) {
	var envelopes []explainEnvelope
	if err := unmarshalPlan([]byte(seqScanPlan), &envelopes); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if _, ok := findSortNode(envelopes[0].Plan); ok {
		t.Error("found a sort node in a plan without one")
	}
}

func TestSortStatsFromPlan(t *testing.T) {
	sort, ok, err := sortStatsFromPlan([]byte(spillPlan))
	if err != nil {
		t.Fatalf("sortStatsFromPlan failed: %v", err)
	}
	if !ok {
		t.Fatal("expected sort stats in spill plan")
	}
	if sort.SortMethod != "external merge" || sort.SortSpaceType != "Disk" {
		t.Errorf("unexpected sort stats: %+v", sort)
	}

	if _, ok, err := sortStatsFromPlan([]byte(seqScanPlan)); err != nil || ok {
		t.Errorf("plan without a sort: ok=%v err=%v, want false/nil", ok, err)
	}
}

func TestSortStatsFromPlan_Errors(t *testing.T) {
	if _, _, err := sortStatsFromPlan([]byte("not json")); err == nil {
		t.Error("expected error for malformed JSON")
	}

	// An empty plan array is its own failure, not a wrapped nil.
	_, _, err := sortStatsFromPlan([]byte("[]"))
	if err == nil {
		t.Fatal("expected error for empty plan array")
	}
	if got := err.Error(); strings.Contains(got, "%!w") || strings.Contains(got, "<nil>") {
		t.Errorf("error message carries a nil wrap: %q", got)
	}
}

func TestContainsNodeType(t *testing.T) {
	var envelopes []explainEnvelope
	if err := unmarshalPlan([]byte(indexScanPlan), &envelopes); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	root := envelopes[0].Plan

	if !containsNodeType(root, "Bitmap Index Scan") {
		t.Error("expected Bitmap Index Scan in tree")
	}
	if !containsNodeType(root, "Aggregate") {
		t.Error("expected Aggregate at root")
	}
	if containsNodeType(root, "Hash Join") {
		t.Error("unexpected Hash Join match")
	}
}

func TestPlanUsesIndexScan(t *testing.T) {
	indexed, err := parsePlan("q", []byte(indexScanPlan))
	if err != nil {
		t.Fatal(err)
	}
	if !planUsesIndexScan(indexed) {
		t.Error("expected index scan detection for bitmap plan")
	}

	seq, err := parsePlan("q", []byte(seqScanPlan))
	if err != nil {
		t.Fatal(err)
	}
	if planUsesIndexScan(seq) {
		t.Error("seq scan plan misdetected as indexed")
	}

	if planUsesIndexScan(models.PlanRun{Plan: []byte("garbage")}) {
		t.Error("malformed plan should report no index usage")
	}
}

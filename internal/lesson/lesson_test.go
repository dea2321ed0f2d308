// Geolab - PostGIS Teaching Lab: provisioning, lessons, and spatial dashboard
// Copyright 2026 sysdr
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sysdr/geolab

package lesson

import (
	"context"
	"errors"
	"testing"

	"github.com/sysdr/geolab/internal/database"
)

func TestDefaultRegistry(t *testing.T) {
	reg := DefaultRegistry()

	all := reg.All()
	if len(all) != 6 {
		t.Fatalf("expected 6 lessons, got %d", len(all))
	}

	wantIDs := []string{"day1", "day2", "day3", "day4", "day5", "day6"}
	for i, want := range wantIDs {
		if all[i].ID != want {
			t.Errorf("lesson %d has id %q, want %q", i, all[i].ID, want)
		}
		if all[i].Title == "" || all[i].Summary == "" {
			t.Errorf("lesson %s missing title or summary", all[i].ID)
		}
		if len(all[i].Steps) == 0 {
			t.Errorf("lesson %s has no steps", all[i].ID)
		}
		for _, s := range all[i].Steps {
			if s.Name == "" || s.Run == nil {
				t.Errorf("lesson %s has an unnamed or non-runnable step", all[i].ID)
			}
		}
	}
}

func TestRegistry_Get(t *testing.T) {
	reg := DefaultRegistry()

	if _, ok := reg.Get("day5"); !ok {
		t.Error("expected day5 to be registered")
	}
	if _, ok := reg.Get("day7"); ok {
		t.Error("day7 should not exist")
	}
}

func TestNewRegistry_RejectsDuplicates(t *testing.T) {
	l := Lesson{ID: "dup", Title: "one"}
	if _, err := NewRegistry(l, l); err == nil {
		t.Error("expected duplicate id error")
	}
	if _, err := NewRegistry(Lesson{Title: "anonymous"}); err == nil {
		t.Error("expected missing id error")
	}
}

// fakeLesson builds a registry with synthetic steps that never touch the
// database, so the runner logic is testable without Postgres.
func fakeLesson(steps ...Step) *Registry {
	reg, err := NewRegistry(Lesson{ID: "fake", Title: "Fake", Summary: "s", Steps: steps})
	if err != nil {
		panic(err)
	}
	return reg
}

func TestRunner_Run(t *testing.T) {
	reg := fakeLesson(
		Step{
			Name:        "first",
			Description: "from step definition",
			Run: func(ctx context.Context, db *database.DB) (*StepResult, error) {
				return &StepResult{Rows: 42}, nil
			},
		},
		Step{
			Name: "second",
			Run: func(ctx context.Context, db *database.DB) (*StepResult, error) {
				return &StepResult{Description: "from result"}, nil
			},
		},
	)
	runner := NewRunner(nil, reg)

	res, err := runner.Run(context.Background(), "fake")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.LessonID != "fake" || len(res.Steps) != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Steps[0].Name != "first" {
		t.Errorf("step name not propagated: %q", res.Steps[0].Name)
	}
	if res.Steps[0].Description != "from step definition" {
		t.Errorf("step description not defaulted: %q", res.Steps[0].Description)
	}
	if res.Steps[1].Description != "from result" {
		t.Errorf("result description overwritten: %q", res.Steps[1].Description)
	}
	if res.CompletedAt.IsZero() {
		t.Error("CompletedAt not set")
	}
}

func TestRunner_Run_UnknownLesson(t *testing.T) {
	runner := NewRunner(nil, DefaultRegistry())
	_, err := runner.Run(context.Background(), "day99")
	if !errors.Is(err, database.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRunner_Run_StepFailureAborts(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	reg := fakeLesson(
		Step{
			Name: "fails",
			Run: func(ctx context.Context, db *database.DB) (*StepResult, error) {
				calls++
				return nil, boom
			},
		},
		Step{
			Name: "never_runs",
			Run: func(ctx context.Context, db *database.DB) (*StepResult, error) {
				calls++
				return &StepResult{}, nil
			},
		},
	)
	runner := NewRunner(nil, reg)

	_, err := runner.Run(context.Background(), "fake")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected execution to stop at the failing step, got %d calls", calls)
	}
}

func TestRunner_Run_CanceledContext(t *testing.T) {
	reg := fakeLesson(Step{
		Name: "unreached",
		Run: func(ctx context.Context, db *database.DB) (*StepResult, error) {
			return &StepResult{}, nil
		},
	})
	runner := NewRunner(nil, reg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := runner.Run(ctx, "fake"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRunAll_StopsOnFailure(t *testing.T) {
	ok := Lesson{ID: "a", Title: "A", Steps: []Step{{
		Name: "s",
		Run: func(ctx context.Context, db *database.DB) (*StepResult, error) {
			return &StepResult{}, nil
		},
	}}}
	bad := Lesson{ID: "b", Title: "B", Steps: []Step{{
		Name: "s",
		Run: func(ctx context.Context, db *database.DB) (*StepResult, error) {
			return nil, errors.New("broken")
		},
	}}}
	unreached := Lesson{ID: "c", Title: "C", Steps: []Step{{
		Name: "s",
		Run: func(ctx context.Context, db *database.DB) (*StepResult, error) {
			t.Error("lesson c should not run")
			return &StepResult{}, nil
		},
	}}}

	reg, err := NewRegistry(ok, bad, unreached)
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(nil, reg)

	results, err := runner.RunAll(context.Background())
	if err == nil {
		t.Fatal("expected failure from lesson b")
	}
	if len(results) != 1 || results[0].LessonID != "a" {
		t.Errorf("expected one completed lesson before the failure, got %+v", results)
	}
}

// Geolab - PostGIS Teaching Lab: provisioning, lessons, and spatial dashboard
// Copyright 2026 sysdr
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sysdr/geolab

package lesson

import (
	"context"
	"fmt"
	"time"

	"github.com/sysdr/geolab/internal/database"
	"github.com/sysdr/geolab/internal/logging"
	"github.com/sysdr/geolab/internal/metrics"
)

// Runner executes lessons against a database
type Runner struct {
	db       *database.DB
	registry *Registry
}

// NewRunner creates a runner over the given database and registry
func NewRunner(db *database.DB, registry *Registry) *Runner {
	return &Runner{db: db, registry: registry}
}

// Registry exposes the runner's lesson registry
func (r *Runner) Registry() *Registry {
	return r.registry
}

// Run executes one lesson by id. Steps run in order; the first failing
// step aborts the lesson with its error wrapped.
func (r *Runner) Run(ctx context.Context, id string) (_ *Result, err error) {
	lesson, ok := r.registry.Get(id)
	if !ok {
		return nil, fmt.Errorf("unknown lesson %q: %w", id, database.ErrNotFound)
	}

	start := time.Now()
	defer func() { metrics.RecordLessonRun(id, time.Since(start), err) }()

	logging.Info().Str("lesson", id).Str("title", lesson.Title).Msg("Lesson started")

	result := &Result{LessonID: lesson.ID, Title: lesson.Title}
	for _, step := range lesson.Steps {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("lesson %s interrupted: %w", id, ctx.Err())
		}

		stepStart := time.Now()
		sr, stepErr := step.Run(ctx, r.db)
		metrics.RecordLessonStep()
		if stepErr != nil {
			err = fmt.Errorf("lesson %s step %q failed: %w", id, step.Name, stepErr)
			logging.Error().Err(stepErr).Str("lesson", id).Str("step", step.Name).Msg("Lesson step failed")
			return nil, err
		}

		sr.Name = step.Name
		if sr.Description == "" {
			sr.Description = step.Description
		}
		sr.Duration = time.Since(stepStart)
		result.Steps = append(result.Steps, *sr)

		logging.Debug().
			Str("lesson", id).
			Str("step", step.Name).
			Dur("duration", sr.Duration).
			Msg("Lesson step completed")
	}

	result.Duration = time.Since(start)
	result.CompletedAt = time.Now().UTC()
	logging.Info().
		Str("lesson", id).
		Int("steps", len(result.Steps)).
		Dur("duration", result.Duration).
		Msg("Lesson completed")
	return result, nil
}

// RunAll executes every registered lesson in id order, stopping at the
// first failure.
func (r *Runner) RunAll(ctx context.Context) ([]*Result, error) {
	var results []*Result
	for _, l := range r.registry.All() {
		res, err := r.Run(ctx, l.ID)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

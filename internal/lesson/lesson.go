// Geolab - PostGIS Teaching Lab: provisioning, lessons, and spatial dashboard
// Copyright 2026 sysdr
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sysdr/geolab

// Package lesson defines the six tutorial days as runnable values. Each
// lesson is a list of steps; a step executes one demonstration against the
// database and returns what it ran, what came back, and what the planner
// had to say about it.
package lesson

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sysdr/geolab/internal/database"
)

// Step is one demonstration within a lesson
type Step struct {
	Name        string
	Description string
	Run         func(ctx context.Context, db *database.DB) (*StepResult, error)
}

// StepResult is the outcome of one executed step
type StepResult struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	SQL         string        `json:"sql,omitempty"`
	Rows        any           `json:"rows,omitempty"`
	PlannerNote string        `json:"planner_note,omitempty"`
	Duration    time.Duration `json:"duration_ns"`
}

// Lesson is one tutorial day
type Lesson struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Steps   []Step `json:"-"`
}

// Result is a completed lesson run
type Result struct {
	LessonID    string        `json:"lesson_id"`
	Title       string        `json:"title"`
	Steps       []StepResult  `json:"steps"`
	Duration    time.Duration `json:"duration_ns"`
	CompletedAt time.Time     `json:"completed_at"`
}

// Registry holds the available lessons keyed by id
type Registry struct {
	lessons map[string]Lesson
}

// NewRegistry builds a registry from the given lessons
func NewRegistry(lessons ...Lesson) (*Registry, error) {
	r := &Registry{lessons: make(map[string]Lesson, len(lessons))}
	for _, l := range lessons {
		if l.ID == "" {
			return nil, fmt.Errorf("lesson %q has no id", l.Title)
		}
		if _, exists := r.lessons[l.ID]; exists {
			return nil, fmt.Errorf("duplicate lesson id %q", l.ID)
		}
		r.lessons[l.ID] = l
	}
	return r, nil
}

// DefaultRegistry returns the six tutorial days
func DefaultRegistry() *Registry {
	r, err := NewRegistry(day1(), day2(), day3(), day4(), day5(), day6())
	if err != nil {
		// the built-in lessons are statically correct
		panic(err)
	}
	return r
}

// Get returns the lesson with the given id
func (r *Registry) Get(id string) (Lesson, bool) {
	l, ok := r.lessons[id]
	return l, ok
}

// All returns every lesson ordered by id
func (r *Registry) All() []Lesson {
	out := make([]Lesson, 0, len(r.lessons))
	for _, l := range r.lessons {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

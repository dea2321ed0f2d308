// Geolab - PostGIS Teaching Lab: provisioning, lessons, and spatial dashboard
// Copyright 2026 sysdr
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sysdr/geolab

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sysdr/geolab/internal/lesson"
)

var runCmd = &cobra.Command{
	Use:   "run [lesson...]",
	Short: "Run one or more lessons (day1..day6), or all of them",
	Long: `Runs the named lessons against the lab database and prints each
step's SQL, rows, and planner notes as JSON. With no arguments every
lesson runs in day order.

  day1  geometry vs geography distances
  day2  GIST indexing before and after
  day3  spatial predicates over regions
  day4  MATERIALIZED vs NOT MATERIALIZED CTEs
  day5  SRID 4326 vs 3857 twin tables
  day6  work_mem and sort spills`,
	ValidArgs: []string{"day1", "day2", "day3", "day4", "day5", "day6", "all"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		db, err := connectLab(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		runner := lesson.NewRunner(db, lesson.DefaultRegistry())

		if len(args) == 1 && args[0] == "all" {
			args = nil
		}
		if len(args) == 0 {
			results, err := runner.RunAll(ctx)
			if printErr := printJSON(results); printErr != nil {
				return printErr
			}
			return err
		}

		results := make([]*lesson.Result, 0, len(args))
		for _, id := range args {
			result, err := runner.Run(ctx, id)
			if err != nil {
				return fmt.Errorf("lesson %s: %w", id, err)
			}
			results = append(results, result)
		}
		return printJSON(results)
	},
}

var lessonsCmd = &cobra.Command{
	Use:   "lessons",
	Short: "List the available lessons",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printJSON(lesson.DefaultRegistry().All())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(lessonsCmd)
}

// Geolab - PostGIS Teaching Lab: provisioning, lessons, and spatial dashboard
// Copyright 2026 sysdr
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sysdr/geolab

// Command geolab is the lab CLI: it provisions a PostGIS container,
// loads the sample data, runs the day1-day6 lessons, and serves the
// dashboard.
package main

import (
	"fmt"
	"io"
	"os"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// run executes the CLI. Cobra's own error printing is silenced, so this
// is the single place a failure reaches the user.
func run(args []string, errOut io.Writer) int {
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(errOut, "Error:", err)
		return 1
	}
	return 0
}

// Geolab - PostGIS Teaching Lab: provisioning, lessons, and spatial dashboard
// Copyright 2026 sysdr
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sysdr/geolab

package main

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunReportsCommandErrors(t *testing.T) {
	rootCmd.SetOut(io.Discard)

	var errOut bytes.Buffer
	code := run([]string{"transform", "not-a-number"}, &errOut)

	require.Equal(t, 1, code)
	assert.Contains(t, errOut.String(), "must be a positive integer")
}

func TestRunSucceedsQuietly(t *testing.T) {
	rootCmd.SetOut(io.Discard)

	var errOut bytes.Buffer
	code := run([]string{"--help"}, &errOut)

	require.Equal(t, 0, code)
	assert.Empty(t, errOut.String())
}

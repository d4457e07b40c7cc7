// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs(t *testing.T) {
	inputDir, outputPath, err := parseArgs([]string{"problems/small", "out/x.txt"})
	require.NoError(t, err)
	assert.Equal(t, "problems/small", inputDir)
	assert.Equal(t, "out/x.txt", outputPath)

	// Missing or extra positional arguments are usage errors: no
	// computation may start.
	for _, args := range [][]string{
		nil,
		{},
		{"problems/small"},
		{"problems/small", "out/x.txt", "extra"},
	} {
		_, _, err := parseArgs(args)
		assert.Error(t, err, "args=%q", args)
	}
}

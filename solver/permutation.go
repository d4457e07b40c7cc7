// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package solver

import "math/rand"

// newPermutation returns a uniformly random visitation order for [0, n).
//
// One permutation is drawn per solve and reused by every replica across all
// epochs; Config.PermutationPerEpoch opts into redrawing each epoch.
func newPermutation(rng *rand.Rand, n int) []int {
	return rng.Perm(n)
}

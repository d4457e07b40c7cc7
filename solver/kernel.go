// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package solver

import (
	"math"

	"github.com/gomlx/hogwild/bqp"
	"gonum.org/v1/gonum/floats"
)

// minStep floors the per-coordinate step divisor, so a near-zero diagonal
// entry cannot blow up the update.
const minStep = 1e-6

// coordinateStep applies one projected-gradient update to coordinate i of x.
//
// x is shared with concurrently running steps on other coordinates; the dot
// product below reads the live, possibly in-flux iterate, which is the
// Hogwild staleness the algorithm tolerates. The current value of x[i] is
// read exactly once and never re-read, and the single write at the end is the
// step's only side effect. The written value always lands inside
// [lb[i], ub[i]].
func coordinateStep(prob *bqp.Problem, x []float64, i int) {
	old := x[i]
	grad := floats.Dot(prob.Row(i), x) + prob.P(i)
	step := math.Max(prob.Diag(i), minStep)
	cand := math.Max(old-grad/step, prob.Lower(i))
	x[i] = math.Min(cand, prob.Upper(i))
}

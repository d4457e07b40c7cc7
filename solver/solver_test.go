// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package solver

import (
	"math"
	"math/rand"
	"testing"

	"github.com/gomlx/hogwild/bqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustProblem(t *testing.T, n int, q, p, lb, ub, diag []float64) *bqp.Problem {
	prob, err := bqp.New(n, q, p, lb, ub, diag)
	require.NoError(t, err)
	return prob
}

// identityProblem builds Q=I with the given p and box. With an identity
// matrix each coordinate update lands exactly on clamp(-p[i]) regardless of
// staleness in other coordinates, which makes parallel runs predictable.
func identityProblem(t *testing.T, p, lb, ub []float64) *bqp.Problem {
	n := len(p)
	q := make([]float64, n*n)
	diag := make([]float64, n)
	for i := 0; i < n; i++ {
		q[i*n+i] = 1
		diag[i] = 1
	}
	return mustProblem(t, n, q, p, lb, ub, diag)
}

func TestCoordinateStep(t *testing.T) {
	prob := mustProblem(t, 2,
		[]float64{2, 1, 1, 3},
		[]float64{1, -1},
		[]float64{-10, -10},
		[]float64{10, 10},
		[]float64{2, 3})

	// old=1, grad = (2·1 + 1·1) + 1 = 4, step=2, new = 1 - 4/2 = -1.
	x := []float64{1, 1}
	coordinateStep(prob, x, 0)
	assert.Equal(t, []float64{-1, 1}, x)

	// grad = (1·(-1) + 3·1) - 1 = 1, step=3, new = 1 - 1/3.
	coordinateStep(prob, x, 1)
	assert.InDelta(t, 1-1.0/3, x[1], 1e-15)
}

func TestCoordinateStepProjection(t *testing.T) {
	// A zero diagonal hits the step floor and the huge step is clamped to
	// the lower bound.
	prob := mustProblem(t, 1,
		[]float64{0},
		[]float64{1},
		[]float64{-2},
		[]float64{2},
		[]float64{0})
	x := []float64{0}
	coordinateStep(prob, x, 0)
	assert.Equal(t, -2.0, x[0])

	// Negative gradient clamps to the upper bound.
	prob = mustProblem(t, 1,
		[]float64{0},
		[]float64{-1},
		[]float64{-2},
		[]float64{2},
		[]float64{0})
	x = []float64{0}
	coordinateStep(prob, x, 0)
	assert.Equal(t, 2.0, x[0])
}

func TestPermutationIsBijection(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, n := range []int{1, 2, 3, 17, 1000} {
		perm := newPermutation(rng, n)
		require.Len(t, perm, n)
		seen := make([]bool, n)
		for _, i := range perm {
			require.GreaterOrEqual(t, i, 0)
			require.Less(t, i, n)
			require.False(t, seen[i], "n=%d: index %d repeated", n, i)
			seen[i] = true
		}
	}
}

func TestConfigDefaults(t *testing.T) {
	prob := identityProblem(t, []float64{1}, []float64{0}, []float64{1})
	s, err := New(prob, Config{})
	require.NoError(t, err)
	cfg := s.Config()
	assert.Equal(t, DefaultEpochs, cfg.Epochs)
	assert.Equal(t, DefaultSyncInterval, cfg.SyncInterval)
	assert.GreaterOrEqual(t, cfg.Replicas, 1)
	assert.GreaterOrEqual(t, cfg.Workers, 1)
	assert.NotZero(t, cfg.Seed)

	_, err = New(nil, Config{})
	assert.Error(t, err)
	_, err = New(prob, Config{Epochs: -1})
	assert.Error(t, err)
	_, err = New(prob, Config{Replicas: -2})
	assert.Error(t, err)
}

func TestSolveWrongInitialLength(t *testing.T) {
	prob := identityProblem(t, []float64{1, 1}, []float64{0, 0}, []float64{1, 1})
	s, err := New(prob, Config{})
	require.NoError(t, err)
	_, err = s.Solve([]float64{0})
	assert.Error(t, err)
}

func TestConvergenceToBoxBoundary(t *testing.T) {
	// Q=I, p=[1,1]: the unconstrained minimizer [-1,-1] lies outside the
	// box [0,1]², so the solver must land on the corner [0,0].
	prob := identityProblem(t,
		[]float64{1, 1},
		[]float64{0, 0},
		[]float64{1, 1})
	s, err := New(prob, Config{Replicas: 1, Workers: 1, Seed: 7})
	require.NoError(t, err)
	result, err := s.Solve([]float64{1, 1})
	require.NoError(t, err)

	assert.InDelta(t, 0, result.X[0], 1e-3)
	assert.InDelta(t, 0, result.X[1], 1e-3)
	assert.InDelta(t, math.Sqrt2, result.Residual, 1e-3)
}

func TestSingleReplicaDeterminism(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	const n = 20
	q := make([]float64, n*n)
	p := make([]float64, n)
	lb := make([]float64, n)
	ub := make([]float64, n)
	diag := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := rng.NormFloat64()
			q[i*n+j] = v
			q[j*n+i] = v
		}
		q[i*n+i] = float64(n) // Diagonally dominant, keeps iterates tame.
		diag[i] = q[i*n+i]
		p[i] = rng.NormFloat64()
		lb[i] = -1
		ub[i] = 1
	}
	prob := mustProblem(t, n, q, p, lb, ub, diag)

	solveOnce := func() []float64 {
		s, err := New(prob, Config{Replicas: 1, Workers: 1, Seed: 1234})
		require.NoError(t, err)
		result, err := s.Solve(make([]float64, n))
		require.NoError(t, err)
		return result.X
	}
	first := solveOnce()
	second := solveOnce()
	assert.Equal(t, first, second, "serial single-replica solves must be bit-identical")
}

func TestParallelSolveStaysInBox(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	const n = 200
	q := make([]float64, n*n)
	p := make([]float64, n)
	lb := make([]float64, n)
	ub := make([]float64, n)
	diag := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			q[i*n+j] = rng.NormFloat64()
		}
		q[i*n+i] = 2 * n
		diag[i] = q[i*n+i]
		p[i] = 10 * rng.NormFloat64()
		lb[i] = -0.5
		ub[i] = 0.5
	}
	prob := mustProblem(t, n, q, p, lb, ub, diag)

	s, err := New(prob, Config{Epochs: 20, SyncInterval: 5, Replicas: 3, Workers: 4, Seed: 99})
	require.NoError(t, err)
	result, err := s.Solve(make([]float64, n))
	require.NoError(t, err)

	// Every write is individually projected and merging averages in-box
	// values, so the output must be elementwise within bounds.
	for i, v := range result.X {
		assert.GreaterOrEqual(t, v, lb[i], "coordinate %d below lower bound", i)
		assert.LessOrEqual(t, v, ub[i], "coordinate %d above upper bound", i)
	}
}

func TestParallelIdentitySolve(t *testing.T) {
	// With Q=I each coordinate settles on clamp(-p[i]) in one sweep, no
	// matter how updates interleave across workers and replicas.
	const n = 64
	p := make([]float64, n)
	lb := make([]float64, n)
	ub := make([]float64, n)
	for i := range p {
		p[i] = float64(i%5) - 2 // Values in {-2,...,2}.
		lb[i] = -0.5
		ub[i] = 0.5
	}
	prob := identityProblem(t, p, lb, ub)

	s, err := New(prob, Config{Epochs: 4, SyncInterval: 2, Replicas: 2, Workers: 4, Seed: 5})
	require.NoError(t, err)
	result, err := s.Solve(make([]float64, n))
	require.NoError(t, err)
	for i, v := range result.X {
		want := math.Min(math.Max(-p[i], lb[i]), ub[i])
		assert.InDelta(t, want, v, 1e-12, "coordinate %d", i)
	}
}

func TestEpochCallback(t *testing.T) {
	prob := identityProblem(t, []float64{1}, []float64{0}, []float64{1})
	var epochs []int
	s, err := New(prob, Config{
		Epochs:        5,
		Replicas:      1,
		Workers:       1,
		Seed:          1,
		EpochCallback: func(epoch int) { epochs = append(epochs, epoch) },
	})
	require.NoError(t, err)
	_, err = s.Solve([]float64{0})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, epochs)
}

func TestPermutationPerEpochVariant(t *testing.T) {
	// The per-epoch variant must preserve convergence on the sanity
	// problem; it only reshuffles visitation order.
	prob := identityProblem(t,
		[]float64{1, 1},
		[]float64{0, 0},
		[]float64{1, 1})
	s, err := New(prob, Config{Replicas: 1, Workers: 1, Seed: 7, PermutationPerEpoch: true})
	require.NoError(t, err)
	result, err := s.Solve([]float64{1, 1})
	require.NoError(t, err)
	assert.InDelta(t, 0, result.X[0], 1e-3)
	assert.InDelta(t, 0, result.X[1], 1e-3)
}

// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package solver implements a Hogwild-style parallel stochastic coordinate
// descent solver for box-constrained quadratic programs (see package bqp).
//
// The iterate is replicated once per NUMA domain. Within an epoch every
// replica is swept by several workers applying unsynchronized
// projected-gradient coordinate updates; replicas drift apart by design and
// are periodically reconciled by elementwise averaging. There are no locks
// and no atomics on the iterate: concurrent coordinate updates race on plain
// float64 loads and stores, and the algorithm's convergence-in-expectation
// tolerates the resulting staleness. Do not "fix" these races with mutexes,
// that would change the performance profile the design is built around.
package solver

import (
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/gomlx/hogwild/bqp"
	"github.com/gomlx/hogwild/internal/numa"
	"github.com/gomlx/hogwild/internal/replicas"
	"github.com/gomlx/hogwild/internal/workerspool"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

const (
	// DefaultEpochs is the number of full coordinate sweeps per solve.
	DefaultEpochs = 100

	// DefaultSyncInterval is how many epochs run between replica
	// reconciliations.
	DefaultSyncInterval = 10
)

// Config parametrizes a Solver. The zero value of each field selects its
// default, so Config{} is a valid configuration.
type Config struct {
	// Epochs is the number of full sweeps over all coordinates.
	// Defaults to DefaultEpochs.
	Epochs int

	// SyncInterval is the reconciliation period in epochs: on entering
	// epoch e, replicas are averaged whenever e%SyncInterval == 0 (so
	// epoch 0 reconciles freshly seeded, identical replicas, a no-op).
	// Defaults to DefaultSyncInterval.
	SyncInterval int

	// Replicas is the number of iterate copies. Defaults to the number of
	// NUMA domains the machine exposes.
	Replicas int

	// Workers is the number of sweep workers per replica. Defaults to
	// GOMAXPROCS divided by the replica count, minimum 1.
	Workers int

	// Seed seeds the permutation generator. 0 selects a time-based seed;
	// a fixed non-zero seed plus Replicas=1 and Workers=1 makes a solve
	// fully deterministic.
	Seed int64

	// PermutationPerEpoch redraws the visitation order every epoch
	// instead of once per solve. Off by default.
	PermutationPerEpoch bool

	// EpochCallback, if set, is invoked after each completed epoch with
	// the 0-based epoch index. Used for progress reporting.
	EpochCallback func(epoch int)
}

// Result of a solve.
type Result struct {
	// X is the merged final iterate, elementwise within [lb, ub].
	X []float64

	// Residual is ‖QX + p‖₂, the diagnostic reported by bqp.Problem.Residual.
	Residual float64
}

// Solver runs Hogwild coordinate descent on one bqp.Problem.
// A Solver is not safe for concurrent Solve calls.
type Solver struct {
	prob *bqp.Problem
	cfg  Config
	pool *workerspool.Pool
	rng  *rand.Rand
}

// New creates a Solver for prob with the given configuration.
// Zero-valued Config fields are filled with defaults; negative values are
// rejected.
func New(prob *bqp.Problem, cfg Config) (*Solver, error) {
	if prob == nil {
		return nil, errors.New("solver.New: problem must not be nil")
	}
	for _, v := range []struct {
		name  string
		value int
	}{
		{"Epochs", cfg.Epochs},
		{"SyncInterval", cfg.SyncInterval},
		{"Replicas", cfg.Replicas},
		{"Workers", cfg.Workers},
	} {
		if v.value < 0 {
			return nil, errors.Errorf("solver.New: Config.%s must not be negative, got %d", v.name, v.value)
		}
	}
	if cfg.Epochs == 0 {
		cfg.Epochs = DefaultEpochs
	}
	if cfg.SyncInterval == 0 {
		cfg.SyncInterval = DefaultSyncInterval
	}
	if cfg.Replicas == 0 {
		cfg.Replicas = numa.NumDomains()
	}
	if cfg.Workers == 0 {
		cfg.Workers = max(1, runtime.GOMAXPROCS(0)/cfg.Replicas)
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	return &Solver{
		prob: prob,
		cfg:  cfg,
		pool: workerspool.New(0),
		rng:  rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// Config returns the effective configuration, with defaults filled in.
func (s *Solver) Config() Config { return s.cfg }

// Solve runs the configured number of epochs starting from initial and
// returns the merged iterate and its residual.
//
// All replicas are seeded identically from initial; on entering each epoch
// whose index is a multiple of SyncInterval the replicas are averaged (a full
// barrier, never overlapping a sweep), then every replica runs one parallel
// sweep over the permutation. A solve always runs to completion, there is no
// cancellation.
//
// Degenerate inputs (extreme magnitudes, a near-zero diagonal beyond what the
// step floor covers) can drive the iterate to NaN or Inf; such values
// propagate to the result and its residual unchecked.
func (s *Solver) Solve(initial []float64) (*Result, error) {
	n := s.prob.Dim()
	if len(initial) != n {
		return nil, errors.Errorf("solver.Solve: initial vector has length %d, problem dimension is %d", len(initial), n)
	}

	group, err := replicas.NewGroup(s.cfg.Replicas, n)
	if err != nil {
		return nil, err
	}
	if err := group.Seed(initial); err != nil {
		return nil, err
	}
	perm := newPermutation(s.rng, n)

	klog.V(1).Infof("solver: n=%d epochs=%d sync=%d replicas=%d workers=%d seed=%d",
		n, s.cfg.Epochs, s.cfg.SyncInterval, s.cfg.Replicas, s.cfg.Workers, s.cfg.Seed)

	for epoch := 0; epoch < s.cfg.Epochs; epoch++ {
		if epoch%s.cfg.SyncInterval == 0 {
			group.Reconcile()
			klog.V(1).Infof("solver: epoch %d: reconciled %d replicas", epoch, group.NumReplicas())
		}
		if s.cfg.PermutationPerEpoch && epoch > 0 {
			perm = newPermutation(s.rng, n)
		}

		var wg sync.WaitGroup
		wg.Add(group.NumReplicas())
		for r := 0; r < group.NumReplicas(); r++ {
			x := group.Replica(r)
			go func() {
				defer wg.Done()
				s.sweep(x, perm)
			}()
		}
		wg.Wait()

		if klog.V(2).Enabled() {
			klog.Infof("solver: epoch %d: replica 0 residual=%g", epoch, s.prob.Residual(group.Replica(0)))
		}
		if s.cfg.EpochCallback != nil {
			s.cfg.EpochCallback(epoch)
		}
	}

	x := group.MergeFinal()
	result := &Result{X: x, Residual: s.prob.Residual(x)}
	klog.V(1).Infof("solver: done, residual=%g", result.Residual)
	return result, nil
}

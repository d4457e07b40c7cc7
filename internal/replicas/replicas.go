// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package replicas manages the per-NUMA-domain copies of the solver iterate.
//
// A Group owns R equal-length float64 buffers, one per domain. Between
// reconciliations each buffer is mutated only by the workers sweeping that
// replica; Reconcile is the single cross-replica operation and must be
// sequenced strictly between sweeps by the caller.
package replicas

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// Group holds R replicas of a length-n iterate vector.
type Group struct {
	buffers [][]float64
	mean    []float64 // Scratch for Reconcile/MergeFinal.
}

// NewGroup creates r replicas of length n each, zero-initialized.
func NewGroup(r, n int) (*Group, error) {
	if r < 1 {
		return nil, errors.Errorf("replicas.NewGroup: replica count must be >= 1, got %d", r)
	}
	if n < 1 {
		return nil, errors.Errorf("replicas.NewGroup: vector length must be >= 1, got %d", n)
	}
	g := &Group{
		buffers: make([][]float64, r),
		mean:    make([]float64, n),
	}
	for i := range g.buffers {
		g.buffers[i] = make([]float64, n)
	}
	return g, nil
}

// NumReplicas returns R.
func (g *Group) NumReplicas() int { return len(g.buffers) }

// Len returns the iterate length n.
func (g *Group) Len() int { return len(g.mean) }

// Replica returns the r-th replica's live buffer. The epoch driver mutates it
// in place during a sweep.
func (g *Group) Replica(r int) []float64 { return g.buffers[r] }

// Seed broadcasts init identically into every replica.
func (g *Group) Seed(init []float64) error {
	if len(init) != g.Len() {
		return errors.Errorf("replicas.Group.Seed: initial vector has length %d, want %d", len(init), g.Len())
	}
	for _, buf := range g.buffers {
		copy(buf, init)
	}
	return nil
}

// Reconcile overwrites every replica, coordinate by coordinate, with the
// arithmetic mean across all replicas. After it returns all replicas hold
// bit-identical values.
//
// With a single replica it is a no-op. The caller must guarantee no sweep is
// running concurrently.
func (g *Group) Reconcile() {
	if len(g.buffers) == 1 {
		return
	}
	g.average()
	for _, buf := range g.buffers {
		copy(buf, g.mean)
	}
}

// MergeFinal performs the same averaging as Reconcile and returns the merged
// vector. The returned slice is freshly allocated and outlives the Group.
func (g *Group) MergeFinal() []float64 {
	g.average()
	out := make([]float64, g.Len())
	copy(out, g.mean)
	return out
}

func (g *Group) average() {
	copy(g.mean, g.buffers[0])
	for _, buf := range g.buffers[1:] {
		floats.Add(g.mean, buf)
	}
	if r := len(g.buffers); r > 1 {
		floats.Scale(1/float64(r), g.mean)
	}
}

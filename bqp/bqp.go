// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package bqp defines the box-constrained quadratic program (BQP) being solved:
//
//	minimize ½·xᵀQx + pᵀx   subject to   lb ≤ x ≤ ub
//
// A Problem is an immutable view of Q, p, lb, ub and the diagonal of Q. It is
// built once per solve and borrowed (never copied, never mutated) by the
// solver for the whole run.
package bqp

import (
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// Problem is a box-constrained quadratic program of dimension n.
//
// Q is stored row-major in a flat buffer, so the i-th row is the contiguous
// slice q[i*n : (i+1)*n]. All accessors are read-only; Problem has no
// mutating methods.
type Problem struct {
	n int
	q []float64 // n*n, row-major.

	p, lb, ub, diag []float64 // Length n each.
}

// New creates a Problem from the flat row-major matrix q (length n*n) and the
// length-n vectors p, lb, ub and diag.
//
// diag is supplied by the caller rather than extracted from q: they are
// expected to agree, but a caller may substitute a regularized diagonal.
//
// It returns an error if any length is inconsistent with n. No numerical
// checks are performed: q is not required to be symmetric or positive
// semi-definite, and non-finite entries are passed through untouched.
func New(n int, q, p, lb, ub, diag []float64) (*Problem, error) {
	if n < 1 {
		return nil, errors.Errorf("bqp.New: dimension n must be >= 1, got %d", n)
	}
	if len(q) != n*n {
		return nil, errors.Errorf("bqp.New: matrix q must have %d (=%d²) elements, got %d", n*n, n, len(q))
	}
	for _, v := range []struct {
		name string
		s    []float64
	}{{"p", p}, {"lb", lb}, {"ub", ub}, {"diag", diag}} {
		if len(v.s) != n {
			return nil, errors.Errorf("bqp.New: vector %s must have length %d, got %d", v.name, n, len(v.s))
		}
	}
	return &Problem{n: n, q: q, p: p, lb: lb, ub: ub, diag: diag}, nil
}

// Dim returns the problem dimension n.
func (prob *Problem) Dim() int { return prob.n }

// Row returns the i-th row of Q as a live view into the underlying buffer,
// not a copy. It panics if i is out of range.
func (prob *Problem) Row(i int) []float64 {
	if i < 0 || i >= prob.n {
		exceptions.Panicf("bqp.Problem.Row(%d): row out of range for dimension %d", i, prob.n)
	}
	return prob.q[i*prob.n : (i+1)*prob.n]
}

// P returns p[i].
func (prob *Problem) P(i int) float64 { return prob.p[i] }

// Lower returns lb[i].
func (prob *Problem) Lower(i int) float64 { return prob.lb[i] }

// Upper returns ub[i].
func (prob *Problem) Upper(i int) float64 { return prob.ub[i] }

// Diag returns the caller-supplied diagonal entry diag[i].
func (prob *Problem) Diag(i int) float64 { return prob.diag[i] }

// Residual returns ‖Qx + p‖₂, the Euclidean norm of the unprojected gradient
// at x. For a box-constrained problem this is not a KKT optimality measure,
// only the diagnostic quantity reported at the end of a solve.
//
// It panics if len(x) != Dim().
func (prob *Problem) Residual(x []float64) float64 {
	if len(x) != prob.n {
		exceptions.Panicf("bqp.Problem.Residual: x has length %d, want %d", len(x), prob.n)
	}
	grad := make([]float64, prob.n)
	for i := range grad {
		grad[i] = floats.Dot(prob.Row(i), x) + prob.p[i]
	}
	return floats.Norm(grad, 2)
}

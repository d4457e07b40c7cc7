// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package workerspool bounds the number of goroutines the solver uses for
// coordinate sweeps. With several replicas each running a multi-worker sweep
// the naive goroutine count is replicas×workers; the pool keeps the number
// actually running near the configured limit.
package workerspool

import (
	"runtime"
	"sync"
)

// Pool is a soft cap on concurrently running tasks. Tasks never block inside
// the pool (sweep strips are pure computation), so a plain mutex+cond
// admission gate is enough.
type Pool struct {
	limit int

	mu      sync.Mutex
	cond    sync.Cond
	running int
}

// New returns a Pool admitting up to limit concurrent tasks.
// If limit <= 0 it defaults to runtime.GOMAXPROCS(0).
func New(limit int) *Pool {
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	p := &Pool{limit: limit}
	p.cond.L = &p.mu
	return p
}

// Limit returns the admission limit.
func (p *Pool) Limit() int { return p.limit }

// Go starts task in its own goroutine, blocking the caller until the pool has
// a free slot. The caller is responsible for waiting for completion (e.g.
// with a sync.WaitGroup inside task).
func (p *Pool) Go(task func()) {
	p.mu.Lock()
	for p.running >= p.limit {
		p.cond.Wait()
	}
	p.running++
	p.mu.Unlock()

	go func() {
		defer func() {
			p.mu.Lock()
			p.running--
			p.cond.Signal()
			p.mu.Unlock()
		}()
		task()
	}()
}

// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package solver

import "sync"

// stripLen is how many coordinates a worker claims at a time. Small enough
// for load balancing, large enough that workers rarely touch the work
// channel.
const stripLen = 256

// sweep runs one epoch on a single replica: every entry of perm gets exactly
// one coordinateStep, scheduled across the configured workers with no
// ordering guarantee and no locking on x.
func (s *Solver) sweep(x []float64, perm []int) {
	if s.cfg.Workers <= 1 {
		for _, i := range perm {
			coordinateStep(s.prob, x, i)
		}
		return
	}

	numStrips := (len(perm) + stripLen - 1) / stripLen
	work := make(chan int, numStrips)
	for strip := 0; strip < numStrips; strip++ {
		work <- strip
	}
	close(work)

	var wg sync.WaitGroup
	wg.Add(s.cfg.Workers)
	for w := 0; w < s.cfg.Workers; w++ {
		s.pool.Go(func() {
			defer wg.Done()
			for strip := range work {
				lo := strip * stripLen
				hi := min(lo+stripLen, len(perm))
				for _, i := range perm[lo:hi] {
					coordinateStep(s.prob, x, i)
				}
			}
		})
	}
	wg.Wait()
}

package filter

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// minBand is the smallest number of lines handed to one worker.
const minBand = 32

// parallel splits [0, n) into contiguous bands and calls fn(lo, hi) for each
// band concurrently. fn must only write to lines inside its own band.
func parallel(n int, fn func(lo, hi int)) {
	workers := min(runtime.GOMAXPROCS(0), n/minBand)
	if workers <= 1 {
		if n > 0 {
			fn(0, n)
		}
		return
	}

	band := (n + workers - 1) / workers
	var g errgroup.Group
	for lo := 0; lo < n; lo += band {
		hi := min(lo+band, n)
		g.Go(func() error {
			fn(lo, hi)
			return nil
		})
	}
	_ = g.Wait()
}

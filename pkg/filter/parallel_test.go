package filter

import (
	"sync"
	"testing"
)

func TestParallelCoversRange(t *testing.T) {
	for _, n := range []int{0, 1, 31, 32, 64, 100, 1000, 4097} {
		var mu sync.Mutex
		hits := make([]int, n)
		parallel(n, func(lo, hi int) {
			if lo >= hi {
				t.Errorf("n=%d: empty band [%d,%d)", n, lo, hi)
			}
			mu.Lock()
			defer mu.Unlock()
			for i := lo; i < hi; i++ {
				hits[i]++
			}
		})
		for i, h := range hits {
			if h != 1 {
				t.Fatalf("n=%d: line %d visited %d times", n, i, h)
			}
		}
	}
}

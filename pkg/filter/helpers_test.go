package filter

import (
	"math/rand/v2"
	"testing"

	"github.com/matzehuels/imgfilter/pkg/grid"
)

// randomGrid returns a reproducible grid of noise.
func randomGrid(width, height int, seed uint64) *grid.Grid {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	g := grid.New(width, height)
	for _, row := range g.Rows {
		for j := range row {
			row[j] = grid.Pixel{R: uint8(rng.IntN(256)), G: uint8(rng.IntN(256)), B: uint8(rng.IntN(256))}
		}
	}
	return g
}

// assertUniform fails unless every pixel of g equals want.
func assertUniform(t *testing.T, g *grid.Grid, want grid.Pixel) {
	t.Helper()
	for i, row := range g.Rows {
		for j, p := range row {
			if p != want {
				t.Fatalf("pixel (%d,%d) = %v, want %v", i, j, p, want)
			}
		}
	}
}

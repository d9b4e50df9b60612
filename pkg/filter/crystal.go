package filter

import (
	"math/rand/v2"

	apperrors "github.com/matzehuels/imgfilter/pkg/errors"
	"github.com/matzehuels/imgfilter/pkg/grid"
)

// Crystallize breaks the image into irregular shards of roughly uniform
// colour.
//
// The image is divided into ShardSize x ShardSize macro-cells and one anchor
// is drawn at random inside each cell. Every pixel joins the nearest anchor
// among its own cell and the eight surrounding cells, and each resulting
// shard is painted with the mean colour of its members.
type Crystallize struct {
	ShardSize int

	rng    *rand.Rand
	seeded bool
}

// NewCrystallize returns a filter whose anchors are drawn from an
// entropy-seeded generator.
func NewCrystallize(shardSize int) *Crystallize {
	return &Crystallize{
		ShardSize: shardSize,
		rng:       rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// NewCrystallizeSeeded returns a filter with a reproducible anchor sequence.
func NewCrystallizeSeeded(shardSize int, seed uint64) *Crystallize {
	return &Crystallize{
		ShardSize: shardSize,
		rng:       rand.New(rand.NewPCG(seed, seed^0xdeadbeef)),
		seeded:    true,
	}
}

func (*Crystallize) Name() string { return "crystallize" }

// Deterministic reports whether the filter was created with a fixed seed.
func (c *Crystallize) Deterministic() bool { return c.seeded }

func (c *Crystallize) Apply(g *grid.Grid) error {
	if c.ShardSize <= 0 {
		return apperrors.New(apperrors.ErrCodePrecondition, "shard size must be positive, got %d", c.ShardSize)
	}
	if g.Empty() {
		return nil
	}
	if c.ShardSize > g.Width || c.ShardSize > g.Height {
		return apperrors.New(apperrors.ErrCodePrecondition,
			"shard size %d must not exceed the image size %dx%d", c.ShardSize, g.Width, g.Height)
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	m := c.buildShards(g.Height, g.Width)

	type sum struct{ r, g, b, n int }
	sums := make([]sum, len(m.anchors))
	for i, row := range g.Rows {
		for j, p := range row {
			s := &sums[m.owner[i*g.Width+j]]
			s.r += int(p.R)
			s.g += int(p.G)
			s.b += int(p.B)
			s.n++
		}
	}

	means := make([]grid.Pixel, len(sums))
	for k, s := range sums {
		if s.n > 0 {
			means[k] = grid.Pixel{R: uint8(s.r / s.n), G: uint8(s.g / s.n), B: uint8(s.b / s.n)}
		}
	}

	parallel(g.Height, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			row := g.Rows[i]
			for j := range row {
				row[j] = means[m.owner[i*g.Width+j]]
			}
		}
	})
	return nil
}

// point is a pixel coordinate (row, column).
type point struct{ i, j int }

// shardMap is the per-call assignment of pixels to anchors.
type shardMap struct {
	cols    int     // macro-cells per row
	anchors []point // anchor of macro-cell (ci, cj) at index ci*cols+cj
	owner   []int   // anchor index of pixel (i, j) at index i*width+j
}

// buildShards draws one anchor per macro-cell and assigns every pixel of a
// height x width image to its nearest anchor.
func (c *Crystallize) buildShards(height, width int) shardMap {
	s := c.ShardSize
	rows := (height + s - 1) / s
	cols := (width + s - 1) / s

	anchors := make([]point, rows*cols)
	for ci := range rows {
		for cj := range cols {
			di, dj := c.rng.IntN(s), c.rng.IntN(s)
			anchors[ci*cols+cj] = point{
				i: min(ci*s+di, height-1),
				j: min(cj*s+dj, width-1),
			}
		}
	}
	return assignShards(anchors, s, cols, height, width)
}

// assignShards maps every pixel to the closest anchor among its own
// macro-cell and the eight around it.
func assignShards(anchors []point, s, cols, height, width int) shardMap {
	rows := len(anchors) / cols
	owner := make([]int, height*width)
	parallel(height, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			ci := i / s
			for j := range width {
				cj := j / s
				best, bestDist := -1, 0
				// Row-major scan; ties keep the first anchor found.
				for di := -1; di <= 1; di++ {
					ni := ci + di
					if ni < 0 || ni >= rows {
						continue
					}
					for dj := -1; dj <= 1; dj++ {
						nj := cj + dj
						if nj < 0 || nj >= cols {
							continue
						}
						k := ni*cols + nj
						a := anchors[k]
						d := (a.i-i)*(a.i-i) + (a.j-j)*(a.j-j)
						if best < 0 || d < bestDist {
							best, bestDist = k, d
						}
					}
				}
				owner[i*width+j] = best
			}
		}
	})

	return shardMap{cols: cols, anchors: anchors, owner: owner}
}

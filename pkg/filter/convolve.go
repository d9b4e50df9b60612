package filter

import (
	"github.com/matzehuels/imgfilter/pkg/grid"
)

// Kernel is a 3x3 matrix of convolution weights, indexed [row][column].
type Kernel [3][3]float64

var (
	// SharpenKernel boosts the centre pixel against its four neighbours.
	SharpenKernel = Kernel{
		{0, -1, 0},
		{-1, 5, -1},
		{0, -1, 0},
	}

	// EdgeKernel is the discrete Laplacian.
	EdgeKernel = Kernel{
		{0, -1, 0},
		{-1, 4, -1},
		{0, -1, 0},
	}
)

// Apply3x3 convolves every channel of g with k. The sums are taken over a
// bordered snapshot (see [Extend]), clamped to [0,255] and rounded, and then
// written back into g.
func Apply3x3(g *grid.Grid, k Kernel) error {
	padded, err := Extend(g)
	if err != nil {
		return err
	}

	parallel(g.Height, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			out := g.Rows[i]
			for j := range out {
				var r, gr, b float64
				for fi := range 3 {
					src := padded.Rows[i+fi][j : j+3]
					for fj, p := range src {
						c := k[fi][fj]
						r += c * float64(p.R)
						gr += c * float64(p.G)
						b += c * float64(p.B)
					}
				}
				out[j] = grid.Pixel{R: grid.ClampRound(r), G: grid.ClampRound(gr), B: grid.ClampRound(b)}
			}
		}
	})
	return nil
}

// Sharpen enhances local contrast with [SharpenKernel].
type Sharpen struct{}

func (Sharpen) Name() string { return "sharpen" }

func (Sharpen) Apply(g *grid.Grid) error {
	return Apply3x3(g, SharpenKernel)
}

// EdgeDetect runs [EdgeKernel] and then turns every pixel white when its
// weighted brightness exceeds Threshold*255, black otherwise.
type EdgeDetect struct {
	// Threshold is in [0,1].
	Threshold float64
}

func (EdgeDetect) Name() string { return "edge" }

func (f EdgeDetect) Apply(g *grid.Grid) error {
	if err := Apply3x3(g, EdgeKernel); err != nil {
		return err
	}
	limit := 255 * f.Threshold
	parallel(g.Height, func(lo, hi int) {
		for _, row := range g.Rows[lo:hi] {
			for j, p := range row {
				// Green is weighted 0.567 here, not the 0.587 of Pixel.Luma.
				if 0.299*float64(p.R)+0.567*float64(p.G)+0.114*float64(p.B) > limit {
					row[j] = grid.White
				} else {
					row[j] = grid.Black
				}
			}
		}
	})
	return nil
}

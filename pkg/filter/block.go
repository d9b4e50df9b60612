package filter

import (
	apperrors "github.com/matzehuels/imgfilter/pkg/errors"
	"github.com/matzehuels/imgfilter/pkg/grid"
)

// Crop keeps the top-left Width x Height region of the image. Requests
// larger than the image leave the corresponding dimension unchanged.
type Crop struct {
	Width  int
	Height int
}

func (Crop) Name() string { return "crop" }

func (f Crop) Apply(g *grid.Grid) error {
	if f.Width < 0 || f.Height < 0 {
		return apperrors.New(apperrors.ErrCodePrecondition, "crop size must not be negative, got %dx%d", f.Width, f.Height)
	}
	g.Crop(f.Width, f.Height)
	return nil
}

// Pixelate replaces square blocks of side 2*Size+1 with their mean colour.
// Blocks are laid out from (Size, Size) on a stride of 2*Size+1 and must fit
// entirely inside the image, so a margin of at least Size pixels on every
// side is left unchanged.
type Pixelate struct {
	Size int
}

func (Pixelate) Name() string { return "pixelate" }

func (f Pixelate) Apply(g *grid.Grid) error {
	ps := f.Size
	if ps < 0 {
		return apperrors.New(apperrors.ErrCodePrecondition, "pixel size must not be negative, got %d", ps)
	}
	if ps > g.Height || ps > g.Width {
		return apperrors.New(apperrors.ErrCodePrecondition,
			"pixel size %d must not exceed the image size %dx%d", ps, g.Width, g.Height)
	}

	side := 2*ps + 1
	area := side * side
	blockRows := 0
	if g.Height > 2*ps {
		blockRows = (g.Height - 2*ps + side - 1) / side
	}

	// Blocks never overlap, so bands of block rows are independent.
	parallel(blockRows, func(lo, hi int) {
		for bi := lo; bi < hi; bi++ {
			i := ps + bi*side
			for j := ps; j < g.Width-ps; j += side {
				var r, gr, b int
				for _, row := range g.Rows[i-ps : i+ps+1] {
					for _, p := range row[j-ps : j+ps+1] {
						r += int(p.R)
						gr += int(p.G)
						b += int(p.B)
					}
				}
				mean := grid.Pixel{R: uint8(r / area), G: uint8(gr / area), B: uint8(b / area)}
				for _, row := range g.Rows[i-ps : i+ps+1] {
					for k := j - ps; k <= j+ps; k++ {
						row[k] = mean
					}
				}
			}
		}
	})
	return nil
}

package filter

import (
	apperrors "github.com/matzehuels/imgfilter/pkg/errors"
	"github.com/matzehuels/imgfilter/pkg/grid"
)

// Extend returns a copy of src padded by one pixel on every side, for use
// by 3x3 kernels.
//
// Row i+1 of the result holds source row i with its first and last pixels
// repeated on the left and right. Row 0 and the last row repeat the first and
// last source rows in their interior, but their two corner pixels are black
// rather than edge-replicated.
func Extend(src *grid.Grid) (*grid.Grid, error) {
	if src.Empty() {
		return nil, apperrors.New(apperrors.ErrCodePrecondition, "cannot extend an empty image")
	}

	h, w := src.Height, src.Width
	dst := grid.New(w+2, h+2)

	// Corners are left black.
	copy(dst.Rows[0][1:w+1], src.Rows[0])
	for i, row := range src.Rows {
		out := dst.Rows[i+1]
		out[0] = row[0]
		copy(out[1:w+1], row)
		out[w+1] = row[w-1]
	}
	copy(dst.Rows[h+1][1:w+1], src.Rows[h-1])

	return dst, nil
}

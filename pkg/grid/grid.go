// Package grid provides the in-memory pixel grid that filters operate on.
//
// A [Grid] is a dense, row-major array of RGB triples. Row 0 is the top row
// of the image. Every row has exactly Width pixels; operations that shrink a
// grid (see [Grid.Crop]) truncate the underlying rows so the physical storage
// and the logical size never disagree.
//
// # Ownership
//
// A Grid is not safe for concurrent mutation. The pipeline hands a grid to one
// filter at a time; a filter may read and write it freely during Apply but
// must not keep a reference after returning.
package grid

import (
	"errors"
	"fmt"
	"math"
)

// ErrEmpty is returned by operations that need at least one pixel.
var ErrEmpty = errors.New("grid is empty")

// Pixel is one RGB triple with 8 bits per channel.
type Pixel struct {
	R, G, B uint8
}

// Black is the zero pixel.
var Black = Pixel{}

// White is the all-255 pixel.
var White = Pixel{R: 255, G: 255, B: 255}

// Gray returns a pixel with all three channels set to v.
func Gray(v uint8) Pixel {
	return Pixel{R: v, G: v, B: v}
}

// Grid is a rectangular image of Height rows, each Width pixels long.
type Grid struct {
	Width  int
	Height int
	Rows   [][]Pixel
}

// New allocates a black grid of the given size.
func New(width, height int) *Grid {
	width, height = max(width, 0), max(height, 0)
	g := &Grid{Width: width, Height: height, Rows: make([][]Pixel, height)}
	pix := make([]Pixel, width*height)
	for i := range g.Rows {
		g.Rows[i] = pix[i*width : (i+1)*width : (i+1)*width]
	}
	return g
}

// Filled allocates a grid with every pixel set to p.
func Filled(width, height int, p Pixel) *Grid {
	g := New(width, height)
	g.Fill(p)
	return g
}

// FromRows builds a grid from rows of equal length. The rows are copied.
func FromRows(rows [][]Pixel) (*Grid, error) {
	if len(rows) == 0 {
		return New(0, 0), nil
	}
	width := len(rows[0])
	g := New(width, len(rows))
	for i, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("row %d has %d pixels, want %d", i, len(row), width)
		}
		copy(g.Rows[i], row)
	}
	return g, nil
}

// Empty reports whether the grid holds no pixels.
func (g *Grid) Empty() bool {
	return g == nil || g.Width == 0 || g.Height == 0
}

// At returns the pixel at row i, column j.
func (g *Grid) At(i, j int) Pixel {
	return g.Rows[i][j]
}

// Set stores p at row i, column j.
func (g *Grid) Set(i, j int, p Pixel) {
	g.Rows[i][j] = p
}

// Fill sets every pixel to p.
func (g *Grid) Fill(p Pixel) {
	for _, row := range g.Rows {
		for j := range row {
			row[j] = p
		}
	}
}

// Clone returns a deep copy of g with independent storage.
func (g *Grid) Clone() *Grid {
	c := New(g.Width, g.Height)
	c.CopyFrom(g)
	return c
}

// CopyFrom overwrites g with the pixels of src. Both grids must have the
// same dimensions.
func (g *Grid) CopyFrom(src *Grid) {
	for i := range g.Rows {
		copy(g.Rows[i], src.Rows[i])
	}
}

// Equal reports whether both grids have the same size and pixels.
func (g *Grid) Equal(o *Grid) bool {
	if g.Width != o.Width || g.Height != o.Height {
		return false
	}
	for i := range g.Rows {
		for j := range g.Rows[i] {
			if g.Rows[i][j] != o.Rows[i][j] {
				return false
			}
		}
	}
	return true
}

// Crop shrinks the grid to at most width columns and height rows, keeping
// the top-left corner. Requests larger than the current size leave that
// dimension unchanged. Rows are truncated in place so that every row keeps
// exactly Width pixels.
func (g *Grid) Crop(width, height int) {
	height = min(max(height, 0), g.Height)
	width = min(max(width, 0), g.Width)
	g.Rows = g.Rows[:height]
	for i := range g.Rows {
		g.Rows[i] = g.Rows[i][:width:width]
	}
	g.Width, g.Height = width, height
}

// Luma returns the weighted grayscale value 0.299R + 0.587G + 0.114B.
func (p Pixel) Luma() float64 {
	return 0.299*float64(p.R) + 0.587*float64(p.G) + 0.114*float64(p.B)
}

// ClampRound converts v to a channel value, clamping to [0,255] and rounding
// half away from zero.
func ClampRound(v float64) uint8 {
	return uint8(math.Round(Clamp(v)))
}

// ClampTrunc converts v to a channel value, clamping to [0,255] and dropping
// the fractional part.
func ClampTrunc(v float64) uint8 {
	return uint8(Clamp(v))
}

// Clamp limits v to the channel range [0,255]. NaN maps to 0.
func Clamp(v float64) float64 {
	switch {
	case v != v:
		return 0
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return v
}

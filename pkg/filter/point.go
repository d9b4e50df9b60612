package filter

import (
	"math"

	"github.com/matzehuels/imgfilter/pkg/grid"
)

// pointwise replaces every pixel p of g with fn(p).
func pointwise(g *grid.Grid, fn func(grid.Pixel) grid.Pixel) {
	parallel(g.Height, func(lo, hi int) {
		for _, row := range g.Rows[lo:hi] {
			for j, p := range row {
				row[j] = fn(p)
			}
		}
	})
}

// channelwise applies the lookup table to each channel of every pixel.
func channelwise(g *grid.Grid, lut *[256]uint8) {
	pointwise(g, func(p grid.Pixel) grid.Pixel {
		return grid.Pixel{R: lut[p.R], G: lut[p.G], B: lut[p.B]}
	})
}

// Grayscale sets every channel to the pixel's luma, 0.299R + 0.587G + 0.114B,
// truncated to an integer.
type Grayscale struct{}

func (Grayscale) Name() string { return "grayscale" }

func (Grayscale) Apply(g *grid.Grid) error {
	pointwise(g, func(p grid.Pixel) grid.Pixel {
		// Integer weights keep gray inputs exact, so the filter is idempotent.
		y := (299*uint32(p.R) + 587*uint32(p.G) + 114*uint32(p.B)) / 1000
		return grid.Gray(uint8(y))
	})
	return nil
}

// Negative inverts every channel.
type Negative struct{}

func (Negative) Name() string { return "negative" }

func (Negative) Apply(g *grid.Grid) error {
	pointwise(g, func(p grid.Pixel) grid.Pixel {
		return grid.Pixel{R: 255 - p.R, G: 255 - p.G, B: 255 - p.B}
	})
	return nil
}

// AutoContrast pushes bright and mid-bright channel values up and dark
// values down, using fixed bands.
type AutoContrast struct{}

func (AutoContrast) Name() string { return "contrast" }

func (AutoContrast) Apply(g *grid.Grid) error {
	channelwise(g, &contrastLUT)
	return nil
}

var contrastLUT = func() (lut [256]uint8) {
	for v := range lut {
		lut[v] = contrast(uint8(v))
	}
	return lut
}()

// contrast maps one channel value:
//
//	[0,20)    -> 0
//	[20,40]   -> v-20
//	(40,60)   -> v-10
//	(70,100)  -> v+10
//	[100,235] -> v+20
//	(235,255] -> 255
//
// Everything else is unchanged.
func contrast(v uint8) uint8 {
	switch {
	case v >= 100 && v <= 235:
		return v + 20
	case v > 235:
		return 255
	case v >= 20 && v <= 40:
		return v - 20
	case v < 20:
		return 0
	case v > 70 && v < 100:
		return v + 10
	case v > 40 && v < 60:
		return v - 10
	}
	return v
}

// Gamma raises every channel value to the power Sigma. Values are not
// normalised first, so Sigma below 1 darkens the image strongly.
type Gamma struct {
	// Sigma is in [0.1, 1.0].
	Sigma float64
}

func (Gamma) Name() string { return "gamma" }

func (f Gamma) Apply(g *grid.Grid) error {
	var lut [256]uint8
	for v := range lut {
		lut[v] = grid.ClampTrunc(math.Pow(float64(v), f.Sigma))
	}
	channelwise(g, &lut)
	return nil
}

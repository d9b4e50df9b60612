package grid

import (
	"image"
	"image/color"
)

// FromImage copies any image into a new grid. Alpha is discarded.
func FromImage(img image.Image) *Grid {
	b := img.Bounds()
	g := New(b.Dx(), b.Dy())
	if rgba, ok := img.(*image.RGBA); ok {
		for i := range g.Height {
			off := rgba.PixOffset(b.Min.X, b.Min.Y+i)
			row := rgba.Pix[off : off+4*g.Width]
			for j := range g.Width {
				g.Rows[i][j] = Pixel{R: row[4*j], G: row[4*j+1], B: row[4*j+2]}
			}
		}
		return g
	}
	for i := range g.Height {
		for j := range g.Width {
			c := color.RGBAModel.Convert(img.At(b.Min.X+j, b.Min.Y+i)).(color.RGBA)
			g.Rows[i][j] = Pixel{R: c.R, G: c.G, B: c.B}
		}
	}
	return g
}

// Image returns an opaque RGBA copy of the grid, Width by Height pixels.
func (g *Grid) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, g.Width, g.Height))
	for i := range g.Height {
		off := img.PixOffset(0, i)
		for j, p := range g.Rows[i][:g.Width] {
			img.Pix[off+4*j] = p.R
			img.Pix[off+4*j+1] = p.G
			img.Pix[off+4*j+2] = p.B
			img.Pix[off+4*j+3] = 0xff
		}
	}
	return img
}

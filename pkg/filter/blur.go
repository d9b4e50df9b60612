package filter

import (
	"math"

	apperrors "github.com/matzehuels/imgfilter/pkg/errors"
	"github.com/matzehuels/imgfilter/pkg/grid"
)

// BoxCount is the number of box blur passes used to approximate a Gaussian.
const BoxCount = 4

// MaxSigma is the largest accepted blur sigma. Its ideal box width stays
// below 1<<20, so window sums cannot overflow.
const MaxSigma = 500_000

// GaussianBlur approximates a Gaussian blur of standard deviation Sigma with
// [BoxCount] successive box blurs. Each pass runs in O(width*height)
// regardless of its radius.
type GaussianBlur struct {
	Sigma float64
}

func (GaussianBlur) Name() string { return "blur" }

func (f GaussianBlur) Apply(g *grid.Grid) error {
	if math.IsNaN(f.Sigma) || f.Sigma < 0 || f.Sigma > MaxSigma {
		return apperrors.New(apperrors.ErrCodePrecondition, "blur sigma must be between 0 and %d, got %v", MaxSigma, f.Sigma)
	}
	if g.Empty() {
		return nil
	}

	source, target := g, g.Clone()
	for _, size := range BoxSizes(f.Sigma, BoxCount) {
		boxBlur(source, target, (size-1)/2)
		source, target = target, source
	}
	if source != g {
		g.CopyFrom(source)
	}
	return nil
}

// BoxSizes returns the widths of n box filters whose successive application
// approximates a Gaussian of standard deviation sigma. All widths are odd;
// the first m use the lower width and the rest the next odd width up.
func BoxSizes(sigma float64, n int) []int {
	variance := 12 * sigma * sigma
	ideal := math.Sqrt(variance/float64(n) + 1)

	lower := int(math.Floor(ideal))
	if lower%2 == 0 {
		lower--
	}
	upper := lower + 2

	fn, fl := float64(n), float64(lower)
	m := int(math.Round((variance - fn*fl*fl - 4*fn*fl - 3*fn) / (-4*fl - 4)))
	m = min(max(m, 0), n)

	sizes := make([]int, n)
	for i := range sizes {
		if i < m {
			sizes[i] = lower
		} else {
			sizes[i] = upper
		}
	}
	return sizes
}

// boxBlur runs one separable box blur of the given radius. The result ends
// up in target; source is used as scratch space for the horizontal pass.
func boxBlur(source, target *grid.Grid, radius int) {
	target.CopyFrom(source)
	blurHorizontal(target, source, radius)
	blurVertical(source, target, radius)
}

// blurHorizontal blurs every row of src into dst.
func blurHorizontal(src, dst *grid.Grid, radius int) {
	parallel(src.Height, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			blurLine(dst.Rows[i], src.Rows[i], radius)
		}
	})
}

// blurVertical blurs every column of src into dst.
func blurVertical(src, dst *grid.Grid, radius int) {
	parallel(src.Width, func(lo, hi int) {
		in := make([]grid.Pixel, src.Height)
		out := make([]grid.Pixel, src.Height)
		for j := lo; j < hi; j++ {
			for i, row := range src.Rows {
				in[i] = row[j]
			}
			blurLine(out, in, radius)
			for i, row := range dst.Rows {
				row[j] = out[i]
			}
		}
	})
}

// blurLine writes the sliding-window mean of src into dst. The window spans
// 2*radius+1 samples centred on each position; samples beyond either end
// repeat the first or last value.
func blurLine(dst, src []grid.Pixel, radius int) {
	n := len(src)
	if n == 0 {
		return
	}
	if radius <= 0 {
		copy(dst, src)
		return
	}

	last := n - 1
	at := func(k int) grid.Pixel {
		return src[min(max(k, 0), last)]
	}

	// Window for position 0: radius+1 copies of src[0], then src[1..radius]
	// where everything past the end repeats src[last].
	first := src[0]
	r := (radius + 1) * int(first.R)
	g := (radius + 1) * int(first.G)
	b := (radius + 1) * int(first.B)
	inside := min(radius, last)
	for _, p := range src[1 : inside+1] {
		r += int(p.R)
		g += int(p.G)
		b += int(p.B)
	}
	if extra := radius - inside; extra > 0 {
		p := src[last]
		r += extra * int(p.R)
		g += extra * int(p.G)
		b += extra * int(p.B)
	}

	width := 2*radius + 1
	for j := range dst[:n] {
		dst[j] = grid.Pixel{R: divRound(r, width), G: divRound(g, width), B: divRound(b, width)}

		in, out := at(j+radius+1), at(j-radius)
		r += int(in.R) - int(out.R)
		g += int(in.G) - int(out.G)
		b += int(in.B) - int(out.B)
	}
}

// divRound returns sum/n rounded half up, for non-negative sum.
func divRound(sum, n int) uint8 {
	return uint8((2*sum + n) / (2 * n))
}

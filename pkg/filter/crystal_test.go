package filter

import (
	"testing"

	apperrors "github.com/matzehuels/imgfilter/pkg/errors"
	"github.com/matzehuels/imgfilter/pkg/grid"
)

func TestCrystallizeShardMeans(t *testing.T) {
	const w, h, shard = 45, 38, 6
	g := randomGrid(w, h, 21)
	orig := g.Clone()

	// Two filters with the same seed draw the same anchors.
	m := NewCrystallizeSeeded(shard, 99).buildShards(h, w)
	if err := NewCrystallizeSeeded(shard, 99).Apply(g); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	members := make(map[int][]point)
	for i := range h {
		for j := range w {
			k := m.owner[i*w+j]
			members[k] = append(members[k], point{i, j})
		}
	}

	for k, pts := range members {
		var r, gr, b int
		for _, p := range pts {
			px := orig.At(p.i, p.j)
			r += int(px.R)
			gr += int(px.G)
			b += int(px.B)
		}
		n := len(pts)
		want := grid.Pixel{R: uint8(r / n), G: uint8(gr / n), B: uint8(b / n)}
		for _, p := range pts {
			if got := g.At(p.i, p.j); got != want {
				t.Fatalf("shard %d pixel %v = %v, want mean %v", k, p, got, want)
			}
		}
	}

	// Averaging an already averaged shard is stable.
	again := g.Clone()
	if err := NewCrystallizeSeeded(shard, 99).Apply(again); err != nil {
		t.Fatal(err)
	}
	if !again.Equal(g) {
		t.Error("re-applying with the same anchors changed the image")
	}
}

func TestCrystallizeNearestAnchor(t *testing.T) {
	const w, h, shard = 31, 29, 5
	m := NewCrystallizeSeeded(shard, 7).buildShards(h, w)
	rows := (h + shard - 1) / shard

	if len(m.anchors) != rows*m.cols {
		t.Fatalf("anchors = %d, want %d", len(m.anchors), rows*m.cols)
	}
	for k, a := range m.anchors {
		ci, cj := k/m.cols, k%m.cols
		if a.i < ci*shard || a.i >= min((ci+1)*shard, h) || a.j < cj*shard || a.j >= min((cj+1)*shard, w) {
			t.Errorf("anchor %d = %v lies outside macro-cell (%d,%d)", k, a, ci, cj)
		}
	}

	dist := func(a point, i, j int) int { return (a.i-i)*(a.i-i) + (a.j-j)*(a.j-j) }
	for i := range h {
		for j := range w {
			got := m.owner[i*w+j]
			ci, cj := i/shard, j/shard
			oi, oj := got/m.cols-ci, got%m.cols-cj
			if oi < -1 || oi > 1 || oj < -1 || oj > 1 {
				t.Fatalf("pixel (%d,%d) assigned to non-neighbouring cell", i, j)
			}
			for di := -1; di <= 1; di++ {
				for dj := -1; dj <= 1; dj++ {
					ni, nj := ci+di, cj+dj
					if ni < 0 || ni >= rows || nj < 0 || nj >= m.cols {
						continue
					}
					if dist(m.anchors[ni*m.cols+nj], i, j) < dist(m.anchors[got], i, j) {
						t.Fatalf("pixel (%d,%d) has a closer anchor than %d", i, j, got)
					}
				}
			}
		}
	}
}

func TestCrystallizeTieBreak(t *testing.T) {
	// 4x4 image, shard size 2: one anchor per 2x2 cell.
	anchors := []point{{1, 1}, {0, 2}, {2, 0}, {3, 3}}
	m := assignShards(anchors, 2, 2, 4, 4)

	tests := []struct {
		i, j int
		want int
	}{
		{2, 2, 0}, // equidistant from anchors 0 and 3
		{1, 2, 0}, // equidistant from anchors 0 and 1
		{3, 3, 3},
		{0, 3, 1},
		{3, 0, 2},
	}
	for _, tt := range tests {
		if got := m.owner[tt.i*4+tt.j]; got != tt.want {
			t.Errorf("owner(%d,%d) = %d, want %d", tt.i, tt.j, got, tt.want)
		}
	}
}

func TestCrystallizeShardLargerThanImage(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		shard         int
	}{
		{"wider than image", 4, 4, 10},
		{"taller than image", 8, 3, 4},
		{"one past width", 3, 5, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := randomGrid(tt.width, tt.height, 5)
			want := g.Clone()
			err := NewCrystallizeSeeded(tt.shard, 1).Apply(g)
			if !apperrors.Is(err, apperrors.ErrCodePrecondition) {
				t.Fatalf("err = %v, want %s", err, apperrors.ErrCodePrecondition)
			}
			if !g.Equal(want) {
				t.Error("grid changed despite the precondition failure")
			}
		})
	}
}

func TestCrystallizeShardEqualToImage(t *testing.T) {
	g := randomGrid(4, 4, 5)
	sum := [3]int{}
	for _, row := range g.Rows {
		for _, p := range row {
			sum[0] += int(p.R)
			sum[1] += int(p.G)
			sum[2] += int(p.B)
		}
	}
	if err := NewCrystallizeSeeded(4, 3).Apply(g); err != nil {
		t.Fatal(err)
	}
	assertUniform(t, g, grid.Pixel{R: uint8(sum[0] / 16), G: uint8(sum[1] / 16), B: uint8(sum[2] / 16)})
}

func TestCrystallizeUniformImage(t *testing.T) {
	g := grid.Filled(40, 40, grid.Gray(123))
	if err := NewCrystallize(7).Apply(g); err != nil {
		t.Fatal(err)
	}
	assertUniform(t, g, grid.Gray(123))
}

func TestCrystallizeSeedReproducible(t *testing.T) {
	a := randomGrid(30, 30, 8)
	b := a.Clone()
	_ = NewCrystallizeSeeded(4, 42).Apply(a)
	_ = NewCrystallizeSeeded(4, 42).Apply(b)
	if !a.Equal(b) {
		t.Error("same seed should give the same output")
	}
}

func TestCrystallizeInvalidShardSize(t *testing.T) {
	for _, size := range []int{0, -3} {
		err := NewCrystallize(size).Apply(grid.New(4, 4))
		if !apperrors.Is(err, apperrors.ErrCodePrecondition) {
			t.Errorf("shard size %d: error = %v, want precondition", size, err)
		}
	}
}

func TestCrystallizeDeterministic(t *testing.T) {
	if Deterministic(NewCrystallize(3)) {
		t.Error("entropy-seeded crystallize should not be deterministic")
	}
	if !Deterministic(NewCrystallizeSeeded(3, 1)) {
		t.Error("seeded crystallize should be deterministic")
	}
	if !Deterministic(Negative{}) {
		t.Error("negative should be deterministic")
	}
}

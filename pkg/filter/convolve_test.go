package filter

import (
	"testing"

	"github.com/matzehuels/imgfilter/pkg/grid"
)

func TestApply3x3UsesBorderPolicy(t *testing.T) {
	// A kernel that picks the up-left neighbour exposes the padded copy.
	pick := Kernel{{1, 0, 0}, {0, 0, 0}, {0, 0, 0}}

	g := grid.New(3, 2)
	g.Set(0, 0, grid.Gray(10))
	g.Set(0, 1, grid.Gray(20))
	g.Set(0, 2, grid.Gray(30))
	g.Set(1, 0, grid.Gray(40))
	g.Set(1, 1, grid.Gray(50))
	g.Set(1, 2, grid.Gray(60))

	if err := Apply3x3(g, pick); err != nil {
		t.Fatalf("Apply3x3: %v", err)
	}

	want := [][]grid.Pixel{
		{grid.Black, grid.Gray(10), grid.Gray(20)}, // top padded row has a black corner
		{grid.Gray(10), grid.Gray(10), grid.Gray(20)},
	}
	for i := range want {
		for j := range want[i] {
			if g.At(i, j) != want[i][j] {
				t.Errorf("(%d,%d) = %v, want %v", i, j, g.At(i, j), want[i][j])
			}
		}
	}
}

func TestApply3x3ClampsAndRounds(t *testing.T) {
	g := grid.Filled(2, 2, grid.Gray(100))
	if err := Apply3x3(g, Kernel{{0, 0, 0}, {0, 3, 0}, {0, 0, 0}}); err != nil {
		t.Fatal(err)
	}
	assertUniform(t, g, grid.Gray(255))

	g = grid.Filled(2, 2, grid.Gray(100))
	if err := Apply3x3(g, Kernel{{0, 0, 0}, {0, -1, 0}, {0, 0, 0}}); err != nil {
		t.Fatal(err)
	}
	assertUniform(t, g, grid.Gray(0))

	g = grid.Filled(2, 2, grid.Gray(3))
	if err := Apply3x3(g, Kernel{{0, 0, 0}, {0, 0.5, 0}, {0, 0, 0}}); err != nil {
		t.Fatal(err)
	}
	assertUniform(t, g, grid.Gray(2)) // 1.5 rounds up
}

func TestApply3x3ReadsSnapshot(t *testing.T) {
	// Shifting right by one must use original values, not already-written ones.
	shift := Kernel{{0, 0, 0}, {1, 0, 0}, {0, 0, 0}}
	g, _ := grid.FromRows([][]grid.Pixel{{grid.Gray(1), grid.Gray(2), grid.Gray(3), grid.Gray(4)}})
	if err := Apply3x3(g, shift); err != nil {
		t.Fatal(err)
	}
	want := []grid.Pixel{grid.Gray(1), grid.Gray(1), grid.Gray(2), grid.Gray(3)}
	for j, p := range g.Rows[0] {
		if p != want[j] {
			t.Errorf("col %d = %v, want %v", j, p, want[j])
		}
	}
}

func TestApply3x3LargeGridMatchesSmallBands(t *testing.T) {
	g := randomGrid(70, 300, 1)
	want := g.Clone()
	padded, _ := Extend(want)
	for i := range want.Height {
		for j := range want.Width {
			var r float64
			for fi := range 3 {
				for fj := range 3 {
					r += SharpenKernel[fi][fj] * float64(padded.At(i+fi, j+fj).R)
				}
			}
			want.Rows[i][j].R = grid.ClampRound(r)
		}
	}

	if err := (Sharpen{}).Apply(g); err != nil {
		t.Fatal(err)
	}
	for i := range g.Height {
		for j := range g.Width {
			if g.At(i, j).R != want.At(i, j).R {
				t.Fatalf("(%d,%d).R = %d, want %d", i, j, g.At(i, j).R, want.At(i, j).R)
			}
		}
	}
}

func TestSharpenUniform(t *testing.T) {
	g := grid.Filled(4, 4, grid.Pixel{R: 10, G: 128, B: 250})
	if err := (Sharpen{}).Apply(g); err != nil {
		t.Fatal(err)
	}
	assertUniform(t, g, grid.Pixel{R: 10, G: 128, B: 250})
}

func TestEdgeDetect(t *testing.T) {
	t.Run("uniform image has no edges", func(t *testing.T) {
		g := grid.Filled(4, 4, grid.Gray(200))
		if err := (EdgeDetect{Threshold: 0}).Apply(g); err != nil {
			t.Fatal(err)
		}
		assertUniform(t, g, grid.Black)
	})

	t.Run("bright dot", func(t *testing.T) {
		g := grid.Filled(5, 5, grid.Black)
		g.Set(2, 2, grid.White)
		if err := (EdgeDetect{Threshold: 0.5}).Apply(g); err != nil {
			t.Fatal(err)
		}
		if g.At(2, 2) != grid.White {
			t.Errorf("centre = %v, want white", g.At(2, 2))
		}
		if g.At(0, 0) != grid.Black || g.At(2, 1) != grid.Black {
			t.Error("neighbours should be black (negative response clamps to 0)")
		}
	})

	t.Run("output is binary", func(t *testing.T) {
		g := randomGrid(16, 16, 7)
		if err := (EdgeDetect{Threshold: 0.2}).Apply(g); err != nil {
			t.Fatal(err)
		}
		for _, row := range g.Rows {
			for _, p := range row {
				if p != grid.Black && p != grid.White {
					t.Fatalf("pixel %v is neither black nor white", p)
				}
			}
		}
	})

	t.Run("empty image", func(t *testing.T) {
		if err := (EdgeDetect{Threshold: 0.5}).Apply(grid.New(0, 0)); err == nil {
			t.Error("expected precondition error on empty image")
		}
	})
}

package mvbb

import (
	"math/rand/v2"
	"testing"

	"github.com/philipparndt/approxmvbb/pkg/geometry"
)

func TestSampleSmallInputUnchanged(t *testing.T) {
	points := []geometry.Vector3{{X: 1}, {Y: 2}, {Z: 3}}
	got := Sample(points, 10, 1)
	if len(got) != len(points) {
		t.Fatalf("Sample failed: expected %d points, got %d", len(points), len(got))
	}
	for i := range points {
		if got[i] != points[i] {
			t.Errorf("Sample failed: point %d changed from %v to %v", i, points[i], got[i])
		}
	}
}

func TestSampleSize(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	points := cube(rng, 5000, geometry.NewVector3(10, 5, 1))

	for _, n := range []int{1, 2, 7, 50, 400, 4999} {
		got := Sample(points, n, 42)
		if len(got) != n {
			t.Errorf("Sample(%d) failed: expected %d points, got %d", n, n, len(got))
		}
		seen := make(map[geometry.Vector3]bool)
		for _, p := range got {
			if seen[p] {
				t.Errorf("Sample(%d) failed: duplicate point %v", n, p)
			}
			seen[p] = true
		}
	}
}

func TestSampleKeepsExtremes(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	points := cube(rng, 3000, geometry.NewVector3(3, 2, 1))
	bounds := geometry.BoundsOf(points)

	got := geometry.BoundsOf(Sample(points, 64, 7))
	if got != bounds {
		t.Errorf("Sample failed: expected bounds %v, got %v", bounds, got)
	}
}

func TestSampleTwoKeepsDistinctPoints(t *testing.T) {
	points := make([]geometry.Vector3, 100)
	for i := range points {
		points[i] = geometry.NewVector3(0, float64(i), 0)
	}
	got := Sample(points, 2, 1)
	if len(got) != 2 || got[0] == got[1] {
		t.Errorf("Sample failed: expected two distinct points, got %v", got)
	}
}

func TestSampleDeterministic(t *testing.T) {
	rng := rand.New(rand.NewPCG(8, 9))
	points := cube(rng, 2000, geometry.NewVector3(1, 1, 1))

	a := Sample(points, 100, 11)
	b := Sample(points, 100, 11)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("Sample failed: runs differ at %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestCellIndex(t *testing.T) {
	tests := []struct {
		x, lo, size float64
		g           int
		want        int
	}{
		{0, 0, 1, 4, 0},
		{0.26, 0, 1, 4, 1},
		{1, 0, 1, 4, 3},
		{5, 5, 0, 4, 0},
		{-1, 0, 1, 4, 0},
	}
	for _, tt := range tests {
		if got := cellIndex(tt.x, tt.lo, tt.size, tt.g); got != tt.want {
			t.Errorf("cellIndex(%v, %v, %v, %d) failed: expected %d, got %d", tt.x, tt.lo, tt.size, tt.g, tt.want, got)
		}
	}
}

// cube returns n uniform points in [0, size] plus its eight corners
func cube(rng *rand.Rand, n int, size geometry.Vector3) []geometry.Vector3 {
	points := make([]geometry.Vector3, 0, n+8)
	for i := 0; i < 8; i++ {
		c := geometry.Vector3{}
		if i&1 != 0 {
			c.X = size.X
		}
		if i&2 != 0 {
			c.Y = size.Y
		}
		if i&4 != 0 {
			c.Z = size.Z
		}
		points = append(points, c)
	}
	for i := 0; i < n; i++ {
		points = append(points, geometry.NewVector3(rng.Float64()*size.X, rng.Float64()*size.Y, rng.Float64()*size.Z))
	}
	return points
}

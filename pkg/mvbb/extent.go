package mvbb

import "github.com/philipparndt/approxmvbb/pkg/geometry"

// Extent returns the tight box of the points in the given frame. Large
// inputs are reduced in parallel; the result does not depend on workers.
func Extent(points []geometry.Vector3, frame geometry.Frame, workers int) geometry.OOBB {
	parts := make([]geometry.OOBB, max(workers, 1))
	filled := make([]bool, len(parts))
	chunks := chunked(len(points), workers, func(c, lo, hi int) {
		box := geometry.NewOOBB(frame)
		box.UnitePoints(points[lo:hi])
		parts[c], filled[c] = box, true
	})

	box := geometry.NewOOBB(frame)
	for c := 0; c < chunks; c++ {
		if !filled[c] || parts[c].IsEmpty() {
			continue
		}
		box.UniteLocal(parts[c].Min)
		box.UniteLocal(parts[c].Max)
	}
	return box
}

// SmallestBox fits every frame to all points and returns the smallest box
// with the index of its frame. Boxes of volume within 1e-12·diagonal³ count
// as flat; they rank below every other box and among themselves by surface
// area. The ranking is a total order, so adding frames never yields a larger
// box. Repeated frames are fitted once; the first of equal boxes wins.
func SmallestBox(points []geometry.Vector3, frames []geometry.Frame, workers int) (geometry.OOBB, int) {
	scale := geometry.BoundsOf(points).Diagonal()
	flatTol := 1e-12 * scale * scale * scale
	smaller := func(a, b geometry.OOBB) bool {
		va, vb := a.Volume(), b.Volume()
		if va > flatTol || vb > flatTol {
			return va < vb
		}
		return a.SurfaceArea() < b.SurfaceArea()
	}

	best, picked := geometry.OOBB{}, -1
	seen := make(map[geometry.Frame]bool, len(frames))
	for i, f := range frames {
		if seen[f] {
			continue
		}
		seen[f] = true
		box := Extent(points, f, workers)
		if picked < 0 || smaller(box, best) {
			best, picked = box, i
		}
	}
	return best, picked
}

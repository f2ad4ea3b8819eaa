package mvbb

import (
	"github.com/golang/geo/r2"

	"github.com/philipparndt/approxmvbb/pkg/geometry"
)

// BuildFrame returns a frame whose Z axis is primary. The points are
// projected onto the plane orthogonal to primary and the approximate
// diameter of the projection becomes the X axis. When the projection is
// smaller than tol the X axis falls back to an arbitrary orthogonal
// direction and degenerate is true.
func BuildFrame(points []geometry.Vector3, primary geometry.Vector3, tol float64, workers int) (frame geometry.Frame, degenerate bool) {
	z := primary.Normalize()
	e1, e2 := z.Orthonormal()
	if len(points) == 0 {
		return geometry.FrameFromZ(z, e1), true
	}

	proj := project(points, e1, e2)
	a, b, d2 := farthestPair(len(proj), 0, 0, 0, workers, func(i, j int) float64 {
		d := proj[i].Sub(proj[j])
		return d.Dot(d)
	})
	if d2 <= tol*tol {
		return geometry.FrameFromZ(z, e1), true
	}

	s := proj[b].Sub(proj[a]).Normalize()
	return geometry.FrameFromZ(z, e1.Mul(s.X).Add(e2.Mul(s.Y))), false
}

// project maps points into the plane spanned by e1 and e2
func project(points []geometry.Vector3, e1, e2 geometry.Vector3) []r2.Point {
	out := make([]r2.Point, len(points))
	for i, p := range points {
		out[i] = r2.Point{X: p.Dot(e1), Y: p.Dot(e2)}
	}
	return out
}

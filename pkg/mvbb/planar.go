package mvbb

import (
	"math"

	"github.com/philipparndt/approxmvbb/pkg/geometry"
	"github.com/philipparndt/approxmvbb/pkg/hull"
)

// candidate is an orientation together with the box it yields on the sample
type candidate struct {
	frame geometry.Frame
	box   geometry.OOBB
}

func (c candidate) volume() float64 {
	return c.box.Volume()
}

// scorer evaluates orientations against the sample. Volumes that agree
// within volTol count as equal and are ranked by surface area, which keeps
// the search meaningful for planar inputs.
type scorer struct {
	sample  []geometry.Vector3
	volTol  float64
	areaTol float64
	workers int
}

func newScorer(sample []geometry.Vector3, scale float64, workers int) *scorer {
	return &scorer{
		sample:  sample,
		volTol:  1e-12 * scale * scale * scale,
		areaTol: 1e-12 * scale * scale,
		workers: workers,
	}
}

// score computes the sample box for a fixed frame
func (s *scorer) score(frame geometry.Frame) candidate {
	box := geometry.NewOOBB(frame)
	box.UnitePoints(s.sample)
	return candidate{frame: frame, box: box}
}

// fitAround fixes the normal as Z and chooses X and Y as the axes of the
// minimum-area rectangle enclosing the projected sample.
func (s *scorer) fitAround(normal geometry.Vector3) candidate {
	z := normal.Normalize()
	e1, e2 := z.Orthonormal()
	rect := hull.MinAreaRectangle(hull.Compute(project(s.sample, e1, e2)))
	x := e1.Mul(rect.U.X).Add(e2.Mul(rect.U.Y))
	return s.score(geometry.FrameFromZ(z, x))
}

// better reports whether a is a strictly smaller box than b
func (s *scorer) better(a, b candidate) bool {
	va, vb := a.volume(), b.volume()
	if va < vb-s.volTol {
		return true
	}
	if va > vb+s.volTol {
		return false
	}
	return a.box.SurfaceArea() < b.box.SurfaceArea()-s.areaTol
}

// relativeGain is the fraction of prev's volume removed by next. It is
// infinite when prev has no volume, so improvements of planar boxes, which
// only shrink the surface area, never end a loop early.
func (s *scorer) relativeGain(prev, next candidate) float64 {
	vp := prev.volume()
	if vp <= s.volTol {
		return math.Inf(1)
	}
	return (vp - next.volume()) / vp
}

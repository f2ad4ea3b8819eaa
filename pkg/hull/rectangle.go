package hull

import (
	"math"

	"github.com/golang/geo/r2"
)

// Rectangle is an oriented rectangle. U is a unit axis, V = U.Ortho(), and
// Bounds holds the extents in (U, V) coordinates.
type Rectangle struct {
	U      r2.Point
	V      r2.Point
	Bounds r2.Rect
	Area   float64
}

// Angle returns the rotation of U against the X axis in radians
func (r Rectangle) Angle() float64 {
	return math.Atan2(r.U.Y, r.U.X)
}

// Corners returns the four corners counter-clockwise in world coordinates
func (r Rectangle) Corners() [4]r2.Point {
	lo, hi := r.Bounds.Lo(), r.Bounds.Hi()
	at := func(u, v float64) r2.Point {
		return r.U.Mul(u).Add(r.V.Mul(v))
	}
	return [4]r2.Point{at(lo.X, lo.Y), at(hi.X, lo.Y), at(hi.X, hi.Y), at(lo.X, hi.Y)}
}

// Local maps a point into (U, V) coordinates
func (r Rectangle) Local(p r2.Point) r2.Point {
	return r2.Point{X: p.Dot(r.U), Y: p.Dot(r.V)}
}

// MinAreaRectangle returns the smallest rectangle enclosing the hull. One
// side of the optimum is collinear with a hull edge, so only edge directions
// are tested; three caliper indices advance monotonically which keeps the
// sweep linear in the number of hull vertices. The first edge wins ties.
func MinAreaRectangle(h Hull) Rectangle {
	switch len(h) {
	case 0:
		return Rectangle{U: r2.Point{X: 1}, V: r2.Point{Y: 1}, Bounds: r2.EmptyRect()}
	case 1:
		return fitAxis(h, r2.Point{X: 1})
	case 2:
		u := h[1].Sub(h[0])
		if u.Norm() == 0 {
			return fitAxis(h, r2.Point{X: 1})
		}
		return fitAxis(h, u.Normalize())
	}

	n := len(h)
	next := func(i int) int { return (i + 1) % n }

	best := Rectangle{Area: math.Inf(1)}
	j, k, m := 1, 1, 1
	for i := 0; i < n; i++ {
		edge := h[next(i)].Sub(h[i])
		if edge.Norm() == 0 {
			continue
		}
		u := edge.Normalize()
		v := u.Ortho()

		if i == 0 {
			j = next(i)
		}
		for steps := 0; steps < n && h[next(j)].Dot(u) >= h[j].Dot(u); steps++ {
			j = next(j)
		}
		if i == 0 {
			k = j
		}
		for steps := 0; steps < n && h[next(k)].Dot(v) >= h[k].Dot(v); steps++ {
			k = next(k)
		}
		if i == 0 {
			m = k
		}
		for steps := 0; steps < n && h[next(m)].Dot(u) <= h[m].Dot(u); steps++ {
			m = next(m)
		}

		lo := r2.Point{X: h[m].Dot(u), Y: h[i].Dot(v)}
		hi := r2.Point{X: h[j].Dot(u), Y: h[k].Dot(v)}
		area := (hi.X - lo.X) * (hi.Y - lo.Y)
		if area < best.Area {
			best = Rectangle{U: u, V: v, Bounds: r2.RectFromPoints(lo, hi), Area: area}
		}
	}

	if math.IsInf(best.Area, 1) {
		return fitAxis(h, r2.Point{X: 1})
	}
	// caliper extremes are exact for convex input; refit guards against
	// vertices the tolerance-based hull left marginally outside
	return fitAxis(h, best.U)
}

// fitAxis returns the bounding rectangle of the points aligned with u
func fitAxis(points []r2.Point, u r2.Point) Rectangle {
	r := Rectangle{U: u, V: u.Ortho(), Bounds: r2.EmptyRect()}
	for _, p := range points {
		r.Bounds = r.Bounds.AddPoint(r.Local(p))
	}
	size := r.Bounds.Size()
	r.Area = size.X * size.Y
	return r
}

// Package hull builds planar convex hulls and the minimum-area rectangles
// enclosing them.
package hull

import (
	"math"
	"sort"

	"github.com/golang/geo/r2"
)

// relativeTolerance scales the collinearity test by the squared size of
// the input so hulls of tiny and huge point sets behave the same.
const relativeTolerance = 1e-12

// Hull is a convex polygon in counter-clockwise order. Empty, one-vertex and
// two-vertex hulls represent empty, point and segment inputs.
type Hull []r2.Point

// Compute returns the convex hull of the points using the monotone chain
// algorithm. The first vertex is the one with the lowest X (then lowest Y);
// collinear vertices are dropped. The input slice is not modified.
func Compute(points []r2.Point) Hull {
	if len(points) == 0 {
		return nil
	}

	sorted := make([]r2.Point, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y < sorted[j].Y
	})
	sorted = dedupe(sorted)

	if len(sorted) < 3 {
		return Hull(sorted)
	}

	tol := relativeTolerance * squaredSpan(sorted)

	lower := make([]r2.Point, 0, len(sorted))
	for _, p := range sorted {
		for len(lower) >= 2 && turn(lower[len(lower)-2], lower[len(lower)-1], p) <= tol {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}

	upper := make([]r2.Point, 0, len(sorted))
	for i := len(sorted) - 1; i >= 0; i-- {
		p := sorted[i]
		for len(upper) >= 2 && turn(upper[len(upper)-2], upper[len(upper)-1], p) <= tol {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	h := append(lower[:len(lower)-1], upper[:len(upper)-1]...)
	if len(h) < 3 {
		// all points on a line: keep the two extremes
		return Hull{sorted[0], sorted[len(sorted)-1]}
	}
	return h
}

// Area returns the enclosed area (zero for degenerate hulls)
func (h Hull) Area() float64 {
	if len(h) < 3 {
		return 0
	}
	var sum float64
	for i := range h {
		j := (i + 1) % len(h)
		sum += h[i].Cross(h[j])
	}
	return sum / 2
}

// Contains reports whether p lies inside or on the hull within tol
func (h Hull) Contains(p r2.Point, tol float64) bool {
	switch len(h) {
	case 0:
		return false
	case 1:
		return h[0].Sub(p).Norm() <= tol
	case 2:
		d := h[1].Sub(h[0])
		length := d.Norm()
		t := p.Sub(h[0]).Dot(d) / (length * length)
		if t < -tol/length || t > 1+tol/length {
			return false
		}
		return math.Abs(d.Cross(p.Sub(h[0])))/length <= tol
	}
	for i := range h {
		a, b := h[i], h[(i+1)%len(h)]
		edge := b.Sub(a)
		if edge.Cross(p.Sub(a)) < -tol*edge.Norm() {
			return false
		}
	}
	return true
}

// turn is positive for a counter-clockwise turn a -> b -> c
func turn(a, b, c r2.Point) float64 {
	return b.Sub(a).Cross(c.Sub(a))
}

func dedupe(sorted []r2.Point) []r2.Point {
	out := sorted[:0]
	for i, p := range sorted {
		if i > 0 && p == out[len(out)-1] {
			continue
		}
		out = append(out, p)
	}
	return out
}

func squaredSpan(points []r2.Point) float64 {
	rect := r2.RectFromPoints(points...)
	size := rect.Size()
	return size.X*size.X + size.Y*size.Y
}

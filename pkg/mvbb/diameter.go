package mvbb

import (
	"math"

	"github.com/philipparndt/approxmvbb/pkg/geometry"
)

// Diameter is an approximate farthest pair, given as indices into the point
// slice it was estimated on.
type Diameter struct {
	P, Q   int
	Length float64
}

// Direction returns the unit vector from P to Q
func (d Diameter) Direction(points []geometry.Vector3) geometry.Vector3 {
	return points[d.Q].Sub(points[d.P]).Normalize()
}

// EstimateDiameter approximates the farthest pair of points by repeated
// farthest-point scans: from start to its farthest point q, then from q to
// its farthest point r. Up to passes further scans continue while the pair
// grows by more than the relative amount eps. The result is at least half
// the true diameter. Ties go to the lowest index.
func EstimateDiameter(points []geometry.Vector3, start, passes int, eps float64, workers int) (Diameter, error) {
	if len(points) == 0 {
		return Diameter{}, degenerateInputf("no points")
	}
	if start < 0 || start >= len(points) {
		return Diameter{}, invalidParameterf("start index %d out of range [0, %d)", start, len(points))
	}

	p, q, d2 := farthestPair(len(points), start, passes, eps, workers, func(i, j int) float64 {
		return points[i].DistanceSquared(points[j])
	})
	if d2 == 0 {
		return Diameter{}, degenerateInputf("all %d points coincide", len(points))
	}
	return Diameter{P: p, Q: q, Length: math.Sqrt(d2)}, nil
}

// farthestPair runs the scans on any point type through its squared
// distance function and returns the pair and its squared distance.
func farthestPair(n, start, passes int, eps float64, workers int, dist2 func(i, j int) float64) (int, int, float64) {
	a := start
	b, d := argMax(n, workers, func(i int) float64 { return dist2(a, i) })

	grow := (1 + eps) * (1 + eps)
	for pass := 0; pass <= passes; pass++ {
		from := b
		c, dc := argMax(n, workers, func(i int) float64 { return dist2(from, i) })
		improved := dc > d*grow
		if dc > d {
			a, b, d = b, c, dc
		}
		if !improved {
			break
		}
	}
	return a, b, d
}

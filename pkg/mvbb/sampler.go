package mvbb

import (
	"math"
	"math/rand/v2"
	"sort"

	"github.com/philipparndt/approxmvbb/pkg/geometry"
)

// samplerStream separates the sampler's random stream from the one that
// picks the diameter start point.
const samplerStream = 0x5a3d

// Sample returns at most n points of the input that preserve the outline of
// the point set. The bounding box is divided into a g×g grid over its two
// widest axes, g = ⌊√(n/2)⌋, and every cell contributes its lowest and
// highest point along the remaining axis. The six axis-extremal points are
// always included. Missing slots are filled with random distinct points,
// excess cell picks are dropped at random; both use seed.
//
// The input is returned unchanged when it has at most n points.
func Sample(points []geometry.Vector3, n int, seed uint64) []geometry.Vector3 {
	if n <= 0 {
		return nil
	}
	if len(points) <= n {
		return points
	}

	bounds := geometry.BoundsOf(points)
	size := bounds.Size()

	axes := []int{0, 1, 2}
	sort.SliceStable(axes, func(i, j int) bool {
		return size.Get(axes[i]) > size.Get(axes[j])
	})
	u, v, w := axes[0], axes[1], axes[2]

	g := max(int(math.Sqrt(float64(n)/2)), 1)
	type cell struct{ lo, hi int }
	cells := make([]cell, g*g)
	for i := range cells {
		cells[i] = cell{lo: -1, hi: -1}
	}
	var minIdx, maxIdx [3]int

	for i, p := range points {
		cu := cellIndex(p.Get(u), bounds.Min.Get(u), size.Get(u), g)
		cv := cellIndex(p.Get(v), bounds.Min.Get(v), size.Get(v), g)
		c := &cells[cu*g+cv]
		if c.lo < 0 || p.Get(w) < points[c.lo].Get(w) {
			c.lo = i
		}
		if c.hi < 0 || p.Get(w) > points[c.hi].Get(w) {
			c.hi = i
		}
		for axis := 0; axis < 3; axis++ {
			if p.Get(axis) < points[minIdx[axis]].Get(axis) {
				minIdx[axis] = i
			}
			if p.Get(axis) > points[maxIdx[axis]].Get(axis) {
				maxIdx[axis] = i
			}
		}
	}

	picked := make(map[int]struct{}, n)
	order := make([]int, 0, n+2*len(cells)+6)
	add := func(i int) {
		if _, ok := picked[i]; ok {
			return
		}
		picked[i] = struct{}{}
		order = append(order, i)
	}

	// widest axis first so that even n = 2 keeps two distinct points
	for _, axis := range axes {
		add(minIdx[axis])
		add(maxIdx[axis])
	}
	extremes := len(order)
	for _, c := range cells {
		if c.lo >= 0 {
			add(c.lo)
			add(c.hi)
		}
	}

	rng := rand.New(rand.NewPCG(seed, samplerStream))
	if len(order) > n {
		rest := order[min(extremes, n):]
		rng.Shuffle(len(rest), func(i, j int) {
			rest[i], rest[j] = rest[j], rest[i]
		})
		order = order[:n]
	}
	for len(order) < n {
		add(rng.IntN(len(points)))
	}

	sample := make([]geometry.Vector3, len(order))
	for k, i := range order {
		sample[k] = points[i]
	}
	return sample
}

func cellIndex(x, lo, size float64, g int) int {
	if size <= 0 {
		return 0
	}
	c := int((x - lo) / size * float64(g))
	return min(max(c, 0), g-1)
}

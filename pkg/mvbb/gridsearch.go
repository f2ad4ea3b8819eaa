package mvbb

import (
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/sync/errgroup"

	"github.com/philipparndt/approxmvbb/pkg/geometry"
)

// initialSpread is the half-angle covered by the first grid search loop
const initialSpread = math.Pi / 4

// gridSearch tilts each axis of the best frame over a gridSize×gridSize
// grid of small rotations about the two other axes and refits the planar
// rectangle around every tilted normal. The grid shrinks every loop so that
// successive loops refine around the current best. A loop that improves by
// less than eps ends the search.
//
// The returned trail starts with start and holds the new best after every
// improving loop, so the trail of n loops is a prefix of the trail of n+1.
func (s *scorer) gridSearch(start candidate, gridSize, loops int, eps float64, log *slog.Logger) []candidate {
	trail := []candidate{start}
	best := start
	spread := initialSpread
	shrink := 0.5
	if gridSize > 1 {
		shrink = math.Min(0.5, 2/float64(gridSize-1))
	}

	for loop := 0; loop < loops; loop++ {
		prev := best
		normals := tiltedNormals(best.frame, gridOffsets(gridSize, spread))

		results := make([]candidate, len(normals))
		var g errgroup.Group
		g.SetLimit(max(s.workers, 1))
		for i, n := range normals {
			g.Go(func() error {
				results[i] = s.fitAround(n)
				return nil
			})
		}
		_ = g.Wait()

		// sequential fold: the lowest index wins ties
		for _, c := range results {
			if s.better(c, best) {
				best = c
			}
		}

		log.Debug("grid search loop", "loop", loop, "spread", spread, "candidates", len(normals), "volume", best.volume())
		if s.better(best, prev) {
			trail = append(trail, best)
			if s.relativeGain(prev, best) < eps {
				break
			}
		}
		spread *= shrink
	}
	return trail
}

// gridOffsets returns n angles evenly spaced in [-spread, spread]
func gridOffsets(n int, spread float64) []float64 {
	if n == 1 {
		return []float64{0}
	}
	out := make([]float64, n)
	step := 2 * spread / float64(n-1)
	for i := range out {
		out[i] = -spread + float64(i)*step
	}
	return out
}

// tiltedNormals rotates every frame axis about the two other axes by each
// pair of offsets.
func tiltedNormals(frame geometry.Frame, offsets []float64) []geometry.Vector3 {
	normals := make([]geometry.Vector3, 0, 3*len(offsets)*len(offsets))
	for axis := 0; axis < 3; axis++ {
		n := frame.Axis(axis).Vec3()
		a1 := frame.Axis((axis + 1) % 3).Vec3()
		a2 := frame.Axis((axis + 2) % 3).Vec3()
		for _, a := range offsets {
			for _, b := range offsets {
				q := mgl64.QuatRotate(a, a1).Mul(mgl64.QuatRotate(b, a2))
				normals = append(normals, geometry.FromVec3(q.Rotate(n)).Normalize())
			}
		}
	}
	return normals
}

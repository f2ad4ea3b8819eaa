package mvbb

import (
	"log/slog"

	"github.com/philipparndt/approxmvbb/pkg/geometry"
)

// optimizeDiameter improves the start candidate by refitting the planar
// rectangle around each axis of the current best box and around a fresh
// diameter estimate started from the point most extreme along its longest
// axis. Every loop that improves the box appends a stage; the loop stops
// early when a loop does not improve or gains less than eps.
func (s *scorer) optimizeDiameter(start candidate, loops, passes int, eps float64, log *slog.Logger) []candidate {
	stages := []candidate{start}
	best := start

	for loop := 0; loop < loops; loop++ {
		prev := best
		for axis := 0; axis < 3; axis++ {
			if c := s.fitAround(best.frame.Axis(axis)); s.better(c, best) {
				best = c
			}
		}

		longest := longestAxis(best.box.Extent())
		dir := best.frame.Axis(longest)
		from, _ := argMax(len(s.sample), 1, func(i int) float64 { return s.sample[i].Dot(dir) })
		if d, err := EstimateDiameter(s.sample, from, passes, eps, s.workers); err == nil {
			if c := s.fitAround(d.Direction(s.sample)); s.better(c, best) {
				best = c
			}
		}

		if !s.better(best, prev) {
			log.Debug("diameter loop converged", "loop", loop, "volume", best.volume())
			break
		}
		stages = append(stages, best)
		log.Debug("diameter loop improved", "loop", loop, "volume", best.volume())
		if s.relativeGain(prev, best) < eps {
			break
		}
	}
	return stages
}

func longestAxis(e geometry.Vector3) int {
	axis := 0
	for i := 1; i < 3; i++ {
		if e.Get(i) > e.Get(axis) {
			axis = i
		}
	}
	return axis
}

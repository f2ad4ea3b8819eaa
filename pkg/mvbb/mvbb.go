// Package mvbb approximates the minimum-volume oriented bounding box of a
// 3D point set. The orientation is searched on a small representative
// sample: an approximate diameter fixes a first axis, planar minimum-area
// rectangles fix the other two, and a shrinking grid of rotations refines
// the best frame. The final box is fitted to every input point.
package mvbb

import (
	"math/rand/v2"

	"github.com/philipparndt/approxmvbb/pkg/geometry"
)

// startStream seeds the choice of the diameter start point
const startStream = 0x77d1

// minSampleSize is the smallest sample that can span a direction
const minSampleSize = 2

// Result is the outcome of Compute
type Result struct {
	Box geometry.OOBB
	// Warnings lists non-fatal conditions met on the way
	Warnings []Warning
	// Sample holds the points the orientation was searched on
	Sample []geometry.Vector3
	// SampleSize is len(Sample)
	SampleSize int
	// Stages counts the frames produced by the diameter loop, including
	// the initial one
	Stages int
}

// Compute returns an approximate minimum-volume box containing every point.
// The same points and options always yield the same box, independent of
// the number of workers.
func Compute(points []geometry.Vector3, opts Options) (Result, error) {
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}
	if err := validatePoints(points); err != nil {
		return Result{}, err
	}

	log := opts.logger()
	workers := opts.workers()
	var warnings []Warning
	warn := func(msg string, args ...any) {
		w := Warning{Kind: NumericInstability, Message: msg}
		warnings = append(warnings, w)
		log.Warn(msg, args...)
	}

	sample := Sample(points, max(opts.SampleSize, minSampleSize), opts.Seed)
	bounds := geometry.BoundsOf(sample)
	scale := bounds.Diagonal()
	s := newScorer(sample, scale, workers)
	log.Debug("sampled points", "points", len(points), "sample", len(sample))

	rng := rand.New(rand.NewPCG(opts.Seed, startStream))
	diam, err := EstimateDiameter(sample, rng.IntN(len(sample)), opts.DiameterPasses, opts.Eps, workers)
	if err != nil {
		return Result{}, err
	}
	if magnitude := bounds.Center().Length(); diam.Length < 1e-9*magnitude {
		warn("extremal points nearly coincide relative to their distance from the origin",
			"diameter", diam.Length, "magnitude", magnitude)
	}

	frame, degenerate := BuildFrame(sample, diam.Direction(sample), 1e-12*diam.Length, workers)
	if degenerate {
		warn("points are collinear; secondary axis chosen arbitrarily", "diameter", diam.Length)
	}
	log.Debug("initial frame", "diameter", diam.Length, "p", diam.P, "q", diam.Q)

	start := s.score(frame)
	seeds := []func() candidate{
		func() candidate { return s.fitAround(frame.Axis(2)) },
	}
	if opts.PCASeed {
		if pf, ok := principalFrame(sample); ok {
			seeds = append(seeds,
				func() candidate { return s.score(pf) },
				func() candidate { return s.fitAround(pf.Axis(2)) },
			)
		}
	}
	for _, seed := range seeds {
		if c := seed(); s.better(c, start) {
			start = c
		}
	}

	stages := s.optimizeDiameter(start, opts.DiameterLoops, opts.DiameterPasses, opts.Eps, log)

	// every stage seeds its own grid search. The sample only ranks
	// orientations; the box is chosen among all of them against every point
	var trail []candidate
	for _, stage := range stages {
		c := stage
		if refit := s.fitAround(stage.frame.Axis(2)); s.better(refit, c) {
			c = refit
		}
		trail = append(trail, s.gridSearch(c, opts.GridSize, opts.GridSearchLoops, opts.Eps, log)...)
	}

	frames := make([]geometry.Frame, len(trail))
	for i, c := range trail {
		frames[i] = c.frame
	}
	box, picked := SmallestBox(points, frames, workers)
	log.Debug("computed box", "volume", box.Volume(), "extent", box.Extent(),
		"stages", len(stages), "candidates", len(frames), "picked", picked)

	return Result{
		Box:        box,
		Warnings:   warnings,
		Sample:     sample,
		SampleSize: len(sample),
		Stages:     len(stages),
	}, nil
}

// ApproximateMVBB is Compute with explicit parameters and defaults for the
// rest.
func ApproximateMVBB(points []geometry.Vector3, eps float64, sampleSize, gridSize, diameterLoops, gridSearchLoops int) (geometry.OOBB, error) {
	opts := DefaultOptions()
	opts.Eps = eps
	opts.SampleSize = sampleSize
	opts.GridSize = gridSize
	opts.DiameterLoops = diameterLoops
	opts.GridSearchLoops = gridSearchLoops

	res, err := Compute(points, opts)
	if err != nil {
		return geometry.OOBB{}, err
	}
	return res.Box, nil
}

func validatePoints(points []geometry.Vector3) error {
	if len(points) == 0 {
		return degenerateInputf("no points")
	}
	distinct := false
	for i, p := range points {
		if !p.IsFinite() {
			return degenerateInputf("point %d has a non-finite coordinate: %v", i, p)
		}
		if p != points[0] {
			distinct = true
		}
	}
	if !distinct {
		return degenerateInputf("all %d points coincide", len(points))
	}
	return nil
}

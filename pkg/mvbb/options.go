package mvbb

import (
	"log/slog"
	"math"
	"runtime"
)

// Options are the tuning parameters of the approximation. Larger sample
// sizes, grids and loop counts give smaller boxes at a higher cost.
type Options struct {
	// Eps is the relative volume gain below which refinement loops stop
	// early; it also bounds the diameter estimator's pass-to-pass growth.
	Eps float64
	// SampleSize is the number of points the orientation search works on.
	SampleSize int
	// GridSize is the number of angular offsets per tilt dimension.
	GridSize int
	// DiameterLoops bounds the diameter optimization loop.
	DiameterLoops int
	// GridSearchLoops bounds the multi-resolution grid search.
	GridSearchLoops int
	// DiameterPasses is the number of extra farthest-point passes after
	// the mandatory two.
	DiameterPasses int
	// Seed makes sampling and the diameter start point reproducible.
	Seed uint64
	// Parallelism caps worker goroutines; 0 uses GOMAXPROCS, 1 is sequential.
	Parallelism int
	// PCASeed adds the covariance eigenframe as an initial candidate.
	PCASeed bool
	// Logger receives stage results at debug level; nil discards.
	Logger *slog.Logger
}

// DefaultOptions returns the parameters used by the reference test suite
func DefaultOptions() Options {
	return Options{
		Eps:             0.001,
		SampleSize:      400,
		GridSize:        5,
		DiameterLoops:   2,
		GridSearchLoops: 10,
		DiameterPasses:  3,
		PCASeed:         true,
	}
}

// Validate checks every parameter against its domain
func (o Options) Validate() error {
	switch {
	case math.IsNaN(o.Eps) || math.IsInf(o.Eps, 0) || o.Eps <= 0:
		return invalidParameterf("eps must be a positive finite number, got %v", o.Eps)
	case o.SampleSize <= 0:
		return invalidParameterf("sample size must be positive, got %d", o.SampleSize)
	case o.GridSize <= 0:
		return invalidParameterf("grid size must be positive, got %d", o.GridSize)
	case o.DiameterLoops < 0:
		return invalidParameterf("diameter loops must not be negative, got %d", o.DiameterLoops)
	case o.GridSearchLoops < 0:
		return invalidParameterf("grid search loops must not be negative, got %d", o.GridSearchLoops)
	case o.DiameterPasses < 0:
		return invalidParameterf("diameter passes must not be negative, got %d", o.DiameterPasses)
	case o.Parallelism < 0:
		return invalidParameterf("parallelism must not be negative, got %d", o.Parallelism)
	}
	return nil
}

func (o Options) workers() int {
	if o.Parallelism == 0 {
		return runtime.GOMAXPROCS(0)
	}
	return o.Parallelism
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

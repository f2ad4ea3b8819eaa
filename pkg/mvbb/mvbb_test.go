package mvbb

import (
	"bytes"
	"log/slog"
	"math"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipparndt/approxmvbb/pkg/geometry"
)

// rotatedBox returns n points inside a box of the given size, including its
// corners, rotated by q and shifted by offset.
func rotatedBox(seed uint64, n int, size geometry.Vector3, q mgl64.Quat, offset geometry.Vector3) []geometry.Vector3 {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	frame := geometry.FrameFromQuat(q)
	local := cube(rng, n, size)
	points := make([]geometry.Vector3, len(local))
	for i, p := range local {
		points[i] = frame.ToWorld(p).Add(offset)
	}
	return points
}

func assertValidBox(t *testing.T, points []geometry.Vector3, box geometry.OOBB) {
	t.Helper()
	if !box.Frame.IsOrthonormal(1e-9) {
		t.Errorf("frame not orthonormal: %v (det %v)", box.Frame.Matrix(), box.Frame.Det())
	}
	tol := 1e-9 * math.Max(1, geometry.BoundsOf(points).Diagonal())
	for i, p := range points {
		if !box.Contains(p, tol) {
			t.Fatalf("point %d (%v) outside box %v..%v", i, p, box.Min, box.Max)
		}
	}
}

func TestComputeRotatedBox(t *testing.T) {
	q := mgl64.QuatRotate(0.9, mgl64.Vec3{1, -2, 0.5}.Normalize())
	points := rotatedBox(1, 3000, geometry.NewVector3(4, 2, 1), q, geometry.NewVector3(10, -3, 7))

	res, err := Compute(points, DefaultOptions())
	require.NoError(t, err)
	assertValidBox(t, points, res.Box)

	// the corners are part of the input, so 8 is a hard lower bound
	volume := res.Box.Volume()
	assert.GreaterOrEqual(t, volume, 8*(1-1e-9))
	assert.LessOrEqual(t, volume, 8*1.1)
	assert.Equal(t, 400, res.SampleSize)
	assert.GreaterOrEqual(t, res.Stages, 1)
	assert.Empty(t, res.Warnings)
}

func TestComputeGaussianCloud(t *testing.T) {
	rng := rand.New(rand.NewPCG(21, 22))
	points := make([]geometry.Vector3, 5000)
	for i := range points {
		points[i] = geometry.NewVector3(rng.NormFloat64()*5, rng.NormFloat64()*2, rng.NormFloat64())
	}

	res, err := Compute(points, DefaultOptions())
	require.NoError(t, err)
	assertValidBox(t, points, res.Box)

	aabb := geometry.BoundsOf(points).Volume()
	assert.LessOrEqual(t, res.Box.Volume(), aabb*1.25)
}

func TestComputeUnitCube(t *testing.T) {
	var lattice []geometry.Vector3
	for x := 0; x <= 4; x++ {
		for y := 0; y <= 4; y++ {
			for z := 0; z <= 4; z++ {
				lattice = append(lattice, geometry.NewVector3(float64(x)/4, float64(y)/4, float64(z)/4))
			}
		}
	}
	corners := cube(rand.New(rand.NewPCG(0, 0)), 0, geometry.NewVector3(1, 1, 1))

	for name, points := range map[string][]geometry.Vector3{"corners": corners, "lattice": lattice} {
		for _, pca := range []bool{true, false} {
			opts := DefaultOptions()
			opts.PCASeed = pca
			res, err := Compute(points, opts)
			require.NoError(t, err)
			assertValidBox(t, points, res.Box)

			assert.InDelta(t, 1, res.Box.Volume(), 1e-3, "%s pca=%v", name, pca)
			for i := 0; i < 3; i++ {
				axis := res.Box.Frame.Axis(i)
				largest := math.Max(math.Abs(axis.X), math.Max(math.Abs(axis.Y), math.Abs(axis.Z)))
				assert.InDelta(t, 1, largest, 1e-3, "%s pca=%v: axis %d = %v is not a signed unit axis", name, pca, i, axis)
			}
		}
	}
}

func TestComputeMonotoneInDiameterLoops(t *testing.T) {
	q := mgl64.QuatRotate(1.3, mgl64.Vec3{0.2, 1, 0.4}.Normalize())
	points := rotatedBox(2, 250, geometry.NewVector3(5, 3, 1), q, geometry.Vector3{})

	prev := math.Inf(1)
	for loops := 0; loops <= 4; loops++ {
		opts := DefaultOptions()
		opts.PCASeed = false
		opts.GridSearchLoops = 1
		opts.DiameterLoops = loops
		res, err := Compute(points, opts)
		require.NoError(t, err)

		volume := res.Box.Volume()
		if volume > prev*(1+1e-9) {
			t.Errorf("diameter loops %d: volume grew from %v to %v", loops, prev, volume)
		}
		prev = volume
	}
}

func TestComputeMonotoneInGridSearchLoops(t *testing.T) {
	q := mgl64.QuatRotate(0.4, mgl64.Vec3{1, 1, 1}.Normalize())
	points := rotatedBox(3, 300, geometry.NewVector3(3, 2.5, 0.5), q, geometry.NewVector3(1, 2, 3))

	prev := math.Inf(1)
	for loops := 0; loops <= 6; loops++ {
		opts := DefaultOptions()
		opts.PCASeed = false
		opts.DiameterLoops = 1
		opts.GridSearchLoops = loops
		res, err := Compute(points, opts)
		require.NoError(t, err)

		volume := res.Box.Volume()
		if volume > prev*(1+1e-9) {
			t.Errorf("grid search loops %d: volume grew from %v to %v", loops, prev, volume)
		}
		prev = volume
	}
}

// gaussianCloud returns n normally distributed points stretched along
// three rotated axes.
func gaussianCloud(seed uint64, n int) []geometry.Vector3 {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e37))
	frame := geometry.FrameFromQuat(mgl64.QuatRotate(0.8, mgl64.Vec3{1, 2, -1}.Normalize()))
	points := make([]geometry.Vector3, n)
	for i := range points {
		local := geometry.NewVector3(rng.NormFloat64()*6, rng.NormFloat64()*3, rng.NormFloat64())
		points[i] = frame.ToWorld(local)
	}
	return points
}

func TestComputeMonotoneBeyondSample(t *testing.T) {
	points := gaussianCloud(5, 5000)

	for _, seed := range []uint64{1, 8, 12, 30} {
		knobs := []struct {
			name string
			set  func(*Options, int)
		}{
			{"diameter loops", func(o *Options, n int) { o.DiameterLoops = n }},
			{"grid search loops", func(o *Options, n int) { o.GridSearchLoops = n }},
		}
		for _, knob := range knobs {
			prev := math.Inf(1)
			for loops := 0; loops <= 5; loops++ {
				opts := DefaultOptions()
				opts.SampleSize = 50
				opts.Seed = seed
				knob.set(&opts, loops)
				res, err := Compute(points, opts)
				require.NoError(t, err)

				volume := res.Box.Volume()
				if volume > prev*(1+1e-12) {
					t.Errorf("seed %d %s %d: volume grew from %v to %v", seed, knob.name, loops, prev, volume)
				}
				prev = volume
			}
		}
	}
}

func TestComputeContainmentAcrossSeeds(t *testing.T) {
	q := mgl64.QuatRotate(2.1, mgl64.Vec3{-1, 0.5, 3}.Normalize())
	boxPoints := rotatedBox(4, 2000, geometry.NewVector3(6, 1.5, 0.7), q, geometry.NewVector3(-4, 0, 9))
	cloud := gaussianCloud(6, 3000)

	for seed := uint64(0); seed < 12; seed++ {
		for name, points := range map[string][]geometry.Vector3{"box": boxPoints, "cloud": cloud} {
			opts := DefaultOptions()
			opts.SampleSize = 60
			opts.Seed = seed
			res, err := Compute(points, opts)
			require.NoError(t, err, "%s seed %d", name, seed)
			assert.Equal(t, 60, res.SampleSize, "%s seed %d", name, seed)
			assertValidBox(t, points, res.Box)
		}
	}
}

func TestComputeTwoPoints(t *testing.T) {
	points := []geometry.Vector3{{X: 1, Y: 2, Z: 3}, {X: 4, Y: 6, Z: 3}}

	res, err := Compute(points, DefaultOptions())
	require.NoError(t, err)
	assertValidBox(t, points, res.Box)

	assert.InDelta(t, 0, res.Box.Volume(), 1e-12)
	extent := res.Box.Extent()
	longest := math.Max(extent.X, math.Max(extent.Y, extent.Z))
	assert.InDelta(t, 5, longest, 1e-9)

	require.NotEmpty(t, res.Warnings)
	assert.Equal(t, NumericInstability, res.Warnings[0].Kind)
}

func TestComputePlanar(t *testing.T) {
	rng := rand.New(rand.NewPCG(31, 32))
	frame := geometry.FrameFromQuat(mgl64.QuatRotate(0.6, mgl64.Vec3{1, 0, 1}.Normalize()))
	points := make([]geometry.Vector3, 500)
	for i := range points {
		points[i] = frame.ToWorld(geometry.NewVector3(rng.Float64()*4, rng.Float64()*2, 0))
	}

	res, err := Compute(points, DefaultOptions())
	require.NoError(t, err)
	assertValidBox(t, points, res.Box)

	extent := res.Box.Extent()
	thinnest := math.Min(extent.X, math.Min(extent.Y, extent.Z))
	assert.Less(t, thinnest, 1e-9)
	assert.Less(t, res.Box.Volume(), 1e-8)
}

func TestComputeDegenerateInput(t *testing.T) {
	tests := []struct {
		name   string
		points []geometry.Vector3
	}{
		{"empty", nil},
		{"single", []geometry.Vector3{{X: 1}}},
		{"coincident", []geometry.Vector3{{X: 1, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 1}}},
		{"nan", []geometry.Vector3{{X: 1}, {X: math.NaN()}}},
		{"inf", []geometry.Vector3{{X: 1}, {Y: math.Inf(1)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute(tt.points, DefaultOptions())
			if !errors.Is(err, ErrDegenerateInput) {
				t.Errorf("expected ErrDegenerateInput, got %v", err)
			}
		})
	}
}

func TestComputeInvalidParameters(t *testing.T) {
	points := []geometry.Vector3{{X: 1}, {Y: 1}, {Z: 1}}
	tests := []struct {
		name   string
		modify func(*Options)
	}{
		{"zero eps", func(o *Options) { o.Eps = 0 }},
		{"negative eps", func(o *Options) { o.Eps = -0.1 }},
		{"nan eps", func(o *Options) { o.Eps = math.NaN() }},
		{"zero sample size", func(o *Options) { o.SampleSize = 0 }},
		{"zero grid", func(o *Options) { o.GridSize = 0 }},
		{"negative diameter loops", func(o *Options) { o.DiameterLoops = -1 }},
		{"negative grid loops", func(o *Options) { o.GridSearchLoops = -1 }},
		{"negative passes", func(o *Options) { o.DiameterPasses = -1 }},
		{"negative parallelism", func(o *Options) { o.Parallelism = -2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.modify(&opts)
			_, err := Compute(points, opts)
			if !errors.Is(err, ErrInvalidParameter) {
				t.Errorf("expected ErrInvalidParameter, got %v", err)
			}
		})
	}
}

func TestComputeZeroLoops(t *testing.T) {
	q := mgl64.QuatRotate(0.3, mgl64.Vec3{0, 1, 0})
	points := rotatedBox(4, 500, geometry.NewVector3(2, 1, 1), q, geometry.Vector3{})

	opts := DefaultOptions()
	opts.DiameterLoops = 0
	opts.GridSearchLoops = 0
	res, err := Compute(points, opts)
	require.NoError(t, err)
	assertValidBox(t, points, res.Box)
	assert.Equal(t, 1, res.Stages)
}

func TestComputeReproducible(t *testing.T) {
	q := mgl64.QuatRotate(2.1, mgl64.Vec3{3, 1, 2}.Normalize())
	points := rotatedBox(5, 2*parallelThreshold, geometry.NewVector3(6, 2, 1), q, geometry.NewVector3(-4, 0, 2))

	opts := DefaultOptions()
	opts.Seed = 99
	opts.Parallelism = 1
	first, err := Compute(points, opts)
	require.NoError(t, err)

	again, err := Compute(points, opts)
	require.NoError(t, err)
	assert.Equal(t, first.Box, again.Box)

	opts.Parallelism = 4
	parallel, err := Compute(points, opts)
	require.NoError(t, err)
	assert.Equal(t, first.Box, parallel.Box)
}

func TestComputeLogsStages(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	points := rotatedBox(6, 100, geometry.NewVector3(1, 2, 3), mgl64.QuatIdent(), geometry.Vector3{})
	_, err := Compute(points, opts)
	require.NoError(t, err)

	out := buf.String()
	assert.True(t, strings.Contains(out, "sampled points"), out)
	assert.True(t, strings.Contains(out, "computed box"), out)
}

func TestApproximateMVBB(t *testing.T) {
	points := rotatedBox(7, 1000, geometry.NewVector3(3, 1, 1), mgl64.QuatRotate(0.5, mgl64.Vec3{0, 0, 1}), geometry.Vector3{})

	box, err := ApproximateMVBB(points, 0.001, 200, 3, 2, 4)
	require.NoError(t, err)
	assertValidBox(t, points, box)
	assert.InDelta(t, 3, box.Volume(), 0.3)

	_, err = ApproximateMVBB(points, 0.001, 0, 3, 2, 4)
	assert.True(t, errors.Is(err, ErrInvalidParameter))
}

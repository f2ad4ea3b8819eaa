package mvbb

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/philipparndt/approxmvbb/pkg/geometry"
)

func TestBuildFrame(t *testing.T) {
	// a flat 8×2 plate in the XY plane, primary along Z
	var points []geometry.Vector3
	for x := 0; x <= 8; x++ {
		for y := 0; y <= 2; y++ {
			points = append(points, geometry.NewVector3(float64(x), float64(y), 0))
		}
	}

	frame, degenerate := BuildFrame(points, geometry.NewVector3(0, 0, 2), 1e-12, 1)
	if degenerate {
		t.Fatal("BuildFrame failed: unexpected degenerate result")
	}
	if !frame.IsOrthonormal(1e-12) {
		t.Errorf("BuildFrame failed: frame not orthonormal: %v", frame.Matrix())
	}
	if z := frame.Axis(2); !z.ApproxEqual(geometry.NewVector3(0, 0, 1), 1e-12) {
		t.Errorf("BuildFrame failed: expected Z axis (0, 0, 1), got %v", z)
	}
	// the plate diagonal is the longest projected extent
	x := frame.Axis(0)
	diag := geometry.NewVector3(8, 2, 0).Normalize()
	if math.Abs(math.Abs(x.Dot(diag))-1) > 1e-12 {
		t.Errorf("BuildFrame failed: expected X along the plate diagonal, got %v", x)
	}
}

func TestBuildFrameCollinear(t *testing.T) {
	points := []geometry.Vector3{{X: 1, Y: 1, Z: 1}, {X: 2, Y: 2, Z: 2}, {X: 4, Y: 4, Z: 4}}
	frame, degenerate := BuildFrame(points, geometry.NewVector3(1, 1, 1), 1e-9, 1)
	if !degenerate {
		t.Error("BuildFrame failed: expected degenerate result for collinear points")
	}
	if !frame.IsOrthonormal(1e-12) {
		t.Errorf("BuildFrame failed: fallback frame not orthonormal: %v", frame.Matrix())
	}
}

func TestPrincipalFrame(t *testing.T) {
	rng := rand.New(rand.NewPCG(10, 11))
	points := make([]geometry.Vector3, 2000)
	for i := range points {
		points[i] = geometry.NewVector3(rng.NormFloat64()*0.5, rng.NormFloat64()*10, rng.NormFloat64()*2)
	}

	frame, ok := principalFrame(points)
	if !ok {
		t.Fatal("principalFrame failed: decomposition did not converge")
	}
	if !frame.IsOrthonormal(1e-9) {
		t.Errorf("principalFrame failed: frame not orthonormal: %v", frame.Matrix())
	}
	if z := frame.Axis(2); math.Abs(z.Y) < 0.99 {
		t.Errorf("principalFrame failed: expected Z near ±Y, got %v", z)
	}
	if x := frame.Axis(0); math.Abs(x.Z) < 0.99 {
		t.Errorf("principalFrame failed: expected X near ±Z, got %v", x)
	}
}

func TestFitAroundRecoversRectangle(t *testing.T) {
	// a 4×1 rectangle rotated by 30° in the XY plane, extruded to height 2
	angle := math.Pi / 6
	u := geometry.NewVector3(math.Cos(angle), math.Sin(angle), 0)
	v := geometry.NewVector3(-math.Sin(angle), math.Cos(angle), 0)
	var points []geometry.Vector3
	for _, a := range []float64{0, 4} {
		for _, b := range []float64{0, 1} {
			for _, h := range []float64{0, 2} {
				points = append(points, u.Mul(a).Add(v.Mul(b)).Add(geometry.NewVector3(0, 0, h)))
			}
		}
	}

	s := newScorer(points, geometry.BoundsOf(points).Diagonal(), 1)
	c := s.fitAround(geometry.NewVector3(0, 0, 1))
	if math.Abs(c.volume()-8) > 1e-9 {
		t.Errorf("fitAround failed: expected volume 8, got %v", c.volume())
	}
	if math.Abs(math.Abs(c.frame.Axis(0).Dot(u))-1) > 1e-9 && math.Abs(math.Abs(c.frame.Axis(0).Dot(v))-1) > 1e-9 {
		t.Errorf("fitAround failed: X axis %v not aligned with the rectangle", c.frame.Axis(0))
	}
}

func TestScorerBetter(t *testing.T) {
	s := &scorer{volTol: 1e-9, areaTol: 1e-9}
	box := func(x, y, z float64) candidate {
		b := geometry.NewOOBB(geometry.IdentityFrame())
		b.UniteLocal(geometry.Vector3{})
		b.UniteLocal(geometry.NewVector3(x, y, z))
		return candidate{frame: b.Frame, box: b}
	}

	tests := []struct {
		name string
		a, b candidate
		want bool
	}{
		{"smaller volume", box(1, 1, 1), box(1, 1, 2), true},
		{"larger volume", box(1, 1, 2), box(1, 1, 1), false},
		{"equal", box(1, 2, 3), box(3, 2, 1), false},
		{"flat smaller area", box(1, 1, 0), box(2, 1, 0), true},
		{"flat larger area", box(2, 1, 0), box(1, 1, 0), false},
	}
	for _, tt := range tests {
		if got := s.better(tt.a, tt.b); got != tt.want {
			t.Errorf("better(%s) failed: expected %v, got %v", tt.name, tt.want, got)
		}
	}
}

func TestScorerRelativeGain(t *testing.T) {
	s := &scorer{volTol: 1e-9, areaTol: 1e-9}
	box := func(x, y, z float64) candidate {
		b := geometry.NewOOBB(geometry.IdentityFrame())
		b.UniteLocal(geometry.Vector3{})
		b.UniteLocal(geometry.NewVector3(x, y, z))
		return candidate{frame: b.Frame, box: b}
	}

	if got := s.relativeGain(box(2, 2, 2), box(2, 2, 1)); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("relativeGain failed: expected 0.5, got %v", got)
	}
	// shrinking a flat box is always worth another loop
	if got := s.relativeGain(box(2, 1, 0), box(1, 1, 0)); !math.IsInf(got, 1) {
		t.Errorf("relativeGain of flat box failed: expected +Inf, got %v", got)
	}
}

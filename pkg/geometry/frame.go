package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Frame is a proper rotation whose columns are the local X, Y and Z axes
// expressed in world coordinates.
type Frame struct {
	m mgl64.Mat3
}

// IdentityFrame returns the world-aligned frame
func IdentityFrame() Frame {
	return Frame{m: mgl64.Ident3()}
}

// NewFrame builds a frame from an X and Y axis. Both are re-normalized,
// Y is made orthogonal to X and Z is derived as X × Y, so the result is
// always a proper rotation. ok is false when the axes are degenerate.
func NewFrame(x, y Vector3) (Frame, bool) {
	x = x.Normalize()
	y = y.Sub(x.Mul(x.Dot(y))).Normalize()
	if x.LengthSquared() == 0 || y.LengthSquared() == 0 {
		return IdentityFrame(), false
	}
	z := x.Cross(y).Normalize()
	return Frame{m: mgl64.Mat3FromCols(x.Vec3(), y.Vec3(), z.Vec3())}, true
}

// FrameFromZ builds a frame whose Z axis is the given direction and whose
// X axis lies along xHint projected into the plane orthogonal to Z. When the
// hint is parallel to Z an arbitrary orthogonal axis is used.
func FrameFromZ(z, xHint Vector3) Frame {
	z = z.Normalize()
	if z.LengthSquared() == 0 {
		return IdentityFrame()
	}
	x := xHint.Sub(z.Mul(z.Dot(xHint))).Normalize()
	if x.LengthSquared() == 0 {
		x, _ = z.Orthonormal()
	}
	y := z.Cross(x).Normalize()
	return Frame{m: mgl64.Mat3FromCols(x.Vec3(), y.Vec3(), z.Vec3())}
}

// FrameFromQuat converts a rotation quaternion
func FrameFromQuat(q mgl64.Quat) Frame {
	return Frame{m: q.Normalize().Mat4().Mat3()}.Orthonormalize()
}

// Axis returns the local axis (0=X, 1=Y, 2=Z) in world coordinates
func (f Frame) Axis(i int) Vector3 {
	return FromVec3(f.m.Col(i))
}

// Matrix returns the underlying rotation matrix
func (f Frame) Matrix() mgl64.Mat3 {
	return f.m
}

// Quat returns the rotation as a unit quaternion
func (f Frame) Quat() mgl64.Quat {
	return mgl64.Mat4ToQuat(f.m.Mat4()).Normalize()
}

// ToLocal maps a world point into frame coordinates
func (f Frame) ToLocal(p Vector3) Vector3 {
	return Vector3{
		X: f.m[0]*p.X + f.m[1]*p.Y + f.m[2]*p.Z,
		Y: f.m[3]*p.X + f.m[4]*p.Y + f.m[5]*p.Z,
		Z: f.m[6]*p.X + f.m[7]*p.Y + f.m[8]*p.Z,
	}
}

// ToWorld maps frame coordinates back into world space
func (f Frame) ToWorld(p Vector3) Vector3 {
	return FromVec3(f.m.Mul3x1(p.Vec3()))
}

// Det returns the determinant of the rotation matrix
func (f Frame) Det() float64 {
	return f.m.Det()
}

// Rotate applies a rotation expressed in the frame's local coordinates
func (f Frame) Rotate(q mgl64.Quat) Frame {
	return Frame{m: f.m.Mul3(q.Normalize().Mat4().Mat3())}.Orthonormalize()
}

// Orthonormalize re-applies Gram-Schmidt to remove accumulated drift
func (f Frame) Orthonormalize() Frame {
	n, ok := NewFrame(f.Axis(0), f.Axis(1))
	if !ok {
		return f
	}
	return n
}

// IsOrthonormal checks unit axes, mutual orthogonality and det +1
func (f Frame) IsOrthonormal(tol float64) bool {
	for i := 0; i < 3; i++ {
		a := f.Axis(i)
		if math.Abs(a.Length()-1) > tol {
			return false
		}
		for j := i + 1; j < 3; j++ {
			if math.Abs(a.Dot(f.Axis(j))) > tol {
				return false
			}
		}
	}
	return math.Abs(f.Det()-1) <= tol
}

// ApproxEqual compares two frames entry by entry
func (f Frame) ApproxEqual(other Frame, tol float64) bool {
	return f.m.ApproxEqualThreshold(other.m, tol)
}

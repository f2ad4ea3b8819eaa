package geometry

import "math"

// OOBB is an oriented bounding box. Min and Max are corners expressed in the
// local coordinates of Frame.
type OOBB struct {
	Frame Frame
	Min   Vector3
	Max   Vector3
}

// NewOOBB creates an empty box in the given frame; unite points to grow it
func NewOOBB(frame Frame) OOBB {
	b := OOBB{Frame: frame}
	b.Reset()
	return b
}

// Reset empties the box while keeping its orientation
func (b *OOBB) Reset() {
	b.Min = Vector3{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	b.Max = Vector3{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
}

// IsEmpty reports whether no point has been united yet
func (b OOBB) IsEmpty() bool {
	return b.Max.X < b.Min.X || b.Max.Y < b.Min.Y || b.Max.Z < b.Min.Z
}

// UniteLocal grows the box to contain a point given in local coordinates
func (b *OOBB) UniteLocal(p Vector3) {
	b.Min = b.Min.Min(p)
	b.Max = b.Max.Max(p)
}

// Unite grows the box to contain a world point
func (b *OOBB) Unite(p Vector3) {
	b.UniteLocal(b.Frame.ToLocal(p))
}

// UnitePoints grows the box to contain every world point
func (b *OOBB) UnitePoints(points []Vector3) {
	for _, p := range points {
		b.Unite(p)
	}
}

// Extent returns the box size along each local axis
func (b OOBB) Extent() Vector3 {
	if b.IsEmpty() {
		return Vector3{}
	}
	return b.Max.Sub(b.Min)
}

// HalfExtents returns half the size along each local axis
func (b OOBB) HalfExtents() Vector3 {
	return b.Extent().Mul(0.5)
}

// Volume returns the product of the extents
func (b OOBB) Volume() float64 {
	e := b.Extent()
	return e.X * e.Y * e.Z
}

// SurfaceArea returns the total area of the six faces
func (b OOBB) SurfaceArea() float64 {
	e := b.Extent()
	return 2 * (e.X*e.Y + e.Y*e.Z + e.Z*e.X)
}

// Center returns the box center in world coordinates
func (b OOBB) Center() Vector3 {
	return b.Frame.ToWorld(b.Min.Add(b.Max).Mul(0.5))
}

// Direction returns the world direction of local axis i
func (b OOBB) Direction(i int) Vector3 {
	return b.Frame.Axis(i)
}

// Corners returns the eight corners in world coordinates. Bit 0 of the
// index selects max X, bit 1 max Y and bit 2 max Z.
func (b OOBB) Corners() [8]Vector3 {
	var corners [8]Vector3
	for i := range corners {
		local := b.Min
		if i&1 != 0 {
			local.X = b.Max.X
		}
		if i&2 != 0 {
			local.Y = b.Max.Y
		}
		if i&4 != 0 {
			local.Z = b.Max.Z
		}
		corners[i] = b.Frame.ToWorld(local)
	}
	return corners
}

// Contains checks whether a world point lies inside the box within tol
func (b OOBB) Contains(p Vector3, tol float64) bool {
	l := b.Frame.ToLocal(p)
	return l.X >= b.Min.X-tol && l.X <= b.Max.X+tol &&
		l.Y >= b.Min.Y-tol && l.Y <= b.Max.Y+tol &&
		l.Z >= b.Min.Z-tol && l.Z <= b.Max.Z+tol
}

// ExpandToMinExtentAbsolute widens every axis narrower than minExtent
// symmetrically to exactly minExtent.
func (b *OOBB) ExpandToMinExtentAbsolute(minExtent float64) {
	if b.IsEmpty() {
		return
	}
	e := b.Extent()
	c := b.Min.Add(b.Max).Mul(0.5)
	h := minExtent / 2
	if e.X < minExtent {
		b.Min.X, b.Max.X = c.X-h, c.X+h
	}
	if e.Y < minExtent {
		b.Min.Y, b.Max.Y = c.Y-h, c.Y+h
	}
	if e.Z < minExtent {
		b.Min.Z, b.Max.Z = c.Z-h, c.Z+h
	}
}

// ExpandToMinExtentRelative widens axes thinner than ratio times the largest
// extent to that size. A box whose largest extent is below tol is expanded to
// defaultExtent in every direction.
func (b *OOBB) ExpandToMinExtentRelative(ratio, defaultExtent, tol float64) {
	if b.IsEmpty() {
		return
	}
	e := b.Extent()
	largest := math.Max(e.X, math.Max(e.Y, e.Z))
	if largest < tol {
		b.ExpandToMinExtentAbsolute(defaultExtent)
		return
	}
	b.ExpandToMinExtentAbsolute(ratio * largest)
}

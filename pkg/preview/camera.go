package preview

import (
	"math"

	"github.com/philipparndt/approxmvbb/pkg/geometry"
)

// Camera is an orbit camera looking at the centre of a scene
type Camera struct {
	Position  geometry.Vector3
	Target    geometry.Vector3
	Up        geometry.Vector3
	FOV       float64 // vertical field of view in radians
	Distance  float64
	RotationX float64 // elevation
	RotationY float64 // azimuth
}

// NewCamera positions a camera so that the whole box is in view
func NewCamera(bbox geometry.BoundingBox) *Camera {
	size := bbox.Size()
	distance := math.Max(size.X, math.Max(size.Y, size.Z)) * 2.0
	if distance == 0 {
		distance = 1
	}

	c := &Camera{
		Target:   bbox.Center(),
		Up:       geometry.NewVector3(0, 1, 0),
		FOV:      math.Pi / 4,
		Distance: distance,
	}
	c.UpdatePosition()
	return c
}

// UpdatePosition places the camera on its orbit sphere
func (c *Camera) UpdatePosition() {
	x := c.Distance * math.Cos(c.RotationX) * math.Sin(c.RotationY)
	y := c.Distance * math.Sin(c.RotationX)
	z := c.Distance * math.Cos(c.RotationX) * math.Cos(c.RotationY)

	c.Position = c.Target.Add(geometry.NewVector3(x, y, z))
}

// Rotate orbits by the given angles; elevation stays clear of the poles
func (c *Camera) Rotate(deltaX, deltaY float64) {
	maxAngle := math.Pi/2 - 0.1
	c.RotationX = math.Max(-maxAngle, math.Min(maxAngle, c.RotationX+deltaX))
	c.RotationY += deltaY
	c.UpdatePosition()
}

// Project maps a world point to screen coordinates and view depth
func (c *Camera) Project(point geometry.Vector3, width, height float64) (float64, float64, float64) {
	forward := c.Target.Sub(c.Position).Normalize()
	right := forward.Cross(c.Up).Normalize()
	up := right.Cross(forward).Normalize()

	relative := point.Sub(c.Position)
	x := relative.Dot(right)
	y := relative.Dot(up)
	z := math.Max(relative.Dot(forward), 0.01)

	aspect := width / height
	fovScale := math.Tan(c.FOV / 2)

	screenX := (x/(z*fovScale*aspect))*(width/2) + (width / 2)
	screenY := (-y/(z*fovScale))*(height/2) + (height / 2)
	return screenX, screenY, z
}

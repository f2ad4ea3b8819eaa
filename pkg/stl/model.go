package stl

import (
	"github.com/philipparndt/approxmvbb/pkg/geometry"
)

// Model is a triangle mesh read from or written to an STL file
type Model struct {
	Name      string
	Triangles []geometry.Triangle
}

// NewModel creates an empty model
func NewModel(name string) *Model {
	return &Model{
		Name:      name,
		Triangles: make([]geometry.Triangle, 0),
	}
}

// AddTriangle appends a facet
func (m *Model) AddTriangle(triangle geometry.Triangle) {
	m.Triangles = append(m.Triangles, triangle)
}

// TriangleCount returns the number of facets
func (m *Model) TriangleCount() int {
	return len(m.Triangles)
}

// BoundingBox calculates the axis-aligned bounding box of all vertices
func (m *Model) BoundingBox() geometry.BoundingBox {
	bbox := geometry.NewBoundingBox()
	for _, triangle := range m.Triangles {
		bbox.Extend(triangle.V1)
		bbox.Extend(triangle.V2)
		bbox.Extend(triangle.V3)
	}
	return bbox
}

// SurfaceArea sums the facet areas
func (m *Model) SurfaceArea() float64 {
	totalArea := 0.0
	for _, triangle := range m.Triangles {
		totalArea += triangle.Area()
	}
	return totalArea
}

// Vertices returns the distinct vertices in first-seen order. Meshes share
// every vertex between several facets, so this is the point set a bounding
// box is fitted to.
func (m *Model) Vertices() []geometry.Vector3 {
	seen := make(map[geometry.Vector3]struct{}, len(m.Triangles)/2+3)
	points := make([]geometry.Vector3, 0, len(m.Triangles)/2+3)
	for _, triangle := range m.Triangles {
		for _, v := range triangle.Vertices() {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			points = append(points, v)
		}
	}
	return points
}

// boxFaces lists the corner indices of the two triangles of each box face,
// counter-clockwise seen from outside. Corner bits: 1 = max X, 2 = max Y,
// 4 = max Z.
var boxFaces = [12][3]int{
	{0, 2, 3}, {0, 3, 1}, // -Z
	{4, 5, 7}, {4, 7, 6}, // +Z
	{0, 1, 5}, {0, 5, 4}, // -Y
	{2, 6, 7}, {2, 7, 3}, // +Y
	{0, 4, 6}, {0, 6, 2}, // -X
	{1, 3, 7}, {1, 7, 5}, // +X
}

// FromOOBB returns a closed 12-facet mesh of the box
func FromOOBB(name string, box geometry.OOBB) *Model {
	model := NewModel(name)
	corners := box.Corners()
	for _, f := range boxFaces {
		t := geometry.NewTriangle(geometry.Vector3{}, corners[f[0]], corners[f[1]], corners[f[2]])
		t.Normal = t.CalculateNormal()
		model.AddTriangle(t)
	}
	return model
}

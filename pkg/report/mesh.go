package report

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/philipparndt/approxmvbb/pkg/geometry"
	"github.com/philipparndt/approxmvbb/pkg/stl"
)

// Edge is one triangle edge of a mesh
type Edge struct {
	Start      geometry.Vector3
	End        geometry.Vector3
	Length     float64
	TriangleID int
}

// MeshStats summarizes the geometry of an input mesh or point cloud
type MeshStats struct {
	Name          string               `json:"name,omitempty" yaml:"name,omitempty"`
	Points        int                  `json:"points" yaml:"points"`
	TriangleCount int                  `json:"triangles" yaml:"triangles"`
	BoundingBox   geometry.BoundingBox `json:"-" yaml:"-"`
	Dimensions    geometry.Vector3     `json:"dimensions" yaml:"dimensions"`
	Volume        float64              `json:"aabb_volume" yaml:"aabb_volume"`
	SurfaceArea   float64              `json:"surface_area" yaml:"surface_area"`
	EdgeCount     int                  `json:"edges" yaml:"edges"`
	MinEdgeLength float64              `json:"min_edge" yaml:"min_edge"`
	MaxEdgeLength float64              `json:"max_edge" yaml:"max_edge"`
	AvgEdgeLength float64              `json:"avg_edge" yaml:"avg_edge"`
	edges         []Edge
}

// PointStats describes a bare point set
func PointStats(points []geometry.Vector3) *MeshStats {
	bbox := geometry.BoundsOf(points)
	return &MeshStats{
		Points:      len(points),
		BoundingBox: bbox,
		Dimensions:  bbox.Size(),
		Volume:      bbox.Volume(),
	}
}

// AnalyzeModel adds triangle and edge statistics of a mesh
func AnalyzeModel(model *stl.Model) *MeshStats {
	result := PointStats(model.Vertices())
	result.Name = model.Name
	result.TriangleCount = model.TriangleCount()
	result.SurfaceArea = model.SurfaceArea()

	minLength := math.MaxFloat64
	maxLength := 0.0
	totalLength := 0.0

	for i, triangle := range model.Triangles {
		for _, e := range [3][2]geometry.Vector3{
			{triangle.V1, triangle.V2},
			{triangle.V2, triangle.V3},
			{triangle.V3, triangle.V1},
		} {
			length := e[0].Distance(e[1])
			result.edges = append(result.edges, Edge{Start: e[0], End: e[1], Length: length, TriangleID: i})

			totalLength += length
			minLength = math.Min(minLength, length)
			maxLength = math.Max(maxLength, length)
		}
	}

	result.EdgeCount = len(result.edges)
	if result.EdgeCount > 0 {
		result.MinEdgeLength = minLength
		result.MaxEdgeLength = maxLength
		result.AvgEdgeLength = totalLength / float64(result.EdgeCount)
	}
	return result
}

// LongestEdges returns the n longest edges
func (m *MeshStats) LongestEdges(n int) []Edge {
	edges := make([]Edge, len(m.edges))
	copy(edges, m.edges)
	sort.SliceStable(edges, func(i, j int) bool {
		return edges[i].Length > edges[j].Length
	})
	return edges[:min(n, len(edges))]
}

// WriteText prints the statistics in the layout of the info command
func (m *MeshStats) WriteText(w io.Writer, source string) {
	fmt.Fprintln(w, "Input Information")
	fmt.Fprintln(w, "=================")
	if m.Name != "" {
		fmt.Fprintf(w, "Name: %s\n", m.Name)
	}
	fmt.Fprintf(w, "File: %s\n\n", source)

	fmt.Fprintln(w, "Statistics:")
	fmt.Fprintf(w, "  Points: %d\n", m.Points)
	if m.TriangleCount > 0 {
		fmt.Fprintf(w, "  Triangles: %d\n", m.TriangleCount)
		fmt.Fprintf(w, "  Edges: %d\n", m.EdgeCount)
		fmt.Fprintf(w, "  Surface Area: %s\n", FormatMeasurement(m.SurfaceArea, "square units"))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Bounding Box:")
	fmt.Fprintf(w, "  Min: %s\n", FormatVector(m.BoundingBox.Min))
	fmt.Fprintf(w, "  Max: %s\n", FormatVector(m.BoundingBox.Max))
	fmt.Fprintf(w, "  Center: %s\n\n", FormatVector(m.BoundingBox.Center()))

	fmt.Fprintln(w, "Dimensions:")
	fmt.Fprintf(w, "  Width (X): %s\n", FormatMeasurement(m.Dimensions.X, ""))
	fmt.Fprintf(w, "  Depth (Y): %s\n", FormatMeasurement(m.Dimensions.Y, ""))
	fmt.Fprintf(w, "  Height (Z): %s\n", FormatMeasurement(m.Dimensions.Z, ""))
	fmt.Fprintf(w, "  Diagonal: %s\n", FormatMeasurement(m.BoundingBox.Diagonal(), ""))
	fmt.Fprintf(w, "  Volume: %s\n", FormatMeasurement(m.Volume, "cubic units"))

	if m.EdgeCount > 0 {
		fmt.Fprintln(w, "\nEdge Lengths:")
		fmt.Fprintf(w, "  Minimum: %s\n", FormatMeasurement(m.MinEdgeLength, ""))
		fmt.Fprintf(w, "  Maximum: %s\n", FormatMeasurement(m.MaxEdgeLength, ""))
		fmt.Fprintf(w, "  Average: %s\n", FormatMeasurement(m.AvgEdgeLength, ""))
	}
}

package report

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/philipparndt/approxmvbb/pkg/geometry"
	"github.com/philipparndt/approxmvbb/pkg/mvbb"
	"github.com/philipparndt/approxmvbb/pkg/stl"
)

func unitBoxResult() ([]geometry.Vector3, mvbb.Result) {
	points := []geometry.Vector3{{}, {X: 2, Y: 1, Z: 1}}
	box := geometry.NewOOBB(geometry.IdentityFrame())
	box.UnitePoints(points)
	return points, mvbb.Result{
		Box:        box,
		SampleSize: 2,
		Stages:     1,
		Warnings:   []mvbb.Warning{{Kind: mvbb.NumericInstability, Message: "points are collinear"}},
	}
}

func TestFormatVector(t *testing.T) {
	v := geometry.NewVector3(1.5, -2.25, 0)
	expected := "(1.500000, -2.250000, 0.000000)"
	if got := FormatVector(v); got != expected {
		t.Errorf("FormatVector failed: expected %s, got %s", expected, got)
	}
}

func TestFormatMeasurement(t *testing.T) {
	if got := FormatMeasurement(2, ""); got != "2.000000 units" {
		t.Errorf("FormatMeasurement failed: got %s", got)
	}
	if got := FormatMeasurement(0.5, "mm"); got != "0.500000 mm" {
		t.Errorf("FormatMeasurement failed: got %s", got)
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"text": Text, "JSON": JSON, "Yaml": YAML} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	points, res := unitBoxResult()
	s := Summarize("cloud.xyz", points, res, time.Millisecond)

	assert.Equal(t, 2, s.Points)
	assert.Equal(t, [3]float64{1, 0.5, 0.5}, s.Center)
	assert.Equal(t, [3]float64{2, 1, 1}, s.Extent)
	assert.Equal(t, 2.0, s.Volume)
	assert.Equal(t, 10.0, s.SurfaceArea)
	assert.Equal(t, 1.0, s.Ratio)
	assert.Equal(t, [3]float64{0, 0, 1}, s.Axes[2])
	assert.Equal(t, [3]float64{2, 1, 1}, s.Corners[7])
	assert.Equal(t, []string{"numeric-instability: points are collinear"}, s.Warnings)
}

func TestSummaryWrite(t *testing.T) {
	points, res := unitBoxResult()
	s := Summarize("cloud.xyz", points, res, 0)

	var text bytes.Buffer
	require.NoError(t, s.Write(&text, Text))
	out := text.String()
	assert.True(t, strings.HasPrefix(out, "Oriented Bounding Box\n"), out)
	assert.Contains(t, out, "  Volume: 2.000000 cubic units\n")
	assert.Contains(t, out, "  Ratio: 1.0000\n")
	assert.Contains(t, out, "numeric-instability: points are collinear")
	assert.NotContains(t, out, "Elapsed")

	var js bytes.Buffer
	require.NoError(t, s.Write(&js, JSON))
	var decoded Summary
	require.NoError(t, json.Unmarshal(js.Bytes(), &decoded))
	assert.Equal(t, s, decoded)

	var ym bytes.Buffer
	require.NoError(t, s.Write(&ym, YAML))
	var generic map[string]interface{}
	require.NoError(t, yaml.Unmarshal(ym.Bytes(), &generic))
	assert.Equal(t, "cloud.xyz", generic["source"])
	assert.EqualValues(t, 2, generic["volume"])

	assert.Error(t, s.Write(&text, Format("xml")))
}

func TestAnalyzeModel(t *testing.T) {
	box := geometry.NewOOBB(geometry.IdentityFrame())
	box.UniteLocal(geometry.Vector3{})
	box.UniteLocal(geometry.NewVector3(3, 4, 12))
	stats := AnalyzeModel(stl.FromOOBB("box", box))

	assert.Equal(t, "box", stats.Name)
	assert.Equal(t, 8, stats.Points)
	assert.Equal(t, 12, stats.TriangleCount)
	assert.Equal(t, 36, stats.EdgeCount)
	assert.Equal(t, 144.0, stats.Volume)
	assert.InDelta(t, 2*(12+36+48), stats.SurfaceArea, 1e-9)
	assert.InDelta(t, 3, stats.MinEdgeLength, 1e-12)
	// the longest edges are the diagonals of the 4×12 faces
	assert.InDelta(t, math.Sqrt(16+144), stats.MaxEdgeLength, 1e-12)

	longest := stats.LongestEdges(5)
	require.Len(t, longest, 5)
	assert.InDelta(t, math.Sqrt(16+144), longest[3].Length, 1e-12)
	assert.InDelta(t, math.Sqrt(9+144), longest[4].Length, 1e-12)

	var buf bytes.Buffer
	stats.WriteText(&buf, "box.stl")
	assert.Contains(t, buf.String(), "  Triangles: 12\n")
	assert.Contains(t, buf.String(), "  Volume: 144.000000 cubic units\n")
}

func TestPointStats(t *testing.T) {
	stats := PointStats([]geometry.Vector3{{X: -1}, {Y: 2}, {Z: 3}})
	assert.Equal(t, 3, stats.Points)
	assert.Equal(t, geometry.NewVector3(1, 2, 3), stats.Dimensions)
	assert.Equal(t, 6.0, stats.Volume)
	assert.Empty(t, stats.LongestEdges(5))
}

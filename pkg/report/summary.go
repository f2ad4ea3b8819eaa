package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/philipparndt/approxmvbb/pkg/geometry"
	"github.com/philipparndt/approxmvbb/pkg/mvbb"
)

// Summary describes one computed box
type Summary struct {
	Source      string        `json:"source,omitempty" yaml:"source,omitempty"`
	Points      int           `json:"points" yaml:"points"`
	SampleSize  int           `json:"sample_size" yaml:"sample_size"`
	Stages      int           `json:"stages" yaml:"stages"`
	Center      [3]float64    `json:"center" yaml:"center,flow"`
	Axes        [3][3]float64 `json:"axes" yaml:"axes"`
	Extent      [3]float64    `json:"extent" yaml:"extent,flow"`
	Volume      float64       `json:"volume" yaml:"volume"`
	SurfaceArea float64       `json:"surface_area" yaml:"surface_area"`
	AABBVolume  float64       `json:"aabb_volume" yaml:"aabb_volume"`
	// Ratio is Volume / AABBVolume; below 1 the oriented box is tighter
	Ratio    float64       `json:"ratio" yaml:"ratio"`
	Corners  [8][3]float64 `json:"corners" yaml:"corners"`
	Warnings []string      `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Elapsed  time.Duration `json:"elapsed_ns" yaml:"elapsed"`
}

func triple(v geometry.Vector3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

// Summarize collects the figures of a result computed from points
func Summarize(source string, points []geometry.Vector3, res mvbb.Result, elapsed time.Duration) Summary {
	box := res.Box
	s := Summary{
		Source:      source,
		Points:      len(points),
		SampleSize:  res.SampleSize,
		Stages:      res.Stages,
		Center:      triple(box.Center()),
		Extent:      triple(box.Extent()),
		Volume:      box.Volume(),
		SurfaceArea: box.SurfaceArea(),
		AABBVolume:  geometry.BoundsOf(points).Volume(),
		Elapsed:     elapsed,
	}
	for i := range s.Axes {
		s.Axes[i] = triple(box.Direction(i))
	}
	for i, c := range box.Corners() {
		s.Corners[i] = triple(c)
	}
	if s.AABBVolume > 0 {
		s.Ratio = s.Volume / s.AABBVolume
	}
	for _, w := range res.Warnings {
		s.Warnings = append(s.Warnings, w.String())
	}
	return s
}

// Write encodes the summary in the given format
func (s Summary) Write(w io.Writer, format Format) error {
	switch format {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(s), "encoding json")
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return errors.Wrap(err, "encoding yaml")
		}
		return errors.Wrap(enc.Close(), "encoding yaml")
	case Text:
		s.writeText(w)
		return nil
	}
	return errors.Newf("unknown output format %q", format)
}

func (s Summary) writeText(w io.Writer) {
	vec := func(a [3]float64) string {
		return FormatVector(geometry.NewVector3(a[0], a[1], a[2]))
	}

	fmt.Fprintln(w, "Oriented Bounding Box")
	fmt.Fprintln(w, "=====================")
	if s.Source != "" {
		fmt.Fprintf(w, "Source: %s\n", s.Source)
	}
	fmt.Fprintf(w, "Points: %d (sample %d, %d stages)\n\n", s.Points, s.SampleSize, s.Stages)

	fmt.Fprintln(w, "Box:")
	fmt.Fprintf(w, "  Center: %s\n", vec(s.Center))
	for i, name := range []string{"X", "Y", "Z"} {
		fmt.Fprintf(w, "  Axis %s: %s\n", name, vec(s.Axes[i]))
	}
	fmt.Fprintf(w, "  Extent: %s\n", vec(s.Extent))
	fmt.Fprintf(w, "  Volume: %s\n", FormatMeasurement(s.Volume, "cubic units"))
	fmt.Fprintf(w, "  Surface Area: %s\n\n", FormatMeasurement(s.SurfaceArea, "square units"))

	fmt.Fprintln(w, "Axis-Aligned Comparison:")
	fmt.Fprintf(w, "  AABB Volume: %s\n", FormatMeasurement(s.AABBVolume, "cubic units"))
	fmt.Fprintf(w, "  Ratio: %.4f\n", s.Ratio)

	if len(s.Warnings) > 0 {
		fmt.Fprintln(w, "\nWarnings:")
		for _, warning := range s.Warnings {
			fmt.Fprintf(w, "  %s\n", warning)
		}
	}
	if s.Elapsed > 0 {
		fmt.Fprintf(w, "\nElapsed: %s\n", s.Elapsed.Round(time.Microsecond))
	}
}

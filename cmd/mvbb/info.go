package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/philipparndt/approxmvbb/pkg/geometry"
	"github.com/philipparndt/approxmvbb/pkg/mvbb"
	"github.com/philipparndt/approxmvbb/pkg/pointcloud"
	"github.com/philipparndt/approxmvbb/pkg/report"
	"github.com/philipparndt/approxmvbb/pkg/stl"
)

func newInfoCmd(st *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "info [file]",
		Short: "Display general information about an input file",
		Long: `Show point and mesh statistics together with a comparison of the
axis-aligned and the oriented bounding box.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd, st, args[0])
		},
	}
}

func runInfo(cmd *cobra.Command, st *cli, path string) error {
	format, err := pointcloud.FormatOf(path)
	if err != nil {
		return err
	}

	var points []geometry.Vector3
	var stats *report.MeshStats
	if format == pointcloud.STL {
		model, err := stl.Parse(path)
		if err != nil {
			return err
		}
		stats = report.AnalyzeModel(model)
		points = model.Vertices()
	} else {
		points, err = pointcloud.Load(cmd.Context(), path, st.logger)
		if err != nil {
			return err
		}
		stats = report.PointStats(points)
	}

	out := cmd.OutOrStdout()
	stats.WriteText(out, path)

	res, err := mvbb.Compute(points, st.cfg.Options(st.logger))
	if err != nil {
		fmt.Fprintf(out, "\nOriented Bounding Box: not available (%v)\n", err)
		return nil
	}

	fmt.Fprintln(out, "\nOriented Bounding Box:")
	fmt.Fprintf(out, "  Extent: %s\n", report.FormatVector(res.Box.Extent()))
	fmt.Fprintf(out, "  Volume: %s\n", report.FormatMeasurement(res.Box.Volume(), "cubic units"))
	if stats.Volume > 0 {
		fmt.Fprintf(out, "  Ratio to axis-aligned: %.4f\n", res.Box.Volume()/stats.Volume)
	}
	return nil
}

package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/philipparndt/approxmvbb/pkg/geometry"
	"github.com/philipparndt/approxmvbb/pkg/mvbb"
	"github.com/philipparndt/approxmvbb/pkg/openscad"
	"github.com/philipparndt/approxmvbb/pkg/pointcloud"
	"github.com/philipparndt/approxmvbb/pkg/preview"
	"github.com/philipparndt/approxmvbb/pkg/report"
	"github.com/philipparndt/approxmvbb/pkg/stl"
	"github.com/philipparndt/approxmvbb/pkg/watcher"
)

type computeFlags struct {
	eps            float64
	samples        int
	grid           int
	diameterLoops  int
	gridLoops      int
	diameterPasses int
	seed           uint64
	parallelism    int
	noPCA          bool
	format         string
	stlOut         string
	pngOut         string
	sampleOut      string
	watch          bool
	debounce       time.Duration
}

func newComputeCmd(st *cli) *cobra.Command {
	f := &computeFlags{}
	defaults := mvbb.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "compute [file]",
		Short: "Compute the oriented bounding box of a point set",
		Long: `Compute an approximate minimum-volume oriented bounding box.

Supported inputs: .xyz/.txt/.csv/.pts text dumps, .bin float64 dumps,
.stl meshes (ASCII and binary) and .scad models (requires openscad).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompute(cmd, st, f, args[0])
		},
	}

	flags := cmd.Flags()
	flags.Float64Var(&f.eps, "eps", defaults.Eps, "relative gain below which refinement stops")
	flags.IntVar(&f.samples, "samples", defaults.SampleSize, "number of sample points for the orientation search")
	flags.IntVar(&f.grid, "grid", defaults.GridSize, "grid search resolution per tilt dimension")
	flags.IntVar(&f.diameterLoops, "diameter-loops", defaults.DiameterLoops, "diameter optimization loops")
	flags.IntVar(&f.gridLoops, "grid-loops", defaults.GridSearchLoops, "grid search loops")
	flags.IntVar(&f.diameterPasses, "diameter-passes", defaults.DiameterPasses, "extra farthest-point passes of the diameter estimate")
	flags.Uint64Var(&f.seed, "seed", 0, "random seed for sampling")
	flags.IntVar(&f.parallelism, "parallelism", 0, "worker goroutines (0 = all CPUs, 1 = sequential)")
	flags.BoolVar(&f.noPCA, "no-pca", false, "do not seed the search with the principal axes")
	flags.StringVarP(&f.format, "format", "f", "text", "output format (text, json, yaml)")
	flags.StringVar(&f.stlOut, "stl", "", "write the box as binary STL to this file")
	flags.StringVar(&f.pngOut, "png", "", "render a preview of the points and the box to this PNG file")
	flags.StringVar(&f.sampleOut, "dump-sample", "", "write the sampled points to this .xyz/.txt/.csv/.pts or .bin file")
	flags.BoolVarP(&f.watch, "watch", "w", false, "recompute whenever the input changes")
	flags.DurationVar(&f.debounce, "debounce", 300*time.Millisecond, "quiet time before recomputing in watch mode")
	return cmd
}

// options starts from the configuration and applies the flags the user set
func (f *computeFlags) options(cmd *cobra.Command, st *cli) mvbb.Options {
	opts := st.cfg.Options(st.logger)
	changed := cmd.Flags().Changed
	if changed("eps") {
		opts.Eps = f.eps
	}
	if changed("samples") {
		opts.SampleSize = f.samples
	}
	if changed("grid") {
		opts.GridSize = f.grid
	}
	if changed("diameter-loops") {
		opts.DiameterLoops = f.diameterLoops
	}
	if changed("grid-loops") {
		opts.GridSearchLoops = f.gridLoops
	}
	if changed("diameter-passes") {
		opts.DiameterPasses = f.diameterPasses
	}
	if changed("seed") {
		opts.Seed = f.seed
	}
	if changed("parallelism") {
		opts.Parallelism = f.parallelism
	}
	if changed("no-pca") {
		opts.PCASeed = !f.noPCA
	}
	return opts
}

func runCompute(cmd *cobra.Command, st *cli, f *computeFlags, path string) error {
	format, err := report.ParseFormat(f.format)
	if err != nil {
		return err
	}
	opts := f.options(cmd, st)
	if err := opts.Validate(); err != nil {
		return err
	}

	run := func(ctx context.Context) error {
		points, err := pointcloud.Load(ctx, path, st.logger)
		if err != nil {
			return err
		}

		start := time.Now()
		res, err := mvbb.Compute(points, opts)
		if err != nil {
			if errors.Is(err, mvbb.ErrDegenerateInput) {
				err = errors.WithHint(err, "the input needs at least two distinct points with finite coordinates")
			}
			return errors.Wrapf(err, "computing box of %s", path)
		}

		summary := report.Summarize(path, points, res, time.Since(start))
		if err := summary.Write(cmd.OutOrStdout(), format); err != nil {
			return err
		}
		if f.stlOut != "" {
			name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + " oobb"
			if err := stl.FromOOBB(name, res.Box).WriteFile(f.stlOut); err != nil {
				return errors.Wrapf(err, "writing %s", f.stlOut)
			}
			st.logger.Info("wrote box", "file", f.stlOut)
		}
		if f.sampleOut != "" {
			if err := pointcloud.WriteFile(f.sampleOut, res.Sample); err != nil {
				return err
			}
			st.logger.Info("wrote sample", "file", f.sampleOut, "points", len(res.Sample))
		}
		if f.pngOut != "" {
			if err := writePreview(f.pngOut, points, res.Box); err != nil {
				return err
			}
			st.logger.Info("wrote preview", "file", f.pngOut)
		}
		return nil
	}

	ctx := cmd.Context()
	if !f.watch {
		return run(ctx)
	}
	return watch(ctx, st, path, f.debounce, run)
}

func writePreview(path string, points []geometry.Vector3, box geometry.OOBB) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	if err := preview.WritePNG(file, points, box, preview.DefaultOptions()); err != nil {
		_ = file.Close()
		return errors.Wrapf(err, "writing %s", path)
	}
	return errors.Wrapf(file.Close(), "closing %s", path)
}

// watchedFiles lists path and, for OpenSCAD models, every file it includes
func watchedFiles(path string, logger *slog.Logger) []string {
	if format, _ := pointcloud.FormatOf(path); format != pointcloud.SCAD {
		return []string{path}
	}
	r, scad, err := openscad.ForFile(path, logger)
	if err == nil {
		var deps []string
		if deps, err = r.ResolveDependencies(scad); err == nil {
			return deps
		}
	}
	logger.Warn("could not resolve dependencies", "file", path, "error", err)
	return []string{path}
}

// watch runs fn now and after every change of path or, for OpenSCAD
// models, any file it includes. It returns when ctx is done.
func watch(ctx context.Context, st *cli, path string, debounce time.Duration, fn func(context.Context) error) error {
	var fw *watcher.Watcher
	fw, err := watcher.New(debounce, st.logger, func(changed []string) {
		if err := fn(ctx); err != nil {
			st.logger.Error("recompute failed", "files", changed, "error", err)
		}
		// includes may have changed
		if err := fw.Replace(watchedFiles(path, st.logger)); err != nil {
			st.logger.Warn("could not watch", "error", err)
		}
	})
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fn(ctx); err != nil {
		st.logger.Error("compute failed", "file", path, "error", err)
	}
	if err := fw.Replace(watchedFiles(path, st.logger)); err != nil {
		return err
	}
	st.logger.Info("watching for changes", "file", path)
	return fw.Run(ctx)
}

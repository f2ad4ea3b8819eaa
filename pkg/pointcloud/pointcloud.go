// Package pointcloud loads point sets from text dumps, raw binary dumps,
// STL meshes and OpenSCAD models.
package pointcloud

import (
	"bufio"
	"context"
	"encoding/binary"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/philipparndt/approxmvbb/pkg/geometry"
	"github.com/philipparndt/approxmvbb/pkg/openscad"
	"github.com/philipparndt/approxmvbb/pkg/stl"
)

// ErrUnsupportedFormat is returned for unknown file extensions
var ErrUnsupportedFormat = errors.New("unsupported point cloud format")

// Format identifies an on-disk point representation
type Format int

const (
	// Text is one "x y z" triple per line, separated by blanks or commas
	Text Format = iota
	// Binary is a stream of little-endian float64 triples
	Binary
	// STL uses the distinct vertices of a mesh
	STL
	// SCAD is an OpenSCAD model rendered to STL first
	SCAD
)

func (f Format) String() string {
	switch f {
	case Text:
		return "text"
	case Binary:
		return "binary"
	case STL:
		return "stl"
	case SCAD:
		return "scad"
	}
	return "unknown"
}

// FormatOf derives the format from the file extension
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".xyz", ".csv", ".pts":
		return Text, nil
	case ".bin":
		return Binary, nil
	case ".stl":
		return STL, nil
	case ".scad":
		return SCAD, nil
	}
	return 0, errors.Wrapf(ErrUnsupportedFormat, "%s", path)
}

// Load reads the points stored in path
func Load(ctx context.Context, path string, logger *slog.Logger) ([]geometry.Vector3, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	switch format {
	case STL:
		model, err := stl.Parse(path)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing %s", path)
		}
		return model.Vertices(), nil

	case SCAD:
		return loadSCAD(ctx, path, logger)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file")
	}
	defer file.Close()

	if format == Binary {
		return ReadBinary(file)
	}
	return ReadText(file)
}

func loadSCAD(ctx context.Context, path string, logger *slog.Logger) ([]geometry.Vector3, error) {
	tmp, err := os.MkdirTemp("", "approxmvbb-*")
	if err != nil {
		return nil, errors.Wrap(err, "failed to create temp dir")
	}
	defer os.RemoveAll(tmp)

	out := filepath.Join(tmp, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))+".stl")
	r, scad, err := openscad.ForFile(path, logger)
	if err != nil {
		return nil, err
	}
	if err := r.RenderToSTL(ctx, scad, out); err != nil {
		return nil, err
	}
	model, err := stl.Parse(out)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing rendered %s", path)
	}
	return model.Vertices(), nil
}

// ReadText parses one point per line. Blank lines and lines starting with
// '#' are skipped; coordinates may be separated by blanks, tabs or commas.
func ReadText(r io.Reader) ([]geometry.Vector3, error) {
	var points []geometry.Vector3
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.FieldsFunc(text, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == ';'
		})
		if len(fields) != 3 {
			return nil, errors.Newf("line %d: expected 3 coordinates, got %d", line, len(fields))
		}
		var xyz [3]float64
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", line)
			}
			xyz[i] = v
		}
		points = append(points, geometry.NewVector3(xyz[0], xyz[1], xyz[2]))
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "error reading points")
	}
	return points, nil
}

// ReadBinary decodes little-endian float64 triples until EOF
func ReadBinary(r io.Reader) ([]geometry.Vector3, error) {
	br := bufio.NewReader(r)
	var points []geometry.Vector3
	var buf [24]byte
	for {
		n, err := io.ReadFull(br, buf[:])
		if err == io.EOF {
			return points, nil
		}
		if err != nil {
			return nil, errors.Wrapf(err, "truncated point %d (%d of 24 bytes)", len(points), n)
		}
		points = append(points, geometry.NewVector3(
			math.Float64frombits(binary.LittleEndian.Uint64(buf[0:8])),
			math.Float64frombits(binary.LittleEndian.Uint64(buf[8:16])),
			math.Float64frombits(binary.LittleEndian.Uint64(buf[16:24])),
		))
	}
}

// WriteFile writes points as a text or binary dump chosen by the extension
func WriteFile(path string, points []geometry.Vector3) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	write := WriteText
	switch format {
	case Text:
	case Binary:
		write = WriteBinary
	default:
		return errors.Wrapf(ErrUnsupportedFormat, "writing %s as %s", path, format)
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	if err := write(file, points); err != nil {
		_ = file.Close()
		return err
	}
	return errors.Wrapf(file.Close(), "failed to close %s", path)
}

// WriteText writes one "x y z" line per point with full precision
func WriteText(w io.Writer, points []geometry.Vector3) error {
	bw := bufio.NewWriter(w)
	for _, p := range points {
		bw.WriteString(strconv.FormatFloat(p.X, 'g', -1, 64))
		bw.WriteByte(' ')
		bw.WriteString(strconv.FormatFloat(p.Y, 'g', -1, 64))
		bw.WriteByte(' ')
		bw.WriteString(strconv.FormatFloat(p.Z, 'g', -1, 64))
		bw.WriteByte('\n')
	}
	return errors.Wrap(bw.Flush(), "failed to write points")
}

// WriteBinary writes little-endian float64 triples
func WriteBinary(w io.Writer, points []geometry.Vector3) error {
	bw := bufio.NewWriter(w)
	var buf [24]byte
	for _, p := range points {
		binary.LittleEndian.PutUint64(buf[0:8], math.Float64bits(p.X))
		binary.LittleEndian.PutUint64(buf[8:16], math.Float64bits(p.Y))
		binary.LittleEndian.PutUint64(buf[16:24], math.Float64bits(p.Z))
		if _, err := bw.Write(buf[:]); err != nil {
			return errors.Wrap(err, "failed to write points")
		}
	}
	return errors.Wrap(bw.Flush(), "failed to write points")
}

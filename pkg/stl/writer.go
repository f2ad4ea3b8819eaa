package stl

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/philipparndt/approxmvbb/pkg/geometry"
)

// WriteBinary encodes the model as binary STL
func (m *Model) WriteBinary(w io.Writer) error {
	bw := bufio.NewWriter(w)

	var header [80]byte
	copy(header[:], m.Name)
	if _, err := bw.Write(header[:]); err != nil {
		return errors.Wrap(err, "failed to write header")
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(m.Triangles))); err != nil {
		return errors.Wrap(err, "failed to write triangle count")
	}

	toFloat32 := func(v geometry.Vector3) [3]float32 {
		return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
	}
	for i, t := range m.Triangles {
		f := facet{Normal: toFloat32(t.Normal), V1: toFloat32(t.V1), V2: toFloat32(t.V2), V3: toFloat32(t.V3)}
		if err := binary.Write(bw, binary.LittleEndian, &f); err != nil {
			return errors.Wrapf(err, "failed to write triangle %d", i)
		}
	}
	return bw.Flush()
}

// WriteASCII encodes the model as ASCII STL
func (m *Model) WriteASCII(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "solid %s\n", m.Name)
	for _, t := range m.Triangles {
		fmt.Fprintf(bw, "  facet normal %g %g %g\n", t.Normal.X, t.Normal.Y, t.Normal.Z)
		fmt.Fprintln(bw, "    outer loop")
		for _, v := range t.Vertices() {
			fmt.Fprintf(bw, "      vertex %g %g %g\n", v.X, v.Y, v.Z)
		}
		fmt.Fprintln(bw, "    endloop")
		fmt.Fprintln(bw, "  endfacet")
	}
	fmt.Fprintf(bw, "endsolid %s\n", m.Name)
	return errors.Wrap(bw.Flush(), "failed to write ASCII STL")
}

// WriteFile writes the model as binary STL
func (m *Model) WriteFile(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "failed to create file")
	}
	if err := m.WriteBinary(file); err != nil {
		file.Close()
		return err
	}
	return errors.Wrap(file.Close(), "failed to close file")
}

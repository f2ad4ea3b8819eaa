package stl

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/philipparndt/approxmvbb/pkg/geometry"
)

// Parse reads an STL file and returns a Model.
// It automatically detects whether the file is ASCII or binary format
func Parse(filename string) (*Model, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file")
	}
	defer file.Close()

	return ParseReader(file)
}

// ParseReader reads an STL stream in either format
func ParseReader(r io.Reader) (*Model, error) {
	reader := bufio.NewReader(r)

	// ASCII files start with "solid", but so do some binary headers; a
	// binary file is recognised by a facet count that matches its size.
	header, err := reader.Peek(84)
	if err != nil && len(header) < 5 {
		return nil, errors.Wrap(err, "failed to read file header")
	}
	if strings.HasPrefix(string(header), "solid") && !looksBinary(header, reader) {
		return parseASCII(reader)
	}
	return parseBinary(reader)
}

func looksBinary(header []byte, reader *bufio.Reader) bool {
	if len(header) < 84 {
		return false
	}
	count := binary.LittleEndian.Uint32(header[80:84])
	if count == 0 {
		return false
	}
	// the first facet must be fully present and must not read as text
	first, err := reader.Peek(84 + 50)
	if err != nil {
		return false
	}
	return !bytes.Contains(first[:84], []byte("facet"))
}

// parseASCII parses an ASCII STL file
func parseASCII(reader io.Reader) (*Model, error) {
	scanner := bufio.NewScanner(reader)
	model := NewModel("")

	var currentNormal geometry.Vector3
	var vertices []geometry.Vector3
	line := 0

	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "solid":
			if len(fields) > 1 {
				model.Name = strings.Join(fields[1:], " ")
			}

		case "facet":
			if len(fields) >= 5 && fields[1] == "normal" {
				n, err := parseTriple(fields[2:5])
				if err != nil {
					return nil, errors.Wrapf(err, "line %d", line)
				}
				currentNormal = n
			}

		case "vertex":
			if len(fields) < 4 {
				return nil, errors.Newf("line %d: vertex needs three coordinates", line)
			}
			v, err := parseTriple(fields[1:4])
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", line)
			}
			vertices = append(vertices, v)

		case "endfacet":
			if len(vertices) != 3 {
				return nil, errors.Newf("line %d: facet has %d vertices", line, len(vertices))
			}
			model.AddTriangle(geometry.NewTriangle(currentNormal, vertices[0], vertices[1], vertices[2]))
			vertices = vertices[:0]
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "error reading ASCII STL")
	}

	return model, nil
}

func parseTriple(fields []string) (geometry.Vector3, error) {
	var xyz [3]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return geometry.Vector3{}, errors.Wrapf(err, "invalid coordinate %q", f)
		}
		xyz[i] = v
	}
	return geometry.NewVector3(xyz[0], xyz[1], xyz[2]), nil
}

// facet is the on-disk layout of one binary STL triangle
type facet struct {
	Normal, V1, V2, V3 [3]float32
	Attribute          uint16
}

// parseBinary parses a binary STL file
func parseBinary(reader io.Reader) (*Model, error) {
	model := NewModel("")

	header := make([]byte, 80)
	if _, err := io.ReadFull(reader, header); err != nil {
		return nil, errors.Wrap(err, "failed to read header")
	}
	model.Name = string(bytes.TrimRight(header, "\x00 "))

	var triangleCount uint32
	if err := binary.Read(reader, binary.LittleEndian, &triangleCount); err != nil {
		return nil, errors.Wrap(err, "failed to read triangle count")
	}

	toVector := func(v [3]float32) geometry.Vector3 {
		return geometry.NewVector3(float64(v[0]), float64(v[1]), float64(v[2]))
	}
	for i := uint32(0); i < triangleCount; i++ {
		var f facet
		if err := binary.Read(reader, binary.LittleEndian, &f); err != nil {
			return nil, errors.Wrapf(err, "failed to read triangle %d of %d", i, triangleCount)
		}
		model.AddTriangle(geometry.NewTriangle(toVector(f.Normal), toVector(f.V1), toVector(f.V2), toVector(f.V3)))
	}

	return model, nil
}

// Package report renders computed boxes and mesh statistics for people
// (text) and for tools (JSON, YAML).
package report

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/philipparndt/approxmvbb/pkg/geometry"
)

// Format selects the output encoding
type Format string

const (
	Text Format = "text"
	JSON Format = "json"
	YAML Format = "yaml"
)

// ParseFormat accepts text, json and yaml in any case
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case Text, JSON, YAML:
		return f, nil
	}
	return "", errors.Newf("unknown output format %q (want text, json or yaml)", s)
}

// FormatMeasurement formats a measurement with appropriate units
func FormatMeasurement(value float64, unit string) string {
	if unit == "" {
		unit = "units"
	}
	return fmt.Sprintf("%.6f %s", value, unit)
}

// FormatVector formats a 3D vector
func FormatVector(v geometry.Vector3) string {
	return fmt.Sprintf("(%.6f, %.6f, %.6f)", v.X, v.Y, v.Z)
}

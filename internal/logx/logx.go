// Package logx builds the structured loggers used by the command line tool
// and the HTTP service.
package logx

import (
	"io"
	"log/slog"
	"strings"

	"github.com/cockroachdb/errors"
)

// DefaultLevel is the level used when none is configured
var DefaultLevel = slog.LevelInfo

// ParseLevel accepts debug, info, warn and error, optionally with an
// offset such as "debug-2". The empty string yields DefaultLevel.
func ParseLevel(s string) (slog.Level, error) {
	if s == "" {
		return DefaultLevel, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, errors.Wrapf(err, "invalid log level %q", s)
	}
	return level, nil
}

// CheckFormat reports whether format names a supported handler
func CheckFormat(format string) error {
	switch strings.ToLower(format) {
	case "", "text", "json":
		return nil
	}
	return errors.Newf("invalid log format %q (want text or json)", format)
}

// New returns a logger writing to w in "text" or "json" format
func New(w io.Writer, level slog.Level, format string) (*slog.Logger, error) {
	if err := CheckFormat(format); err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

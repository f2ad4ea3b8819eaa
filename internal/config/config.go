// Package config loads the TOML configuration shared by the command line
// tool and the HTTP service.
package config

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"

	"github.com/philipparndt/approxmvbb/internal/logx"
	"github.com/philipparndt/approxmvbb/pkg/mvbb"
)

// Config is the root of the configuration file
type Config struct {
	MVBB   MVBB   `toml:"mvbb"`
	Log    Log    `toml:"log"`
	Server Server `toml:"server"`
}

// MVBB holds the approximation parameters
type MVBB struct {
	Eps             float64 `toml:"eps"`
	SampleSize      int     `toml:"sample_size"`
	GridSize        int     `toml:"grid_size"`
	DiameterLoops   int     `toml:"diameter_loops"`
	GridSearchLoops int     `toml:"grid_search_loops"`
	DiameterPasses  int     `toml:"diameter_passes"`
	Seed            uint64  `toml:"seed"`
	Parallelism     int     `toml:"parallelism"`
	PCASeed         bool    `toml:"pca_seed"`
}

// Log selects the log level and handler format
type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Server configures the HTTP service
type Server struct {
	Addr           string        `toml:"addr"`
	AllowedOrigins []string      `toml:"allowed_origins"`
	MaxPoints      int           `toml:"max_points"`
	ReadTimeout    time.Duration `toml:"read_timeout"`
	WriteTimeout   time.Duration `toml:"write_timeout"`
}

// Default returns the built-in configuration
func Default() Config {
	o := mvbb.DefaultOptions()
	return Config{
		MVBB: MVBB{
			Eps:             o.Eps,
			SampleSize:      o.SampleSize,
			GridSize:        o.GridSize,
			DiameterLoops:   o.DiameterLoops,
			GridSearchLoops: o.GridSearchLoops,
			DiameterPasses:  o.DiameterPasses,
			PCASeed:         o.PCASeed,
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
		Server: Server{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
			MaxPoints:      1_000_000,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   5 * time.Minute,
		},
	}
}

// Load reads a TOML file on top of the defaults. Unknown keys are an
// error so that typos do not go unnoticed.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, errors.Wrapf(err, "loading config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.WithHint(
			errors.Newf("config %s: unknown keys %s", path, strings.Join(keys, ", ")),
			"see the README for the supported sections [mvbb], [log] and [server]")
	}
	return cfg, cfg.Validate()
}

// Validate checks every section
func (c Config) Validate() error {
	if err := c.Options(nil).Validate(); err != nil {
		return errors.Wrap(err, "[mvbb]")
	}
	if _, err := logx.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(err, "[log]")
	}
	if err := logx.CheckFormat(c.Log.Format); err != nil {
		return errors.Wrap(err, "[log]")
	}
	if c.Server.Addr == "" {
		return errors.New("[server]: addr must not be empty")
	}
	if c.Server.MaxPoints <= 0 {
		return errors.Newf("[server]: max_points must be positive, got %d", c.Server.MaxPoints)
	}
	return nil
}

// Options converts the [mvbb] section
func (c Config) Options(logger *slog.Logger) mvbb.Options {
	return mvbb.Options{
		Eps:             c.MVBB.Eps,
		SampleSize:      c.MVBB.SampleSize,
		GridSize:        c.MVBB.GridSize,
		DiameterLoops:   c.MVBB.DiameterLoops,
		GridSearchLoops: c.MVBB.GridSearchLoops,
		DiameterPasses:  c.MVBB.DiameterPasses,
		Seed:            c.MVBB.Seed,
		Parallelism:     c.MVBB.Parallelism,
		PCASeed:         c.MVBB.PCASeed,
		Logger:          logger,
	}
}

// Logger builds the logger described by the [log] section
func (c Config) Logger(w io.Writer) (*slog.Logger, error) {
	level, err := logx.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}
	return logx.New(w, level, c.Log.Format)
}

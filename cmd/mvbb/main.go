package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/philipparndt/approxmvbb/internal/config"
	"github.com/philipparndt/approxmvbb/version"
)

// cli carries what the persistent flags resolve to
type cli struct {
	configFile string
	logLevel   string
	logFormat  string

	cfg    config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	st := &cli{cfg: config.Default()}

	rootCmd := &cobra.Command{
		Use:   "mvbb",
		Short: "Approximate minimum-volume oriented bounding boxes of 3D point sets",
		Long: `mvbb computes a tight oriented bounding box around a point cloud or the
vertices of an STL or OpenSCAD model. The orientation is searched on a
representative sample; the final box always contains every input point.`,
		Version:       version.GetFullVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return st.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&st.configFile, "config", "", "TOML configuration file")
	flags.StringVar(&st.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&st.logFormat, "log-format", "", "log format (text, json)")

	rootCmd.AddCommand(
		newComputeCmd(st),
		newInfoCmd(st),
		newServeCmd(st),
		newCompletionCmd(rootCmd),
		newVersionCmd(),
	)
	return rootCmd
}

// setup loads the configuration and builds the logger; flags win over the
// file
func (st *cli) setup(cmd *cobra.Command) error {
	if st.configFile != "" {
		cfg, err := config.Load(st.configFile)
		if err != nil {
			return err
		}
		st.cfg = cfg
	}
	if cmd.Flags().Changed("log-level") {
		st.cfg.Log.Level = st.logLevel
	}
	if cmd.Flags().Changed("log-format") {
		st.cfg.Log.Format = st.logFormat
	}

	logger, err := st.cfg.Logger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	st.logger = logger
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		os.Exit(1)
	}
}

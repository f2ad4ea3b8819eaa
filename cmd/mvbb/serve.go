package main

import (
	"github.com/spf13/cobra"

	"github.com/philipparndt/approxmvbb/internal/server"
)

func newServeCmd(st *cli) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the box computation over HTTP",
		Long: `Start an HTTP service.

  POST /v1/oobb   {"points": [[x, y, z], ...], "options": {...}}
  GET  /healthz
  GET  /version`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := st.cfg
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return server.New(cfg, st.logger).ListenAndServe(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}

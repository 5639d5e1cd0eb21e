package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hyperifyio/wordfreq/internal/app"
	"github.com/hyperifyio/wordfreq/internal/server"
)

func newServeCmd(ro *rootOptions) *cobra.Command {
	var (
		addr string
		pf   *pipelineFlags
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web UI",
		Long:  "Serve a form that charts any submitted URL, a JSON API at /api/analyze, /healthz and Prometheus /metrics.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, ro, pf)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			a, err := app.New(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			srv := server.New(server.Options{
				Addr:      a.Config().Addr,
				Analyzer:  a.Analyzer(),
				Renderers: a.Renderers(),
				Defaults:  a.RenderConfig(),
			})
			return srv.Run(ctx)
		},
	}
	pf = addPipelineFlags(cmd)
	cmd.Flags().StringVar(&addr, "addr", app.Defaults().Addr, "Listen address")
	return cmd
}

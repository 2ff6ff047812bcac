package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"wk-scan/api"
)

func newServeCmd(a *app) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the command surface over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr := a.settings.Listen
			if cmd.Flags().Changed("listen") {
				addr = listen
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			a.log.Infof("serving work_dir=%q language=%q", a.settings.WorkDir, a.settings.Language)
			return api.Serve(ctx, addr, api.NewRouter(a.svc, a.log), a.log)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "HTTP listen address (overrides settings listen).")
	return cmd
}

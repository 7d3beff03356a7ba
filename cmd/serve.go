package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"legal-lens/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		p, closeFn, err := newPipeline(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		return server.NewServer(cfg.Server, p).Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

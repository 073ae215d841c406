package main

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/sandevgo/medgraph/pkg/log"
	"github.com/sandevgo/medgraph/pkg/srv"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the MedGraph services",
	Long:  `Initializes storage, the graph store, the tool registry and the agent, then serves the HTTP API (and the MCP stdio transport when enabled).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Msg("starting medgraph")

		services := NewServices(ctx)

		srv.StartServices(ctx, services)

		srv.ShutdownServices(ctx, services)
		logger.Info().Msg("medgraph has been shut down gracefully")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}

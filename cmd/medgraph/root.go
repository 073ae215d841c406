package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/sandevgo/medgraph/internal/config"
	"github.com/sandevgo/medgraph/pkg/log"
)

var (
	debug bool
)

var rootCmd = &cobra.Command{
	Use:   "medgraph",
	Short: "MedGraph — a medical records agent backend",
	Long:  `MedGraph answers questions about patient records by planning tool calls over a per-patient knowledge graph.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", config.IsDebug(), "enable debug logging")
}

func setupLogger(ctx context.Context) (context.Context, func()) {
	isDebug := debug || config.IsDebug()
	return log.NewContextWithLogger(ctx, isDebug)
}

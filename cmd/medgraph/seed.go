package main

import (
	"github.com/spf13/cobra"

	"github.com/sandevgo/medgraph/internal/config"
	"github.com/sandevgo/medgraph/internal/storage/sqlite"
	"github.com/sandevgo/medgraph/pkg/log"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo patient records into the local database",
	Long:  `Creates the runtime database if needed and inserts a small set of demo patients with conditions, medications, symptoms and lab results. Safe to run repeatedly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
			return err
		}
		cfg := config.NewAppConfig(ctx)

		db, err := sqlite.NewDB(ctx, cfg.GetDatabasePath())
		if err != nil {
			return err
		}
		defer db.Close()

		if err := sqlite.Seed(ctx, db); err != nil {
			return err
		}

		log.FromCtx(ctx).Info().Str("db", cfg.GetDatabasePath()).Msg("demo records loaded")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

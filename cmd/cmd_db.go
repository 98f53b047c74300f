// Copyright 2026 The Handyman Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/nitchau/handyman-sub001/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database maintenance",
}

var dbInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the tables used by the API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		if err := store.CreateSchema(cmd.Context(), db); err != nil {
			return err
		}

		logger.Info("schema ready", zap.String("driver", cfg.Database.Driver))

		return nil
	},
}

var dbSeedOptions struct {
	Force bool
}

var dbSeedCmd = &cobra.Command{
	Use:   "seed FILE",
	Short: "Load users, contractors and designs from a JSON seed file",
	Long: `
Loads a seed file into the database, creating the schema first. By default
nothing is loaded when users already exist; --force imports anyway.
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := store.CreateSchema(ctx, db); err != nil {
			return err
		}

		if dbSeedOptions.Force {
			n, err := store.ImportFromJSON(ctx, db, args[0])
			if err != nil {
				return err
			}

			logger.Info("database seeded", zap.Int("rows", n))
			invalidateFeaturedCache(ctx, db)

			return nil
		}

		seeded, n, err := store.SeedIfEmpty(ctx, db, args[0])
		if err != nil {
			return err
		}

		if !seeded {
			logger.Info("database already has users, skipping seed", zap.Int("users", n))

			return nil
		}

		logger.Info("database seeded", zap.Int("rows", n))
		invalidateFeaturedCache(ctx, db)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(dbInitCmd)
	dbCmd.AddCommand(dbSeedCmd)
	dbSeedCmd.Flags().BoolVar(
		&dbSeedOptions.Force,
		"force",
		false,
		"Import even when the database already has users",
	)
}

// Copyright 2026 The Handyman Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/nitchau/handyman-sub001/location"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var contractorsCmd = &cobra.Command{
	Use:   "contractors",
	Short: "Contractor maintenance",
}

var contractorsReindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Recompute the H3 cell of every contractor with coordinates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		var bar *progressbar.ProgressBar
		if isatty.IsTerminal(os.Stderr.Fd()) {
			bar = progressbar.NewOptions(-1,
				progressbar.OptionSetDescription("Reindexing contractors"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}

		onProgress := func() {
			if bar != nil {
				_ = bar.Add(1)
			}
		}

		n, err := location.NewWriter(db, logger, nil).ReindexContractorCells(cmd.Context(), onProgress)
		if bar != nil {
			_ = bar.Finish()
		}

		if err != nil {
			return err
		}

		logger.Info("contractors reindexed", zap.Int("updated", n))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(contractorsCmd)
	contractorsCmd.AddCommand(contractorsReindexCmd)
}

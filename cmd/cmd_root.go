// Copyright 2026 The Handyman Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/nitchau/handyman-sub001/config"
	"github.com/nitchau/handyman-sub001/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootOptions struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string
}

var (
	cfg    *config.Config
	logger = zap.NewNop()

	restoreLogging = func() {}
)

var rootCmd = &cobra.Command{
	Use:   "handyman",
	Short: "home improvement marketplace API",
	Long: `
handyman serves the marketplace API: reverse geocoding, quote requests,
user and contractor locations, profiles, featured designs and the
generative assistant. It also carries maintenance commands for the database.
`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		var err error

		cfg, err = config.Load(rootOptions.ConfigPath)
		if err != nil {
			return err
		}

		if rootOptions.LogLevel != "" {
			cfg.Log.Level = rootOptions.LogLevel
		}

		if rootOptions.LogFormat != "" {
			cfg.Log.Format = rootOptions.LogFormat
		}

		logger, err = logging.New(cfg.Log.Level, cfg.Log.Format)
		if err != nil {
			return err
		}

		restoreLogging = logging.Install(logger)
		logger.Debug("configuration loaded", zap.String("version", Version), zap.String("db_driver", cfg.Database.Driver))

		return nil
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		_ = logger.Sync()
		restoreLogging()
	},
}

var Version = "dev"

func Execute(version string) {
	Version = version
	rootCmd.Version = version

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SilenceErrors = true
	rootCmd.PersistentFlags().StringVar(
		&rootOptions.ConfigPath,
		"config",
		"",
		"Path to a YAML configuration file (default: ./config.yaml when present)",
	)
	rootCmd.PersistentFlags().StringVar(
		&rootOptions.LogLevel,
		"log-level",
		"",
		"Log level (debug, info, warn, error); overrides log.level",
	)
	rootCmd.PersistentFlags().StringVar(
		&rootOptions.LogFormat,
		"log-format",
		"",
		"Log format (auto, json, console); overrides log.format",
	)
}

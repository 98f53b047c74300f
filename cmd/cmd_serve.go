// Copyright 2026 The Handyman Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/nitchau/handyman-sub001/assistant"
	"github.com/nitchau/handyman-sub001/location"
	"github.com/nitchau/handyman-sub001/metrics"
	"github.com/nitchau/handyman-sub001/quote"
	"github.com/nitchau/handyman-sub001/server"
	"github.com/nitchau/handyman-sub001/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveOptions struct {
	Addr       string
	InitSchema bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		if serveOptions.InitSchema {
			if err := store.CreateSchema(ctx, db); err != nil {
				return err
			}
		}

		m := metrics.New()

		var designs store.DesignRepository = store.NewDesignRepository(db)

		if cfg.Redis.Addr != "" {
			rdb := newRedisClient()
			defer rdb.Close()

			if err := rdb.Ping(ctx).Err(); err != nil {
				logger.Warn("redis unreachable, featured designs are served uncached for now", zap.Error(err))
			}

			designs = store.NewCachedDesigns(designs, rdb, cfg.Redis.TTL, logger)
		}

		chat, structured := assistant.SettingsFromConfig(cfg.Assistant)
		models := assistant.NewRegistry(chat, structured, cfg.Assistant.BaseURL, logger)

		srv := server.NewServer(server.Deps{
			Geocoder:    newGeocodeService(ctx, m),
			Locations:   location.NewWriter(db, logger, m),
			Quotes:      quote.NewRepository(db),
			Profiles:    store.NewProfileRepository(db),
			Designs:     designs,
			Contractors: store.NewContractorRepository(db),
			Assistant:   assistant.NewService(models, logger, m),
			Logger:      logger,
			Metrics:     m,
		})

		addr := cfg.Server.Addr
		if serveOptions.Addr != "" {
			addr = serveOptions.Addr
		}

		if err := srv.Run(ctx, addr, cfg.Server.ReadTimeout, cfg.Server.WriteTimeout); err != nil {
			return fmt.Errorf("serving on %s: %w", addr, err)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(
		&serveOptions.Addr,
		"addr",
		"",
		"Listen address; overrides server.addr",
	)
	serveCmd.Flags().BoolVar(
		&serveOptions.InitSchema,
		"init-schema",
		false,
		"Create missing tables before serving",
	)
}

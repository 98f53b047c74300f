// Copyright 2026 The Handyman Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/nitchau/handyman-sub001/geocode"
	"github.com/nitchau/handyman-sub001/metrics"
	"github.com/nitchau/handyman-sub001/store"
	"github.com/nitchau/handyman-sub001/utils/httputils"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const geocodingProvider = "google"

func openDB(ctx context.Context) (*sql.DB, error) {
	db, err := store.Open(cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to %s database: %w", cfg.Database.Driver, err)
	}

	return db, nil
}

// newGeocodeService builds the reverse geocoding service. When no key is
// configured it is looked up through Application Default Credentials; a
// failed lookup leaves the key empty and every call will fail upstream.
func newGeocodeService(ctx context.Context, m *metrics.Metrics) *geocode.Service {
	gc := cfg.Geocoding

	apiKey := gc.APIKey
	if apiKey == "" {
		logger.Info("geocoding API key is not set, trying Application Default Credentials")

		var err error

		apiKey, err = geocode.ResolveAPIKey(ctx, gc.KeyDisplayName, gc.ProjectID)
		if err != nil {
			logger.Warn("geocoding API key unavailable; reverse geocoding will fail", zap.Error(err))
		} else {
			logger.Info("geocoding API key retrieved via ADC")
		}
	}

	var trace io.Writer
	if gc.Trace {
		trace = os.Stderr
	}

	client := httputils.NewClient(gc.Timeout, map[string]string{"User-Agent": gc.UserAgent}, trace, "key")

	geocoder := geocode.NewGoogleMapsGeocoder(apiKey, gc.BaseURL, client)

	return geocode.NewService(geocoder, geocodingProvider, logger, m)
}

func newRedisClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// invalidateFeaturedCache drops the cached featured lists after the designs
// table changed. Failures are logged; stale entries still expire with the TTL.
func invalidateFeaturedCache(ctx context.Context, db *sql.DB) {
	if cfg.Redis.Addr == "" {
		return
	}

	rdb := newRedisClient()
	defer rdb.Close()

	cache := store.NewCachedDesigns(store.NewDesignRepository(db), rdb, cfg.Redis.TTL, logger)
	if err := cache.InvalidateFeatured(ctx); err != nil {
		logger.Warn("could not invalidate featured designs cache", zap.Error(err))

		return
	}

	logger.Debug("featured designs cache invalidated")
}

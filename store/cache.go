// Copyright 2026 The Handyman Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const featuredKeyPrefix = "designs:featured:"

// CachedDesigns is a read-through redis cache in front of a DesignRepository.
// Cache failures are logged and the repository answers instead.
type CachedDesigns struct {
	next   DesignRepository
	rdb    redis.Cmdable
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedDesigns wraps next with a cache whose entries live for ttl.
func NewCachedDesigns(next DesignRepository, rdb redis.Cmdable, ttl time.Duration, logger *zap.Logger) *CachedDesigns {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &CachedDesigns{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

func (c *CachedDesigns) ListFeatured(ctx context.Context, limit int) ([]*Design, error) {
	key := fmt.Sprintf("%s%d", featuredKeyPrefix, limit)

	cached, err := c.rdb.Get(ctx, key).Bytes()

	switch {
	case err == nil:
		var designs []*Design
		if err := json.Unmarshal(cached, &designs); err == nil {
			return designs, nil
		}

		c.logger.Warn("discarding corrupt cache entry", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("featured designs cache read failed", zap.String("key", key), zap.Error(err))
	}

	designs, err := c.next.ListFeatured(ctx, limit)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(designs)
	if err != nil {
		return nil, fmt.Errorf("encoding featured designs: %w", err)
	}

	if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("featured designs cache write failed", zap.String("key", key), zap.Error(err))
	}

	return designs, nil
}

// InvalidateFeatured drops every cached featured list.
func (c *CachedDesigns) InvalidateFeatured(ctx context.Context) error {
	keys, err := c.rdb.Keys(ctx, featuredKeyPrefix+"*").Result()
	if err != nil {
		return fmt.Errorf("listing cache keys: %w", err)
	}

	if len(keys) == 0 {
		return nil
	}

	return c.rdb.Del(ctx, keys...).Err()
}

// Copyright 2026 The Handyman Authors
// SPDX-License-Identifier: Apache-2.0

// Package store opens the marketplace database and reads the records the API
// exposes: profiles, contractors and featured designs.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	_ "github.com/lib/pq"              // register postgres driver
	"github.com/nitchau/handyman-sub001/config"
)

// ErrNotFound is returned when a looked up record does not exist.
var ErrNotFound = errors.New("record not found")

// Open opens the configured database and applies the pool limits.
func Open(cfg config.DatabaseConfig) (*sql.DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", cfg.Driver, err)
	}

	if cfg.MaxConnections > 0 {
		db.SetMaxOpenConns(cfg.MaxConnections)
	}

	if cfg.MaxIdle > 0 {
		db.SetMaxIdleConns(cfg.MaxIdle)
	}

	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		db.SetConnMaxIdleTime(cfg.ConnMaxLifetime)
	}

	return db, nil
}

// CreateSchema creates the tables used by the API. The statements only use
// types and syntax shared by Postgres and DuckDB.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			full_name TEXT NOT NULL DEFAULT '',
			email TEXT,
			role TEXT NOT NULL DEFAULT 'homeowner',
			avatar_url TEXT,
			latitude FLOAT8 CHECK (latitude BETWEEN -90 AND 90),
			longitude FLOAT8 CHECK (longitude BETWEEN -180 AND 180),
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS contractors (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			business_name TEXT NOT NULL,
			trade TEXT NOT NULL DEFAULT '',
			rating FLOAT8,
			latitude FLOAT8 CHECK (latitude BETWEEN -90 AND 90),
			longitude FLOAT8 CHECK (longitude BETWEEN -180 AND 180),
			service_radius_miles FLOAT8 CHECK (service_radius_miles >= 0),
			h3_cell BIGINT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS designs (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT,
			image_url TEXT NOT NULL,
			style TEXT,
			room TEXT,
			contractor_id TEXT,
			is_featured BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS quote_requests (
			id TEXT PRIMARY KEY,
			contractor_id TEXT NOT NULL,
			description TEXT NOT NULL,
			timeline TEXT NOT NULL,
			zip_code TEXT NOT NULL,
			sender_name TEXT,
			sender_email TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS quote_requests_contractor_idx ON quote_requests (contractor_id);
	`)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	return nil
}

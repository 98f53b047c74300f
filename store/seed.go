// Copyright 2026 The Handyman Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/nitchau/handyman-sub001/spatial"
)

// SeedData is the JSON seed file format used for demo and local databases.
type SeedData struct {
	Version     string           `json:"version"`
	LastUpdated time.Time        `json:"last_updated"`
	Users       []SeedUser       `json:"users"`
	Contractors []SeedContractor `json:"contractors"`
	Designs     []SeedDesign     `json:"designs"`
}

type SeedUser struct {
	ID       string         `json:"id"`
	FullName string         `json:"full_name"`
	Email    string         `json:"email,omitempty"`
	Role     string         `json:"role"`
	Location *spatial.Point `json:"location,omitempty"`
}

type SeedContractor struct {
	ID                 string         `json:"id"`
	UserID             string         `json:"user_id"`
	BusinessName       string         `json:"business_name"`
	Trade              string         `json:"trade"`
	Rating             *float64       `json:"rating,omitempty"`
	ServiceRadiusMiles *float64       `json:"service_radius_miles,omitempty"`
	Location           *spatial.Point `json:"location,omitempty"`
}

type SeedDesign struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	ImageURL     string `json:"image_url"`
	Style        string `json:"style,omitempty"`
	Room         string `json:"room,omitempty"`
	ContractorID string `json:"contractor_id,omitempty"`
	Featured     bool   `json:"featured"`
}

// ImportFromJSON loads a seed file in a single transaction and returns the
// number of rows inserted.
func ImportFromJSON(ctx context.Context, db *sql.DB, path string) (int, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path is provided by the operator
	if err != nil {
		return 0, fmt.Errorf("reading file: %w", err)
	}

	var seed SeedData
	if err := json.Unmarshal(data, &seed); err != nil {
		return 0, fmt.Errorf("parsing JSON: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}

	n, err := insertSeed(ctx, tx, &seed)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return 0, errors.Join(err, rbErr)
		}

		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing seed: %w", err)
	}

	return n, nil
}

func latLng(p *spatial.Point) (sql.NullFloat64, sql.NullFloat64) {
	if p == nil {
		return sql.NullFloat64{}, sql.NullFloat64{}
	}

	return sql.NullFloat64{Float64: p.Lat, Valid: true}, sql.NullFloat64{Float64: p.Lng, Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}

	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func insertSeed(ctx context.Context, tx *sql.Tx, seed *SeedData) (int, error) {
	inserted := 0

	for _, u := range seed.Users {
		lat, lng := latLng(u.Location)

		_, err := tx.ExecContext(ctx, `
			INSERT INTO users (id, full_name, email, role, latitude, longitude)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, u.ID, u.FullName, nullString(u.Email), u.Role, lat, lng)
		if err != nil {
			return 0, fmt.Errorf("inserting user %s: %w", u.ID, err)
		}

		inserted++
	}

	for _, c := range seed.Contractors {
		lat, lng := latLng(c.Location)

		var cell sql.NullInt64

		if c.Location != nil {
			h, err := c.Location.Cell(spatial.CellResolution)
			if err != nil {
				return 0, fmt.Errorf("contractor %s: %w", c.ID, err)
			}

			cell = sql.NullInt64{Int64: int64(h), Valid: true}
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO contractors (id, user_id, business_name, trade, rating, latitude, longitude, service_radius_miles, h3_cell)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, c.ID, c.UserID, c.BusinessName, c.Trade, nullFloat(c.Rating), lat, lng, nullFloat(c.ServiceRadiusMiles), cell)
		if err != nil {
			return 0, fmt.Errorf("inserting contractor %s: %w", c.ID, err)
		}

		inserted++
	}

	for _, d := range seed.Designs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO designs (id, title, description, image_url, style, room, contractor_id, is_featured)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, d.ID, d.Title, nullString(d.Description), d.ImageURL, nullString(d.Style), nullString(d.Room), nullString(d.ContractorID), d.Featured)
		if err != nil {
			return 0, fmt.Errorf("inserting design %s: %w", d.ID, err)
		}

		inserted++
	}

	return inserted, nil
}

// SeedIfEmpty imports the seed file when the users table is empty. It
// returns whether it seeded and how many rows were inserted or found.
func SeedIfEmpty(ctx context.Context, db *sql.DB, path string) (bool, int, error) {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT count(*) FROM users`).Scan(&count); err != nil {
		return false, 0, fmt.Errorf("counting users: %w", err)
	}

	if count > 0 {
		return false, count, nil
	}

	n, err := ImportFromJSON(ctx, db, path)
	if err != nil {
		return false, 0, err
	}

	return true, n, nil
}

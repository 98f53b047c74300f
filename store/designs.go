// Copyright 2026 The Handyman Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Design is a finished project showcased on the marketing pages.
type Design struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	ImageURL     string    `json:"image_url"`
	Style        string    `json:"style,omitempty"`
	Room         string    `json:"room,omitempty"`
	ContractorID string    `json:"contractor_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// DesignRepository lists designs.
type DesignRepository interface {
	// ListFeatured returns the newest featured designs first.
	ListFeatured(ctx context.Context, limit int) ([]*Design, error)
}

type sqlDesignRepository struct {
	db *sql.DB
}

// NewDesignRepository creates a new design repository.
func NewDesignRepository(db *sql.DB) DesignRepository {
	return &sqlDesignRepository{db: db}
}

func (r *sqlDesignRepository) ListFeatured(ctx context.Context, limit int) ([]*Design, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, description, image_url, style, room, contractor_id, created_at
		FROM designs
		WHERE is_featured
		ORDER BY created_at DESC, id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing featured designs: %w", err)
	}
	defer rows.Close()

	designs := []*Design{}

	for rows.Next() {
		var (
			d                                      Design
			description, style, room, contractorID sql.NullString
		)

		if err := rows.Scan(&d.ID, &d.Title, &description, &d.ImageURL, &style, &room, &contractorID, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning design: %w", err)
		}

		d.Description = description.String
		d.Style = style.String
		d.Room = room.String
		d.ContractorID = contractorID.String
		designs = append(designs, &d)
	}

	return designs, rows.Err()
}

// Copyright 2026 The Handyman Authors
// SPDX-License-Identifier: Apache-2.0

package quote

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Record is a stored quote request.
type Record struct {
	ID           string `json:"id"`
	ContractorID string `json:"contractor_id"`
	Request
	CreatedAt time.Time `json:"created_at"`
}

// Repository handles persistence of quote requests.
type Repository interface {
	// Create stores an already validated request addressed to a contractor.
	Create(ctx context.Context, contractorID string, req *Request) (*Record, error)

	// ListForContractor returns the newest requests first.
	ListForContractor(ctx context.Context, contractorID string, limit int) ([]*Record, error)
}

type sqlRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewRepository creates a new quote request repository.
func NewRepository(db *sql.DB) Repository {
	return &sqlRepository{db: db, now: time.Now}
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (r *sqlRepository) Create(ctx context.Context, contractorID string, req *Request) (*Record, error) {
	if req == nil {
		return nil, errors.New("quote request can't be nil")
	}

	rec := &Record{
		ID:           uuid.NewString(),
		ContractorID: contractorID,
		Request:      *req,
		CreatedAt:    r.now().UTC(),
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO quote_requests (
			id, contractor_id, description, timeline, zip_code,
			sender_name, sender_email, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		rec.ID,
		rec.ContractorID,
		rec.Description,
		string(rec.Timeline),
		rec.ZipCode,
		nullable(rec.SenderName),
		nullable(rec.SenderEmail),
		rec.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting quote request: %w", err)
	}

	return rec, nil
}

func (r *sqlRepository) ListForContractor(ctx context.Context, contractorID string, limit int) ([]*Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, contractor_id, description, timeline, zip_code,
		       sender_name, sender_email, created_at
		FROM quote_requests
		WHERE contractor_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, contractorID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing quote requests: %w", err)
	}
	defer rows.Close()

	var records []*Record

	for rows.Next() {
		var (
			rec                     Record
			timeline                string
			senderName, senderEmail sql.NullString
		)

		if err := rows.Scan(
			&rec.ID,
			&rec.ContractorID,
			&rec.Description,
			&timeline,
			&rec.ZipCode,
			&senderName,
			&senderEmail,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning quote request: %w", err)
		}

		rec.Timeline = Timeline(timeline)
		rec.SenderName = senderName.String
		rec.SenderEmail = senderEmail.String
		records = append(records, &rec)
	}

	return records, rows.Err()
}

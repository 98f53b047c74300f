// Copyright 2026 The Handyman Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nitchau/handyman-sub001/spatial"
)

// Profile is a user as shown on the dashboard, with the contractor listing
// when the user runs one.
type Profile struct {
	ID         string             `json:"id"`
	FullName   string             `json:"full_name"`
	Email      string             `json:"email,omitempty"`
	Role       string             `json:"role"`
	AvatarURL  string             `json:"avatar_url,omitempty"`
	Location   *spatial.Point     `json:"location,omitempty"`
	Contractor *ContractorProfile `json:"contractor,omitempty"`
}

// ContractorProfile is the business side of a contractor user.
type ContractorProfile struct {
	ID                 string         `json:"id"`
	BusinessName       string         `json:"business_name"`
	Trade              string         `json:"trade"`
	Rating             *float64       `json:"rating,omitempty"`
	ServiceRadiusMiles *float64       `json:"service_radius_miles,omitempty"`
	Location           *spatial.Point `json:"location,omitempty"`
}

// ProfileRepository looks profiles up.
type ProfileRepository interface {
	// GetProfile returns ErrNotFound when no user has the id.
	GetProfile(ctx context.Context, id string) (*Profile, error)
}

type sqlProfileRepository struct {
	db *sql.DB
}

// NewProfileRepository creates a new profile repository.
func NewProfileRepository(db *sql.DB) ProfileRepository {
	return &sqlProfileRepository{db: db}
}

func point(lat, lng sql.NullFloat64) *spatial.Point {
	if !lat.Valid || !lng.Valid {
		return nil
	}

	return &spatial.Point{Lat: lat.Float64, Lng: lng.Float64}
}

func float(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}

	return &f.Float64
}

func (r *sqlProfileRepository) GetProfile(ctx context.Context, id string) (*Profile, error) {
	var (
		p                  Profile
		email, avatar      sql.NullString
		lat, lng           sql.NullFloat64
		cID, cName, cTrade sql.NullString
		cRating, cRadius   sql.NullFloat64
		cLat, cLng         sql.NullFloat64
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT u.id, u.full_name, u.email, u.role, u.avatar_url, u.latitude, u.longitude,
		       c.id, c.business_name, c.trade, c.rating, c.service_radius_miles,
		       c.latitude, c.longitude
		FROM users u
		LEFT JOIN contractors c ON c.user_id = u.id
		WHERE u.id = $1
		LIMIT 1
	`, id).Scan(
		&p.ID, &p.FullName, &email, &p.Role, &avatar, &lat, &lng,
		&cID, &cName, &cTrade, &cRating, &cRadius, &cLat, &cLng,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("profile %s: %w", id, ErrNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("querying profile %s: %w", id, err)
	}

	p.Email = email.String
	p.AvatarURL = avatar.String
	p.Location = point(lat, lng)

	if cID.Valid {
		p.Contractor = &ContractorProfile{
			ID:                 cID.String,
			BusinessName:       cName.String,
			Trade:              cTrade.String,
			Rating:             float(cRating),
			ServiceRadiusMiles: float(cRadius),
			Location:           point(cLat, cLng),
		}
	}

	return &p, nil
}

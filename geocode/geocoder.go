// Copyright 2026 The Handyman Authors
// SPDX-License-Identifier: Apache-2.0

// Package geocode turns coordinates into normalized addresses.
package geocode

import (
	"context"

	"github.com/nitchau/handyman-sub001/spatial"
)

// Address is a normalized reverse geocoding result from any provider.
type Address struct {
	FormattedAddress string  `json:"formatted_address"`
	StreetNumber     string  `json:"street_number,omitempty"`
	Route            string  `json:"route,omitempty"`
	Neighborhood     string  `json:"neighborhood,omitempty"`
	Locality         string  `json:"locality,omitempty"`
	County           string  `json:"county,omitempty"`
	Region           string  `json:"region,omitempty"`
	RegionCode       string  `json:"region_code,omitempty"`
	PostalCode       string  `json:"postal_code,omitempty"`
	Country          string  `json:"country,omitempty"`
	CountryCode      string  `json:"country_code,omitempty"`
	PlaceID          string  `json:"place_id,omitempty"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	Confidence       string  `json:"confidence"` // high, medium, low
	Provider         string  `json:"provider"`
}

// ReverseGeocoder interface for different geocoding providers.
type ReverseGeocoder interface {
	Reverse(ctx context.Context, p spatial.Point) (*Address, error)
}

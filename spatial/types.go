// Copyright 2026 The Handyman Authors
//
// SPDX-License-Identifier: Apache-2.0
package spatial

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/nitchau/handyman-sub001/apperr"
	"github.com/uber/h3-go/v4"
)

const (
	earthRadius   = 6371e3 // meters
	metersPerMile = 1609.344

	// CellResolution is the H3 resolution stored next to contractor coordinates.
	// Resolution 7 cells are ~5 km², about the size of a neighbourhood.
	CellResolution = 7
)

// Point represents a geographical point with latitude and longitude.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// String returns a string representation of the Point.
func (p Point) String() string {
	return fmt.Sprintf("POINT(%f %f)", p.Lng, p.Lat)
}

// ParsePoint parses a latitude/longitude pair of decimal strings. Both values
// must be finite numbers; ranges are not checked here.
func ParsePoint(latRaw, lngRaw string) (Point, error) {
	lat, err := parseCoordinate(latRaw)
	if err != nil {
		return Point{}, fmt.Errorf("latitude: %w", err)
	}

	lng, err := parseCoordinate(lngRaw)
	if err != nil {
		return Point{}, fmt.Errorf("longitude: %w", err)
	}

	return Point{Lat: lat, Lng: lng}, nil
}

func parseCoordinate(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number: %w", raw, apperr.ErrInvalidInput)
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number: %w", raw, apperr.ErrInvalidInput)
	}

	return v, nil
}

// Validate checks that the point is finite and inside the WGS84 ranges.
func (p Point) Validate() error {
	if math.IsNaN(p.Lat) || math.IsInf(p.Lat, 0) || math.IsNaN(p.Lng) || math.IsInf(p.Lng, 0) {
		return fmt.Errorf("coordinates must be finite numbers: %w", apperr.ErrInvalidInput)
	}

	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("latitude must be between -90 and 90 (got %f): %w", p.Lat, apperr.ErrInvalidInput)
	}

	if p.Lng < -180 || p.Lng > 180 {
		return fmt.Errorf("longitude must be between -180 and 180 (got %f): %w", p.Lng, apperr.ErrInvalidInput)
	}

	return nil
}

// Cell returns the H3 cell containing the point at the given resolution.
func (p Point) Cell(res int) (h3.Cell, error) {
	cell, err := h3.LatLngToCell(h3.NewLatLng(p.Lat, p.Lng), res)
	if err != nil {
		return 0, fmt.Errorf("converting to h3 cell at res %d: %w", res, err)
	}

	return cell, nil
}

// HaversineDistance calculates the distance between two points on Earth in meters.
func (p Point) HaversineDistance(other Point) float64 {
	lat1 := p.Lat * math.Pi / 180
	lat2 := other.Lat * math.Pi / 180
	dLat := (other.Lat - p.Lat) * math.Pi / 180
	dLng := (other.Lng - p.Lng) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}

// DistanceMiles is HaversineDistance expressed in statute miles.
func (p Point) DistanceMiles(other Point) float64 {
	return p.HaversineDistance(other) / metersPerMile
}

// Copyright 2026 The Handyman Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sort"

	"github.com/nitchau/handyman-sub001/spatial"
	"github.com/nitchau/handyman-sub001/utils/textutil"
	"github.com/uber/h3-go/v4"
)

// DefaultServiceRadiusMiles applies to contractors that never set a radius.
const DefaultServiceRadiusMiles = 25.0

// NearbyContractor is a contractor whose service area covers a point.
type NearbyContractor struct {
	ID                 string        `json:"id"`
	BusinessName       string        `json:"business_name"`
	Trade              string        `json:"trade"`
	Rating             *float64      `json:"rating,omitempty"`
	Location           spatial.Point `json:"location"`
	ServiceRadiusMiles float64       `json:"service_radius_miles"`
	DistanceMiles      float64       `json:"distance_miles"`
}

// ContractorRepository searches contractors.
type ContractorRepository interface {
	// Nearby returns the contractors serving p, closest first. An empty trade
	// matches every trade; otherwise it is compared ignoring case and accents.
	Nearby(ctx context.Context, p spatial.Point, trade string, limit int) ([]*NearbyContractor, error)
}

type sqlContractorRepository struct {
	db *sql.DB
}

// NewContractorRepository creates a new contractor repository.
func NewContractorRepository(db *sql.DB) ContractorRepository {
	return &sqlContractorRepository{db: db}
}

func (r *sqlContractorRepository) Nearby(ctx context.Context, p spatial.Point, trade string, limit int) ([]*NearbyContractor, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, business_name, trade, rating, latitude, longitude, service_radius_miles, h3_cell
		FROM contractors
		WHERE latitude IS NOT NULL AND longitude IS NOT NULL
	`)
	if err != nil {
		return nil, fmt.Errorf("listing contractors: %w", err)
	}
	defer rows.Close()

	wantTrade := textutil.LowerASCIIFolding(trade)
	candidates := []candidate{}
	widest := 0.0

	for rows.Next() {
		var (
			c      candidate
			rating sql.NullFloat64
			radius sql.NullFloat64
		)

		if err := rows.Scan(&c.ID, &c.BusinessName, &c.Trade, &rating, &c.Location.Lat, &c.Location.Lng, &radius, &c.cell); err != nil {
			return nil, fmt.Errorf("scanning contractor: %w", err)
		}

		if wantTrade != "" && textutil.LowerASCIIFolding(c.Trade) != wantTrade {
			continue
		}

		c.Rating = float(rating)

		c.ServiceRadiusMiles = DefaultServiceRadiusMiles
		if radius.Valid {
			c.ServiceRadiusMiles = radius.Float64
		}

		widest = math.Max(widest, c.ServiceRadiusMiles)
		candidates = append(candidates, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	filter, err := newCellFilter(p, widest)
	if err != nil {
		return nil, err
	}

	found := []*NearbyContractor{}

	for i := range candidates {
		c := &candidates[i]
		if !filter.covers(c.cell) {
			continue
		}

		c.DistanceMiles = p.DistanceMiles(c.Location)
		if c.DistanceMiles > c.ServiceRadiusMiles {
			continue
		}

		found = append(found, &c.NearbyContractor)
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].DistanceMiles < found[j].DistanceMiles
	})

	if limit > 0 && len(found) > limit {
		found = found[:limit]
	}

	return found, nil
}

type candidate struct {
	NearbyContractor

	cell sql.NullInt64
}

const (
	kmPerMile = 1.609344
	// maxRing bounds the k of the grid disk; wider searches use coarser cells.
	maxRing = 8
)

// cellFilter holds the cells, at some resolution at or above
// spatial.CellResolution, that can contain a point within a given distance
// of the search origin.
type cellFilter struct {
	res   int
	cells map[h3.Cell]struct{}
}

func newCellFilter(p spatial.Point, miles float64) (*cellFilter, error) {
	if math.IsNaN(miles) || math.IsInf(miles, 0) {
		return nil, nil
	}

	for res := spatial.CellResolution; res >= 0; res-- {
		edgeKm, err := h3.HexagonEdgeLengthAvgKm(res)
		if err != nil {
			return nil, fmt.Errorf("h3 edge length at res %d: %w", res, err)
		}

		k := int(math.Ceil(miles*kmPerMile/edgeKm)) + 2
		if k > maxRing && res > 0 {
			continue
		}

		origin, err := p.Cell(res)
		if err != nil {
			return nil, err
		}

		disk, err := h3.GridDisk(origin, k)
		if err != nil {
			return nil, fmt.Errorf("h3 grid disk k=%d: %w", k, err)
		}

		cells := make(map[h3.Cell]struct{}, len(disk))
		for _, c := range disk {
			cells[c] = struct{}{}
		}

		return &cellFilter{res: res, cells: cells}, nil
	}

	return nil, nil
}

// covers reports whether a stored cell may be in range. Contractors that were
// never indexed are left to the distance check.
func (f *cellFilter) covers(stored sql.NullInt64) bool {
	if f == nil || !stored.Valid {
		return true
	}

	cell := h3.Cell(stored.Int64)
	if !cell.IsValid() || cell.Resolution() < f.res {
		return false
	}

	if cell.Resolution() > f.res {
		parent, err := cell.Parent(f.res)
		if err != nil {
			return false
		}

		cell = parent
	}

	_, ok := f.cells[cell]

	return ok
}

// Copyright 2026 The Handyman Authors
// SPDX-License-Identifier: Apache-2.0

// Package location persists user and contractor coordinates.
package location

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/nitchau/handyman-sub001/metrics"
	"github.com/nitchau/handyman-sub001/spatial"
	"go.uber.org/zap"
)

const (
	TableUsers       = "users"
	TableContractors = "contractors"
)

// Writer updates the coordinates of existing rows. It never inserts.
type Writer struct {
	db      *sql.DB
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewWriter creates a Writer. logger and m may be nil.
func NewWriter(db *sql.DB, logger *zap.Logger, m *metrics.Metrics) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Writer{db: db, logger: logger, metrics: m, now: time.Now}
}

// UpdateUserLocation sets the latitude and longitude of a user.
func (w *Writer) UpdateUserLocation(ctx context.Context, userID string, p spatial.Point) error {
	if err := p.Validate(); err != nil {
		return w.fail(&WriteError{Kind: KindInvalid, Table: TableUsers, ID: userID, Err: err})
	}

	res, err := w.db.ExecContext(ctx, `
		UPDATE users
		SET latitude = $1, longitude = $2, updated_at = $3
		WHERE id = $4
	`, p.Lat, p.Lng, w.now().UTC(), userID)

	return w.done(TableUsers, userID, res, err)
}

// UpdateContractorLocation sets the coordinates and H3 cell of a contractor.
// The service radius is only written when radiusMiles is not nil.
func (w *Writer) UpdateContractorLocation(ctx context.Context, contractorID string, p spatial.Point, radiusMiles *float64) error {
	if err := p.Validate(); err != nil {
		return w.fail(&WriteError{Kind: KindInvalid, Table: TableContractors, ID: contractorID, Err: err})
	}

	if radiusMiles != nil && (*radiusMiles < 0 || math.IsNaN(*radiusMiles) || math.IsInf(*radiusMiles, 0)) {
		return w.fail(&WriteError{
			Kind:  KindInvalid,
			Table: TableContractors,
			ID:    contractorID,
			Err:   fmt.Errorf("service radius must be a non-negative number (got %v)", *radiusMiles),
		})
	}

	cell, err := p.Cell(spatial.CellResolution)
	if err != nil {
		return w.fail(&WriteError{Kind: KindInvalid, Table: TableContractors, ID: contractorID, Err: err})
	}

	var res sql.Result

	if radiusMiles != nil {
		res, err = w.db.ExecContext(ctx, `
			UPDATE contractors
			SET latitude = $1, longitude = $2, h3_cell = $3, service_radius_miles = $4, updated_at = $5
			WHERE id = $6
		`, p.Lat, p.Lng, int64(cell), *radiusMiles, w.now().UTC(), contractorID)
	} else {
		res, err = w.db.ExecContext(ctx, `
			UPDATE contractors
			SET latitude = $1, longitude = $2, h3_cell = $3, updated_at = $4
			WHERE id = $5
		`, p.Lat, p.Lng, int64(cell), w.now().UTC(), contractorID)
	}

	return w.done(TableContractors, contractorID, res, err)
}

func (w *Writer) done(table, id string, res sql.Result, err error) error {
	if err != nil {
		return w.fail(&WriteError{Kind: classify(err), Table: table, ID: id, Err: err})
	}

	n, err := res.RowsAffected()
	if err != nil {
		return w.fail(&WriteError{Kind: KindTransport, Table: table, ID: id, Err: err})
	}

	if n == 0 {
		return w.fail(&WriteError{Kind: KindNotFound, Table: table, ID: id, Err: errors.New("no such row")})
	}

	w.metrics.LocationWrite(table, metrics.OutcomeOK)

	return nil
}

func (w *Writer) fail(err *WriteError) error {
	outcome := metrics.OutcomeError
	if err.Kind == KindInvalid {
		outcome = metrics.OutcomeInvalid
	}

	w.metrics.LocationWrite(err.Table, outcome)
	w.logger.Error("location update failed",
		zap.String("table", err.Table),
		zap.String("id", err.ID),
		zap.Stringer("kind", err.Kind),
		zap.Error(err.Err),
	)

	return err
}

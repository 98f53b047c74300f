// Copyright 2026 The Handyman Authors
// SPDX-License-Identifier: Apache-2.0

package location

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nitchau/handyman-sub001/spatial"
	"go.uber.org/zap"
)

// ReindexContractorCells recomputes h3_cell for every contractor with
// coordinates and returns how many rows were updated. onProgress, when not
// nil, is called once per contractor.
func (w *Writer) ReindexContractorCells(ctx context.Context, onProgress func()) (int, error) {
	type pending struct {
		id string
		p  spatial.Point
	}

	rows, err := w.db.QueryContext(ctx, `
		SELECT id, latitude, longitude
		FROM contractors
		WHERE latitude IS NOT NULL AND longitude IS NOT NULL
		ORDER BY id
	`)
	if err != nil {
		return 0, fmt.Errorf("listing contractors: %w", err)
	}

	var todo []pending

	for rows.Next() {
		var c pending
		if err := rows.Scan(&c.id, &c.p.Lat, &c.p.Lng); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scanning contractor: %w", err)
		}

		todo = append(todo, c)
	}

	rows.Close()

	if err := rows.Err(); err != nil {
		return 0, err
	}

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			w.logger.Warn("failed to rollback reindex transaction", zap.Error(err))
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `UPDATE contractors SET h3_cell = $1 WHERE id = $2`)
	if err != nil {
		return 0, fmt.Errorf("preparing update: %w", err)
	}
	defer stmt.Close()

	updated := 0

	for _, c := range todo {
		if onProgress != nil {
			onProgress()
		}

		cell, err := c.p.Cell(spatial.CellResolution)
		if err != nil {
			w.logger.Warn("skipping contractor with unindexable coordinates",
				zap.String("id", c.id), zap.Stringer("point", c.p), zap.Error(err))

			continue
		}

		if _, err := stmt.ExecContext(ctx, int64(cell), c.id); err != nil {
			return 0, fmt.Errorf("updating contractor %s: %w", c.id, err)
		}

		updated++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing reindex: %w", err)
	}

	return updated, nil
}

// Copyright 2026 The Handyman Authors
// SPDX-License-Identifier: Apache-2.0

package quote

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/nitchau/handyman-sub001/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("duckdb", "")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, store.CreateSchema(context.Background(), db))

	return db
}

func TestRepositoryCreateAndList(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	clock := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	repo := &sqlRepository{db: db, now: func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}}

	first, err := repo.Create(ctx, "c-1", &Request{
		Description: "Install a ceiling fan",
		Timeline:    TimelineASAP,
		ZipCode:     "02139",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)

	second, err := repo.Create(ctx, "c-1", &Request{
		Description: "Paint the living room",
		Timeline:    TimelineFlexible,
		ZipCode:     "02140",
		SenderName:  "Robin",
		SenderEmail: "robin@example.com",
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	_, err = repo.Create(ctx, "c-2", &Request{Description: "Other contractor", Timeline: TimelineASAP, ZipCode: "10001"})
	require.NoError(t, err)

	records, err := repo.ListForContractor(ctx, "c-1", 10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, second.ID, records[0].ID)
	assert.Equal(t, "Robin", records[0].SenderName)
	assert.Equal(t, "robin@example.com", records[0].SenderEmail)
	assert.True(t, second.CreatedAt.Equal(records[0].CreatedAt))

	assert.Equal(t, first.ID, records[1].ID)
	assert.Empty(t, records[1].SenderName)
	assert.Equal(t, TimelineASAP, records[1].Timeline)

	var nullNames int
	require.NoError(t, db.QueryRow(`SELECT count(*) FROM quote_requests WHERE sender_name IS NULL`).Scan(&nullNames))
	assert.Equal(t, 2, nullNames)
}

func TestRepositoryCreateNil(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	_, err := repo.Create(context.Background(), "c-1", nil)
	require.Error(t, err)
}

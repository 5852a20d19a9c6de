package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repo-rate-lab/internal/domain"
	"repo-rate-lab/internal/storage"
)

func TestObservationStore_InsertBulkAndGetBySeries(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewObservationStore(pool)

	obs := []*domain.Observation{
		{SeriesID: "SOFR", Date: day(2019, 9, 17), Value: ptr(5.25)},
		{SeriesID: "SOFR", Date: day(2019, 9, 16), Value: ptr(2.43)},
		{SeriesID: "SOFR", Date: day(2019, 9, 18), Value: nil},
		{SeriesID: "Gen_IORB", Date: day(2019, 9, 16), Value: ptr(2.10)},
	}

	require.NoError(t, store.InsertBulk(ctx, obs))

	got, err := store.GetBySeries(ctx, "SOFR")
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, day(2019, 9, 16), got[0].Date)
	assert.InDelta(t, 2.43, *got[0].Value, 0.0001)
	assert.Equal(t, day(2019, 9, 17), got[1].Date)
	assert.InDelta(t, 5.25, *got[1].Value, 0.0001)
	assert.Nil(t, got[2].Value)
}

func TestObservationStore_InsertBulkEmpty(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewObservationStore(pool)
	assert.NoError(t, store.InsertBulk(context.Background(), nil))
}

func TestObservationStore_DuplicateRollsBackBatch(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewObservationStore(pool)

	require.NoError(t, store.InsertBulk(ctx, []*domain.Observation{
		{SeriesID: "SOFR", Date: day(2019, 9, 16), Value: ptr(2.43)},
	}))

	err := store.InsertBulk(ctx, []*domain.Observation{
		{SeriesID: "EFFR", Date: day(2019, 9, 16), Value: ptr(2.25)},
		{SeriesID: "SOFR", Date: day(2019, 9, 16), Value: ptr(2.50)},
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	effr, err := store.GetBySeries(ctx, "EFFR")
	require.NoError(t, err)
	assert.Empty(t, effr)
}

func TestObservationStore_InvalidInput(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewObservationStore(pool)
	err := store.InsertBulk(context.Background(), []*domain.Observation{{Date: day(2019, 9, 16)}})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestObservationStore_GetByDateRange(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewObservationStore(pool)

	require.NoError(t, store.InsertBulk(ctx, []*domain.Observation{
		{SeriesID: "SOFR", Date: day(2019, 9, 15), Value: ptr(2.20)},
		{SeriesID: "SOFR", Date: day(2019, 9, 16), Value: ptr(2.43)},
		{SeriesID: "EFFR", Date: day(2019, 9, 16), Value: ptr(2.25)},
		{SeriesID: "SOFR", Date: day(2019, 9, 17), Value: ptr(5.25)},
		{SeriesID: "SOFR", Date: day(2019, 9, 18), Value: ptr(2.55)},
	}))

	got, err := store.GetByDateRange(ctx, day(2019, 9, 16), day(2019, 9, 17))
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "EFFR", got[0].SeriesID)
	assert.Equal(t, "SOFR", got[1].SeriesID)
	assert.Equal(t, day(2019, 9, 17), got[2].Date)
}

func TestIsUniqueViolation(t *testing.T) {
	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	assert.True(t, isUniqueViolation(dup))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23502"}))
	assert.False(t, isUniqueViolation(errors.New("connection reset")))
	assert.False(t, isUniqueViolation(nil))
}

package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "idem:submission:patient-a:k1"

func TestIdempotencyStore_ReserveFreshKey(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewIdempotencyStore(db, time.Hour)

	mock.ExpectSetNX(testKey, pendingMarker, pendingTTL).SetVal(true)

	reserved, id, err := store.Reserve(context.Background(), "patient-a:k1")
	require.NoError(t, err)
	assert.True(t, reserved)
	assert.Empty(t, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyStore_ReserveHeldByInFlightRequest(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewIdempotencyStore(db, time.Hour)

	mock.ExpectSetNX(testKey, pendingMarker, pendingTTL).SetVal(false)
	mock.ExpectGet(testKey).SetVal(pendingMarker)

	reserved, id, err := store.Reserve(context.Background(), "patient-a:k1")
	require.NoError(t, err)
	assert.False(t, reserved)
	assert.Empty(t, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyStore_ReserveCompletedKey(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewIdempotencyStore(db, time.Hour)

	mock.ExpectSetNX(testKey, pendingMarker, pendingTTL).SetVal(false)
	mock.ExpectGet(testKey).SetVal("sub-42")

	reserved, id, err := store.Reserve(context.Background(), "patient-a:k1")
	require.NoError(t, err)
	assert.False(t, reserved)
	assert.Equal(t, "sub-42", id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyStore_ReserveRetriesWhenKeyExpires(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewIdempotencyStore(db, time.Hour)

	mock.ExpectSetNX(testKey, pendingMarker, pendingTTL).SetVal(false)
	mock.ExpectGet(testKey).RedisNil()
	mock.ExpectSetNX(testKey, pendingMarker, pendingTTL).SetVal(true)

	reserved, _, err := store.Reserve(context.Background(), "patient-a:k1")
	require.NoError(t, err)
	assert.True(t, reserved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyStore_ReserveError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewIdempotencyStore(db, time.Hour)

	boom := errors.New("connection refused")
	mock.ExpectSetNX(testKey, pendingMarker, pendingTTL).SetErr(boom)

	_, _, err := store.Reserve(context.Background(), "patient-a:k1")
	assert.ErrorIs(t, err, boom)
}

func TestIdempotencyStore_CompleteAndRelease(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewIdempotencyStore(db, time.Hour)

	mock.ExpectSet(testKey, "sub-42", time.Hour).SetVal("OK")
	mock.ExpectDel(testKey).SetVal(1)

	require.NoError(t, store.Complete(context.Background(), "patient-a:k1", "sub-42"))
	require.NoError(t, store.Release(context.Background(), "patient-a:k1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewIdempotencyStore_DefaultTTL(t *testing.T) {
	db, _ := redismock.NewClientMock()
	assert.Equal(t, defaultIdempotencyTTL, NewIdempotencyStore(db, 0).ttl)
}

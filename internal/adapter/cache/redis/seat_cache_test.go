package redis_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Kuba27x/Cinema-app/internal/adapter/cache/redis"
	"github.com/Kuba27x/Cinema-app/internal/core/domain"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeatCache_GetHit(t *testing.T) {
	db, mockRedis := redismock.NewClientMock()
	cache := redis.NewSeatCache(db, time.Minute)
	showingID := uuid.New()

	mockRedis.ExpectGet("seats:" + showingID.String()).SetVal("[3,4,9]")

	seats, ok, err := cache.Get(context.Background(), showingID)

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []int{3, 4, 9}, seats.Sorted())
	assert.NoError(t, mockRedis.ExpectationsWereMet())
}

func TestSeatCache_GetMiss(t *testing.T) {
	db, mockRedis := redismock.NewClientMock()
	cache := redis.NewSeatCache(db, time.Minute)
	showingID := uuid.New()

	mockRedis.ExpectGet(redis.Key(showingID)).RedisNil()

	seats, ok, err := cache.Get(context.Background(), showingID)

	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, seats)
}

func TestSeatCache_GetCorrupt(t *testing.T) {
	db, mockRedis := redismock.NewClientMock()
	cache := redis.NewSeatCache(db, time.Minute)
	showingID := uuid.New()

	mockRedis.ExpectGet(redis.Key(showingID)).SetVal("not json")

	_, ok, err := cache.Get(context.Background(), showingID)

	assert.Error(t, err)
	assert.False(t, ok)
}

func TestSeatCache_SetWritesSortedJSONWithTTL(t *testing.T) {
	db, mockRedis := redismock.NewClientMock()
	cache := redis.NewSeatCache(db, 45*time.Second)
	showingID := uuid.New()

	mockRedis.ExpectSet(redis.Key(showingID), []byte("[1,2,30]"), 45*time.Second).SetVal("OK")

	err := cache.Set(context.Background(), showingID, domain.NewSeatSet(30, 1, 2))

	require.NoError(t, err)
	assert.NoError(t, mockRedis.ExpectationsWereMet())
}

func TestSeatCache_Invalidate(t *testing.T) {
	db, mockRedis := redismock.NewClientMock()
	cache := redis.NewSeatCache(db, 0)
	showingID := uuid.New()

	mockRedis.ExpectDel("seats:" + showingID.String()).SetVal(1)

	require.NoError(t, cache.Invalidate(context.Background(), showingID))
	assert.NoError(t, mockRedis.ExpectationsWereMet())
}

func TestSeatCache_InvalidateError(t *testing.T) {
	db, mockRedis := redismock.NewClientMock()
	cache := redis.NewSeatCache(db, 0)
	showingID := uuid.New()

	mockRedis.ExpectDel(redis.Key(showingID)).SetErr(errors.New("connection refused"))

	err := cache.Invalidate(context.Background(), showingID)

	assert.ErrorContains(t, err, "connection refused")
}

package cache

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"placement-tracker/internal/common/config"
	"placement-tracker/internal/common/errors"
	"placement-tracker/internal/common/logger"
	"placement-tracker/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLoader struct {
	types map[string]*models.ScoreType
	calls int
}

func (f *fakeLoader) GetScoreTypeByKey(_ context.Context, key string) (*models.ScoreType, error) {
	f.calls++
	if st, ok := f.types[key]; ok {
		copied := *st
		return &copied, nil
	}
	return nil, errors.NewRecordNotFoundError("score_types", key)
}

func newLoader() *fakeLoader {
	return &fakeLoader{types: map[string]*models.ScoreType{
		"dsa": {ScoreTypeID: uuid.New(), Key: "dsa", DisplayName: "Data Structures & Algorithms"},
	}}
}

func newMiniredisCache(t *testing.T, loader ScoreTypeLoader) (*ScoreTypeCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cfg := config.CacheConfig{ScoreTypeTTL: 60000, KeyPrefix: "score_type:"}
	return NewScoreTypeCache(client, loader, cfg, logger.NewTestLogger(t)), mr
}

// ==========================
// Read-through
// ==========================

func TestGet_MissThenHit(t *testing.T) {
	loader := newLoader()
	c, mr := newMiniredisCache(t, loader)
	ctx := context.Background()

	first, err := c.Get(ctx, "dsa")
	require.NoError(t, err)
	assert.Equal(t, "dsa", first.Key)
	assert.Equal(t, 1, loader.calls)

	assert.True(t, mr.Exists("score_type:dsa"))
	assert.Equal(t, time.Minute, mr.TTL("score_type:dsa"))

	second, err := c.Get(ctx, "dsa")
	require.NoError(t, err)
	assert.Equal(t, first.ScoreTypeID, second.ScoreTypeID)
	assert.Equal(t, 1, loader.calls)
}

func TestGet_NotFoundIsNotCached(t *testing.T) {
	loader := newLoader()
	c, mr := newMiniredisCache(t, loader)

	_, err := c.Get(context.Background(), "aptitude")
	assert.True(t, stderrors.Is(err, errors.ErrNotFound))
	assert.False(t, mr.Exists("score_type:aptitude"))
}

func TestGet_UnreadableEntryIsReloaded(t *testing.T) {
	loader := newLoader()
	c, mr := newMiniredisCache(t, loader)
	require.NoError(t, mr.Set("score_type:dsa", "{not json"))

	st, err := c.Get(context.Background(), "dsa")
	require.NoError(t, err)
	assert.Equal(t, "dsa", st.Key)
	assert.Equal(t, 1, loader.calls)

	raw, err := mr.Get("score_type:dsa")
	require.NoError(t, err)
	var cached models.ScoreType
	require.NoError(t, json.Unmarshal([]byte(raw), &cached))
	assert.Equal(t, "dsa", cached.Key)
}

func TestInvalidate(t *testing.T) {
	loader := newLoader()
	c, mr := newMiniredisCache(t, loader)
	ctx := context.Background()

	_, err := c.Get(ctx, "dsa")
	require.NoError(t, err)
	require.NoError(t, c.Invalidate(ctx, "dsa"))
	assert.False(t, mr.Exists("score_type:dsa"))

	_, err = c.Get(ctx, "dsa")
	require.NoError(t, err)
	assert.Equal(t, 2, loader.calls)
}

// ==========================
// Degraded mode
// ==========================

func TestGet_RedisDownFallsBackToLoader(t *testing.T) {
	loader := newLoader()
	c, mr := newMiniredisCache(t, loader)
	mr.Close()

	st, err := c.Get(context.Background(), "dsa")
	require.NoError(t, err)
	assert.Equal(t, "dsa", st.Key)
	assert.Equal(t, 1, loader.calls)

	err = c.Invalidate(context.Background(), "dsa")
	assert.Equal(t, errors.ErrCodeCacheUnavailable, errors.CodeOf(err))
}

func TestGet_WithoutRedis(t *testing.T) {
	loader := newLoader()
	c := NewScoreTypeCache(nil, loader, config.CacheConfig{}, logger.NewTestLogger(t))

	_, err := c.Get(context.Background(), "dsa")
	require.NoError(t, err)
	_, err = c.Get(context.Background(), "dsa")
	require.NoError(t, err)
	assert.Equal(t, 2, loader.calls)
	assert.NoError(t, c.Invalidate(context.Background(), "dsa"))
}

func TestGet_SetFailureStillReturnsValue(t *testing.T) {
	loader := newLoader()
	client, mock := redismock.NewClientMock()
	c := NewScoreTypeCache(client, loader, config.CacheConfig{}, logger.NewTestLogger(t))

	mock.ExpectGet("score_type:dsa").RedisNil()
	mock.Regexp().ExpectSet("score_type:dsa", `.*`, defaultTTL).SetErr(stderrors.New("READONLY"))

	st, err := c.Get(context.Background(), "dsa")
	require.NoError(t, err)
	assert.Equal(t, "dsa", st.Key)
	assert.NoError(t, mock.ExpectationsWereMet())
}

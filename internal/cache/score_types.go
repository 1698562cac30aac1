// internal/cache/score_types.go
package cache

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"placement-tracker/internal/common/config"
	"placement-tracker/internal/common/errors"
	"placement-tracker/internal/common/logger"
	"placement-tracker/internal/common/metrics"
	"placement-tracker/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	defaultTTL    = 10 * time.Minute
	defaultPrefix = "score_type:"
)

// ScoreTypeLoader is the source of truth behind the cache.
type ScoreTypeLoader interface {
	GetScoreTypeByKey(ctx context.Context, key string) (*models.ScoreType, error)
}

// ScoreTypeCache is a read-through Redis cache of score types by key. A nil
// Redis client, or one that fails, sends every read to the loader.
type ScoreTypeCache struct {
	client *redis.Client
	loader ScoreTypeLoader
	ttl    time.Duration
	prefix string
	logger logger.Logger
}

func NewScoreTypeCache(client *redis.Client, loader ScoreTypeLoader, cfg config.CacheConfig, log logger.Logger) *ScoreTypeCache {
	ttl := config.GetDuration(cfg.ScoreTypeTTL)
	if ttl <= 0 {
		ttl = defaultTTL
	}
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &ScoreTypeCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		prefix: prefix,
		logger: log,
	}
}

func (c *ScoreTypeCache) cacheKey(key string) string {
	return c.prefix + key
}

// Get returns the score type with the given key.
func (c *ScoreTypeCache) Get(ctx context.Context, key string) (*models.ScoreType, error) {
	redisHealthy := c.client != nil

	if redisHealthy {
		st, err := c.read(ctx, key)
		switch {
		case err == nil:
			metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
			return st, nil
		case stderrors.Is(err, redis.Nil):
			metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()
		default:
			metrics.CacheLookupsTotal.WithLabelValues("error").Inc()
			redisHealthy = false
			c.logger.Warn("Score type cache unavailable, reading from database", map[string]interface{}{
				"key":   key,
				"error": errors.NewCacheUnavailableError(err),
			})
		}
	}

	st, err := c.loader.GetScoreTypeByKey(ctx, key)
	if err != nil {
		return nil, err
	}

	if redisHealthy {
		c.write(ctx, key, st)
	}
	return st, nil
}

func (c *ScoreTypeCache) read(ctx context.Context, key string) (*models.ScoreType, error) {
	raw, err := c.client.Get(ctx, c.cacheKey(key)).Bytes()
	if err != nil {
		return nil, err
	}

	var st models.ScoreType
	if err := json.Unmarshal(raw, &st); err != nil {
		c.logger.Warn("Discarding unreadable cache entry", map[string]interface{}{
			"key":   key,
			"error": err,
		})
		c.client.Del(ctx, c.cacheKey(key))
		return nil, redis.Nil
	}
	return &st, nil
}

func (c *ScoreTypeCache) write(ctx context.Context, key string, st *models.ScoreType) {
	raw, err := json.Marshal(st)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.cacheKey(key), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("Failed to cache score type", map[string]interface{}{
			"key":   key,
			"error": err,
		})
	}
}

// Invalidate drops the cached entry for key. It is a no-op without Redis.
func (c *ScoreTypeCache) Invalidate(ctx context.Context, key string) error {
	if c.client == nil {
		return nil
	}
	if err := c.client.Del(ctx, c.cacheKey(key)).Err(); err != nil {
		return errors.NewCacheUnavailableError(err)
	}
	return nil
}

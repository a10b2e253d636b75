package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hearthlabs/hearth-backend/internal/platform/logger"
)

// RecommendationCache is the external caching layer keyed by the documented
// cache key. The engine itself never touches it; the handler reads through
// it. Failures are logged and swallowed so caching can never change a
// response.
type RecommendationCache interface {
	Get(ctx context.Context, key string) (*RecommendationResult, bool)
	Set(ctx context.Context, key string, result *RecommendationResult)
}

type redisRecommendationCache struct {
	client *redis.Client
	log    *logger.Logger
	ttl    time.Duration
}

func NewRedisRecommendationCache(client *redis.Client, baseLog *logger.Logger, ttl time.Duration) RecommendationCache {
	return &redisRecommendationCache{
		client: client,
		log:    baseLog.With("service", "RecommendationCache"),
		ttl:    ttl,
	}
}

func (c *redisRecommendationCache) Get(ctx context.Context, key string) (*RecommendationResult, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("cache read failed", "key", key, "error", err)
		}
		return nil, false
	}
	var result RecommendationResult
	if err := json.Unmarshal(raw, &result); err != nil {
		c.log.Warn("cache entry corrupt, ignoring", "key", key, "error", err)
		return nil, false
	}
	return &result, true
}

func (c *redisRecommendationCache) Set(ctx context.Context, key string, result *RecommendationResult) {
	raw, err := json.Marshal(result)
	if err != nil {
		c.log.Warn("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Warn("cache write failed", "key", key, "error", err)
	}
}

// NoopRecommendationCache serves deployments without Redis.
type NoopRecommendationCache struct{}

func (NoopRecommendationCache) Get(context.Context, string) (*RecommendationResult, bool) {
	return nil, false
}

func (NoopRecommendationCache) Set(context.Context, string, *RecommendationResult) {}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/procare-io/srportal/internal/config"
)

// RedisCache implements Cache on a single Redis node.
type RedisCache struct {
	client     *redis.Client
	defaultTTL time.Duration
	keyPrefix  string
	metrics    *Metrics
}

// NewRedisClient connects to the configured Redis and pings it.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.GetRedisAddr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func NewRedisCache(client *redis.Client, prefix string, defaultTTL time.Duration, metrics *Metrics) *RedisCache {
	return &RedisCache{
		client:     client,
		defaultTTL: defaultTTL,
		keyPrefix:  prefix,
		metrics:    metrics,
	}
}

func (rc *RedisCache) GetObject(ctx context.Context, key string, dest interface{}) (bool, error) {
	timer := rc.metrics.timer("redis", "get")
	defer timer.ObserveDuration()

	data, err := rc.client.Get(ctx, rc.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		rc.metrics.observe("redis", "miss")
		return false, nil
	}
	if err != nil {
		rc.metrics.observe("redis", "error")
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		rc.metrics.observe("redis", "error")
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	rc.metrics.observe("redis", "hit")
	return true, nil
}

func (rc *RedisCache) SetObject(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	timer := rc.metrics.timer("redis", "set")
	defer timer.ObserveDuration()

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if ttl == 0 {
		ttl = rc.defaultTTL
	}
	return rc.client.Set(ctx, rc.keyPrefix+key, data, ttl).Err()
}

func (rc *RedisCache) Delete(ctx context.Context, key string) error {
	return rc.client.Del(ctx, rc.keyPrefix+key).Err()
}

func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

// Package cache is a JSON cache over Redis. When Redis is not configured or
// cannot be reached every call becomes a miss, so callers fall through to
// the database.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"tradie-match-server/config"
	"tradie-match-server/logger"
)

const defaultTTL = 30 * time.Second

type Redis struct {
	client *redis.Client
	log    logger.Logger
	ttl    time.Duration

	warnedUnavailable atomic.Bool
}

// NewRedis connects and pings. A failed ping logs once and returns a cache
// that always misses.
func NewRedis(ctx context.Context, cfg config.RedisConfig, log logger.Logger) *Redis {
	r := &Redis{log: log, ttl: cfg.ProfileCacheTTL}
	if r.ttl <= 0 {
		r.ttl = defaultTTL
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		log.Info("⚠️ Redis not configured, cache disabled")
		return r
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       0,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn("⚠️ Redis unavailable, bypassing cache", zap.String("addr", addr), zap.Error(err))
		_ = client.Close()
		return r
	}

	log.Info("✅ Redis connected", zap.String("addr", addr))
	r.client = client
	return r
}

// Enabled reports whether a Redis connection is in use.
func (r *Redis) Enabled() bool {
	return r != nil && r.client != nil
}

func (r *Redis) warnUnavailableOnce(err error) {
	if r.log == nil {
		return
	}
	if r.warnedUnavailable.CompareAndSwap(false, true) {
		r.log.Warn("⚠️ Redis error, continuing without cache", zap.Error(err))
	}
}

func (r *Redis) Ping(ctx context.Context) error {
	if !r.Enabled() {
		return errors.New("redis unavailable")
	}
	return r.client.Ping(ctx).Err()
}

// GetJSON decodes key into out. It returns false on a miss.
func (r *Redis) GetJSON(ctx context.Context, key string, out interface{}) (bool, error) {
	if !r.Enabled() {
		return false, nil
	}
	b, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		r.warnUnavailableOnce(err)
		return false, err
	}
	if len(b) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON stores value under key. A ttl of zero uses the configured TTL.
func (r *Redis) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !r.Enabled() {
		return nil
	}
	if ttl <= 0 {
		ttl = r.ttl
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, key, b, ttl).Err(); err != nil {
		r.warnUnavailableOnce(err)
		return err
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if !r.Enabled() || len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		r.warnUnavailableOnce(err)
		return err
	}
	return nil
}

// DeleteByPattern removes every key matching a glob pattern.
func (r *Redis) DeleteByPattern(ctx context.Context, pattern string) error {
	if !r.Enabled() {
		return nil
	}
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return nil
	}
	iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			r.log.Warn("❌ Redis delete failed", zap.String("key", iter.Val()), zap.Error(err))
		}
	}
	return iter.Err()
}

func (r *Redis) Close() error {
	if !r.Enabled() {
		return nil
	}
	return r.client.Close()
}

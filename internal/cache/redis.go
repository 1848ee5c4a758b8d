package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fortuna/augur/internal/logging"
	"github.com/fortuna/augur/internal/sources"
)

// keyPrefix namespaces match-result entries in a shared Redis instance.
const keyPrefix = "augur:result:"

// Redis is a Store backed by a Redis instance, for deployments where
// several service replicas should share one result cache.
type Redis struct {
	client *redis.Client
	log    logging.Logger
}

// NewRedis connects to Redis and verifies the connection.
func NewRedis(redisURL string, logger logging.Logger) (*Redis, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	if logger == nil {
		logger = logging.Nop()
	}

	return &Redis{client: client, log: logger}, nil
}

// Close closes the Redis connection.
func (r *Redis) Close() error {
	return r.client.Close()
}

// HealthCheck pings Redis to verify the connection.
func (r *Redis) HealthCheck(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Get retrieves a cached match result. Any Redis or decoding failure is
// treated as a miss: the cache is an optimization, never a dependency.
func (r *Redis) Get(ctx context.Context, key string) (*sources.MatchResult, bool) {
	data, err := r.client.Get(ctx, keyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		r.log.Warnf("redis get %s failed: %v", key, err)
		return nil, false
	}

	var result sources.MatchResult
	if err := json.Unmarshal(data, &result); err != nil {
		r.log.Warnf("redis entry %s is corrupt: %v", key, err)
		return nil, false
	}
	return &result, true
}

// Set stores a match result with TTL. Redis handles expiry and memory
// bounding itself, so there is no explicit eviction here.
func (r *Redis) Set(ctx context.Context, key string, value *sources.MatchResult, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		r.log.Warnf("marshal cache entry %s: %v", key, err)
		return
	}
	if err := r.client.Set(ctx, keyPrefix+key, data, ttl).Err(); err != nil {
		r.log.Warnf("redis set %s failed: %v", key, err)
	}
}

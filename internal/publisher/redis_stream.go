package publisher

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fortuna/augur/internal/logging"
)

const (
	// resolutionStream is where every resolution update lands, capped so
	// an unconsumed stream cannot grow without bound.
	resolutionStream = "augur.resolutions"
	maxStreamLen     = 10000

	publishTimeout = 5 * time.Second
)

// RedisStream publishes resolution events to a Redis stream so downstream
// consumers (settlement jobs, notification workers) can follow resolutions
// without holding a WebSocket connection.
type RedisStream struct {
	client *redis.Client
	log    logging.Logger
}

// NewRedisStream connects to Redis and verifies the connection.
func NewRedisStream(redisURL string, logger logging.Logger) (*RedisStream, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	if logger == nil {
		logger = logging.Nop()
	}
	return &RedisStream{client: client, log: logger}, nil
}

// Close closes the Redis connection.
func (p *RedisStream) Close() error {
	return p.client.Close()
}

// BroadcastResolutionUpdate appends one resolution update to the stream.
// Publishing is best effort: a failed append is logged and dropped, it
// never slows or fails the resolution that produced it.
func (p *RedisStream) BroadcastResolutionUpdate(payload []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: resolutionStream,
		MaxLen: maxStreamLen,
		Approx: true,
		Values: map[string]interface{}{
			"data":      string(payload),
			"timestamp": time.Now().Unix(),
		},
	}).Err()
	if err != nil {
		p.log.Warnf("resolution stream publish failed: %v", err)
	}
}

package publisher

import (
	"context"
	"encoding/base64"
	"strconv"

	"math/rand/v2"

	"carwatcher/config"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher implements Publisher on Redis streams
type RedisPublisher struct {
	client          *redis.Client
	ctx             context.Context
	streamPrefix    string
	streamCount     int
	streamMaxLength int
}

// NewRedisPublisher creates a Redis publisher from the configuration
func NewRedisPublisher(ctx context.Context, cfg *config.Config) *RedisPublisher {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})

	return &RedisPublisher{
		client:          client,
		ctx:             ctx,
		streamPrefix:    cfg.RedisStream,
		streamCount:     cfg.RedisStreamCount,
		streamMaxLength: cfg.RedisStreamMaxLength,
	}
}

// Publish sends one listing payload to a Redis stream. The payload is
// base64 encoded and the stream is picked at random from streamPrefix:0
// through streamPrefix:N-1 so consumers can shard.
func (p *RedisPublisher) Publish(id string, payload []byte) error {
	encoded := base64.StdEncoding.EncodeToString(payload)

	stream := p.streamPrefix + ":" + strconv.Itoa(rand.IntN(p.streamCount))

	return p.client.XAdd(p.ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			id: encoded,
		},
	}).Err()
}

// TrimStreams trims all streams to the configured maximum length
func (p *RedisPublisher) TrimStreams() error {
	pattern := p.streamPrefix + ":*"
	streams, err := p.client.Keys(p.ctx, pattern).Result()
	if err != nil {
		return err
	}

	for _, stream := range streams {
		if err := p.client.XTrimMaxLen(p.ctx, stream, int64(p.streamMaxLength)).Err(); err != nil {
			return err
		}
	}

	return nil
}

// Close closes the Redis connection
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

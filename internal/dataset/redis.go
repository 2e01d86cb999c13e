package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"stocksim/internal/model"

	goredis "github.com/go-redis/redis/v8"
)

// RedisReader loads a bar series cached in Redis as a LIST of JSON bars,
// oldest first (RPUSH order).
type RedisReader struct {
	rdb *goredis.Client
}

// NewRedisReader connects to Redis and verifies the connection.
func NewRedisReader(ctx context.Context, addr, password string) (*RedisReader, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("dataset: redis ping %s: %w", addr, err)
	}
	log.Printf("[dataset] connected to redis %s", addr)
	return &RedisReader{rdb: rdb}, nil
}

// Client exposes the underlying connection for health probes.
func (r *RedisReader) Client() *goredis.Client { return r.rdb }

// ReadBars fetches and decodes the full series stored under key.
func (r *RedisReader) ReadBars(ctx context.Context, key string) ([]model.Bar, error) {
	raw, err := r.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("dataset: redis lrange %s: %w", key, err)
	}

	bars := make([]model.Bar, 0, len(raw))
	for i, item := range raw {
		var b model.Bar
		if err := json.Unmarshal([]byte(item), &b); err != nil {
			return nil, fmt.Errorf("dataset: redis key %s item %d: %w", key, i, err)
		}
		bars = append(bars, b)
	}

	if err := model.ValidateSeries(bars); err != nil {
		return nil, fmt.Errorf("dataset: redis key %s: %w", key, err)
	}
	return bars, nil
}

// Close closes the Redis connection.
func (r *RedisReader) Close() error {
	return r.rdb.Close()
}

package dedupe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "yemma:webhook:event"

// RedisDeduper claims webhook event ids with SET NX and a TTL.
type RedisDeduper struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisDeduper wraps an existing client.
func NewRedisDeduper(client *redis.Client, ttl time.Duration) *RedisDeduper {
	return &RedisDeduper{client: client, ttl: ttl}
}

// Claim returns true the first time eventID is seen within the TTL window.
func (d *RedisDeduper) Claim(ctx context.Context, eventID string) (bool, error) {
	if eventID == "" {
		return false, errors.New("event id is required")
	}
	ok, err := d.client.SetNX(ctx, generateKey(eventID), time.Now().UTC().Format(time.RFC3339), d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return ok, nil
}

// Close releases the underlying connection pool.
func (d *RedisDeduper) Close() error {
	return d.client.Close()
}

func generateKey(eventID string) string {
	return fmt.Sprintf("%s:%s", keyPrefix, eventID)
}

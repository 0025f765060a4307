// Package redisx opens the optional Redis client used for shared rate-limit
// counters.
package redisx

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"jrm-intake-api/internal/config"
)

// Client is an alias for a Redis client
type Client = redis.Client

// Open connects when REDIS_ADDR is set. A nil client with a nil error means
// Redis is not configured.
func Open(cfg *config.Config) (*Client, func(), error) {
	if cfg.Redis.Addr == "" {
		return nil, func() {}, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := Ping(context.Background(), rdb); err != nil {
		_ = rdb.Close()
		return nil, func() {}, err
	}
	return rdb, func() { _ = rdb.Close() }, nil
}

// Ping checks the connection with a short timeout.
func Ping(ctx context.Context, rdb *Client) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return rdb.Ping(ctx).Err()
}

// Copyright 2026 The fetchq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures a Redis-backed cache.
type RedisConfig struct {
	// Addr is the host:port of the Redis server.
	Addr string
	// Password is the optional server password.
	Password string
	// DB selects the Redis logical database.
	DB int
	// Prefix is prepended to every cache key, namespacing this cache's
	// entries within a shared server. Defaults to "fetchq:".
	Prefix string
	// TTL bounds the lifetime of stored entries that carry no hard
	// expiry of their own. Zero means such entries do not expire.
	TTL time.Duration
}

// Redis is a Cache backed by a Redis server, suitable for sharing a
// response cache across processes. Entries are stored as JSON.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedis connects to the configured Redis server and verifies the
// connection with a ping.
func NewRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("fetchq/cache: connect redis: %w", err)
	}
	return NewRedisWithClient(client, cfg), nil
}

// NewRedisWithClient wraps an existing client. Only the Prefix and TTL
// fields of cfg are consulted.
func NewRedisWithClient(client *redis.Client, cfg RedisConfig) *Redis {
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "fetchq:"
	}
	return &Redis{client: client, prefix: prefix, ttl: cfg.TTL}
}

// Get implements Cache.
func (r *Redis) Get(ctx context.Context, key string) (*Entry, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetchq/cache: get %q: %w", key, err)
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("fetchq/cache: decode %q: %w", key, err)
	}
	return &entry, nil
}

// Put implements Cache. Entries with a hard expiry are stored with a
// matching Redis TTL so the server reclaims them on its own; entries
// without one fall back to the configured TTL.
func (r *Redis) Put(ctx context.Context, key string, entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("fetchq/cache: encode %q: %w", key, err)
	}
	ttl := r.ttl
	if entry.Expiry > 0 {
		if remaining := time.UnixMilli(entry.Expiry).Sub(time.Now()); remaining > 0 {
			ttl = remaining
		}
	}
	if err := r.client.Set(ctx, r.prefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("fetchq/cache: put %q: %w", key, err)
	}
	return nil
}

// Close releases the underlying client's resources.
func (r *Redis) Close() error {
	return r.client.Close()
}

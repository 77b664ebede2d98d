// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

/*
JSONCache stores JSON-encoded values under a key prefix with a fixed TTL.

Entries are scoped by a per-key generation counter. Invalidate bumps the
counter instead of deleting, so a value computed before an invalidation and
written after it lands under a generation no reader asks for again.
*/
type JSONCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewJSONCache creates a cache whose keys are prefix + caller key.
func NewJSONCache(client redis.UniversalClient, prefix string, ttl time.Duration) *JSONCache {
	return &JSONCache{client: client, prefix: prefix, ttl: ttl}
}

// generationKey holds the counter of key.
func (cache *JSONCache) generationKey(key string) string {
	return cache.prefix + key + ":gen"
}

// entryKey holds the value of key at generation.
func (cache *JSONCache) entryKey(key string, generation int64) string {
	return cache.prefix + key + ":" + strconv.FormatInt(generation, 10)
}

// generationTTL outlives every entry so an expired counter never revives an old entry.
func (cache *JSONCache) generationTTL() time.Duration {
	return 2 * cache.ttl
}

// Generation returns the current generation of key, 0 when never invalidated.
func (cache *JSONCache) Generation(ctx context.Context, key string) (int64, error) {
	generation, err := cache.client.Get(ctx, cache.generationKey(key)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("redis: generation %s: %w", cache.prefix+key, err)
	}
	return generation, nil
}

/*
Get decodes the value cached for key at generation into target.

Returns:
  - bool: false on a cache miss
  - error: connectivity or decoding failures
*/
func (cache *JSONCache) Get(ctx context.Context, key string, generation int64, target any) (bool, error) {
	entry := cache.entryKey(key, generation)

	payload, err := cache.client.Get(ctx, entry).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis: get %s: %w", entry, err)
	}

	if err := json.Unmarshal(payload, target); err != nil {
		return false, fmt.Errorf("redis: decode %s: %w", entry, err)
	}

	return true, nil
}

// Set stores value for key at generation with the cache TTL.
func (cache *JSONCache) Set(ctx context.Context, key string, generation int64, value any) error {
	entry := cache.entryKey(key, generation)

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("redis: encode %s: %w", entry, err)
	}

	if err := cache.client.Set(ctx, entry, payload, cache.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set %s: %w", entry, err)
	}

	return nil
}

// Invalidate moves key to a new generation, orphaning every cached value.
func (cache *JSONCache) Invalidate(ctx context.Context, key string) error {
	counter := cache.generationKey(key)

	_, err := cache.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, counter)
		pipe.Expire(ctx, counter, cache.generationTTL())
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis: invalidate %s: %w", cache.prefix+key, err)
	}

	return nil
}

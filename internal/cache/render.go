// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	renderKeyPrefix = "render:"

	// DefaultRenderTTL is how long a rendered article body stays cached.
	DefaultRenderTTL = time.Hour
)

// RenderCache stores rendered article bodies in Valkey. Keys embed the
// article's updated_at, so an edit never serves a stale body. The article
// service also drops an article's entries after it is saved or deleted.
//
// All methods are best effort: errors are logged and reported as a miss.
type RenderCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRenderCache creates a render cache backed by the given Valkey client.
func NewRenderCache(client *redis.Client, ttl time.Duration) *RenderCache {
	if ttl <= 0 {
		ttl = DefaultRenderTTL
	}
	return &RenderCache{client: client, ttl: ttl}
}

// ArticleKey returns the cache key for one revision of an article body.
func ArticleKey(id uuid.UUID, updatedAt time.Time) string {
	return fmt.Sprintf("article:%s:%d", id, updatedAt.UnixNano())
}

// Get returns the cached body for key.
func (rc *RenderCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := rc.client.Get(ctx, renderKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		slog.Warn("render cache get error", "key", key, "error", err)
		return nil, false
	}
	return val, true
}

// Set stores a rendered body under key with the configured TTL.
func (rc *RenderCache) Set(ctx context.Context, key string, body []byte) {
	if err := rc.client.Set(ctx, renderKeyPrefix+key, body, rc.ttl).Err(); err != nil {
		slog.Warn("render cache set error", "key", key, "error", err)
	}
}

// InvalidateArticle drops every cached revision of an article.
func (rc *RenderCache) InvalidateArticle(ctx context.Context, id uuid.UUID) {
	rc.deletePattern(ctx, renderKeyPrefix+"article:"+id.String()+":*")
}

// InvalidateAll removes all cached bodies.
func (rc *RenderCache) InvalidateAll(ctx context.Context) {
	rc.deletePattern(ctx, renderKeyPrefix+"*")
}

func (rc *RenderCache) deletePattern(ctx context.Context, pattern string) {
	var cursor uint64
	var deleted int
	for {
		keys, next, err := rc.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			slog.Warn("render cache scan error", "pattern", pattern, "error", err)
			return
		}
		if len(keys) > 0 {
			if err := rc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("render cache delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Debug("render cache cleared", "pattern", pattern, "deleted", deleted)
	}
}

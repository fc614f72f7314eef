package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"socialcore/internal/middleware"
	"socialcore/internal/observability"

	"github.com/redis/go-redis/v9"
)

// Aside loads key into dest from Redis, or calls fetch to fill dest and then
// stores it for ttl. Redis failures fall through to fetch. Errors from fetch
// are returned unchanged and nothing is cached.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	if client == nil {
		return fetch()
	}

	raw, err := client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if jsonErr := json.Unmarshal(raw, dest); jsonErr == nil {
			observability.CacheRequests.WithLabelValues("hit").Inc()
			return nil
		}
		middleware.Logger.WarnContext(ctx, "discarding undecodable cache entry", slog.String("key", key))
		observability.CacheRequests.WithLabelValues("error").Inc()
	case errors.Is(err, redis.Nil):
		observability.CacheRequests.WithLabelValues("miss").Inc()
	default:
		middleware.Logger.WarnContext(ctx, "cache read failed", slog.String("key", key), slog.String("error", err.Error()))
		observability.CacheRequests.WithLabelValues("error").Inc()
	}

	if err := fetch(); err != nil {
		return err
	}

	encoded, err := json.Marshal(dest)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "cache encode failed", slog.String("key", key), slog.String("error", err.Error()))
		return nil
	}
	if err := client.Set(ctx, key, encoded, ttl).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return nil
}

// Put overwrites key with value for ttl. Failures are logged and otherwise ignored.
func Put(ctx context.Context, key string, value any, ttl time.Duration) {
	if client == nil {
		return
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "cache encode failed", slog.String("key", key), slog.String("error", err.Error()))
		return
	}
	if err := client.Set(ctx, key, encoded, ttl).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
}

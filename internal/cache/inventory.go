package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"socialcore/internal/middleware"
)

const ProfileKeyPrefix = "profile:%s"

const ProfileTTL = 5 * time.Minute

// ProfileKey returns the cache key of a profile loaded by name.
func ProfileKey(name string) string {
	return fmt.Sprintf(ProfileKeyPrefix, name)
}

// Invalidate removes keys from the cache. Failures are logged and otherwise ignored.
func Invalidate(ctx context.Context, keys ...string) {
	if client == nil || len(keys) == 0 {
		return
	}
	if err := client.Del(ctx, keys...).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache invalidation failed",
			slog.Any("keys", keys), slog.String("error", err.Error()))
	}
}

// InvalidateProfiles drops the cached copies of the named profiles.
func InvalidateProfiles(ctx context.Context, names ...string) {
	keys := make([]string, 0, len(names))
	for _, n := range names {
		keys = append(keys, ProfileKey(n))
	}
	Invalidate(ctx, keys...)
}

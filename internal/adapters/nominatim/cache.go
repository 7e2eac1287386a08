package nominatim

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"eventapp/internal/domain"
)

const cacheKeyPrefix = "cache:locations:"

type cachedLookup struct {
	next   domain.LocationLookup
	rdb    redis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedLookup wraps next with a Redis cache. Misses are cached too, as JSON null.
// Redis failures fall through to next.
func NewCachedLookup(next domain.LocationLookup, rdb redis.Cmdable, ttl time.Duration, logger *slog.Logger) domain.LocationLookup {
	return &cachedLookup{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

// cacheKey hashes the normalised query so arbitrary user input stays a short key.
func cacheKey(query string) string {
	sum := sha1.Sum([]byte(strings.ToLower(strings.TrimSpace(query))))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

func (c *cachedLookup) Lookup(ctx context.Context, query string) (*domain.Location, error) {
	key := cacheKey(query)

	b, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var loc *domain.Location
		if err := json.Unmarshal(b, &loc); err == nil {
			return loc, nil
		}
		c.logger.WarnContext(ctx, "dropping unreadable location cache entry", "key", key)
	case !errors.Is(err, redis.Nil):
		c.logger.WarnContext(ctx, "location cache unavailable", "err", err)
	}

	loc, err := c.next.Lookup(ctx, query)
	if err != nil {
		return nil, err
	}
	b, err = json.Marshal(loc)
	if err == nil {
		err = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
	if err != nil {
		c.logger.WarnContext(ctx, "failed to cache location", "err", err)
	}
	return loc, nil
}

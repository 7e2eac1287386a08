package nominatim

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventapp/internal/domain"
)

type countingLookup struct {
	calls int
	loc   *domain.Location
	err   error
}

func (c *countingLookup) Lookup(ctx context.Context, query string) (*domain.Location, error) {
	c.calls++
	return c.loc, c.err
}

func newCache(t *testing.T, next domain.LocationLookup) (domain.LocationLookup, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewCachedLookup(next, rdb, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil))), mr
}

func TestCachedLookup_MissThenHit(t *testing.T) {
	lat := "48.85"
	next := &countingLookup{loc: &domain.Location{Name: "Paris", Latitude: &lat}}
	cache, mr := newCache(t, next)
	ctx := context.Background()

	first, err := cache.Lookup(ctx, "Paris")
	require.NoError(t, err)
	second, err := cache.Lookup(ctx, "  paris ")
	require.NoError(t, err)

	assert.Equal(t, 1, next.calls)
	assert.Equal(t, first, second)
	assert.True(t, mr.Exists(cacheKey("paris")))

	mr.FastForward(2 * time.Minute)
	_, err = cache.Lookup(ctx, "paris")
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestCachedLookup_CachesNoMatch(t *testing.T) {
	next := &countingLookup{}
	cache, _ := newCache(t, next)

	for i := 0; i < 3; i++ {
		loc, err := cache.Lookup(context.Background(), "atlantis")
		require.NoError(t, err)
		assert.Nil(t, loc)
	}
	assert.Equal(t, 1, next.calls)
}

func TestCachedLookup_ErrorsAreNotCached(t *testing.T) {
	next := &countingLookup{err: errors.New("timeout")}
	cache, mr := newCache(t, next)

	_, err := cache.Lookup(context.Background(), "paris")
	require.Error(t, err)
	assert.False(t, mr.Exists(cacheKey("paris")))
}

func TestCachedLookup_RedisDown(t *testing.T) {
	next := &countingLookup{loc: &domain.Location{Name: "Paris"}}
	cache, mr := newCache(t, next)
	mr.Close()

	loc, err := cache.Lookup(context.Background(), "paris")
	require.NoError(t, err)
	assert.Equal(t, "Paris", loc.Name)
}

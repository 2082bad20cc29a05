package portfolio

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anhtran/folio-api/internal/domain/portfolio"
	"github.com/anhtran/folio-api/pkg/logger"
)

func newTestCache(t *testing.T, store portfolio.Store) (*PublicCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewPublicCache(rdb, store, logger.NewNop()), mr
}

func TestPublicCache_MissThenStoreThenHit(t *testing.T) {
	cache, _ := newTestCache(t, &fakeStore{})
	ctx := context.Background()

	_, ok := cache.Cached(ctx)
	assert.False(t, ok)

	data := portfolio.Defaults()
	data.Skills = []string{"Go"}
	require.NoError(t, cache.Store(ctx, data))

	cached, ok := cache.Cached(ctx)
	require.True(t, ok)
	assert.Equal(t, data, cached)
}

func TestPublicCache_EntryExpires(t *testing.T) {
	cache, mr := newTestCache(t, &fakeStore{})
	ctx := context.Background()

	require.NoError(t, cache.Store(ctx, portfolio.Defaults()))
	mr.FastForward(publicCacheTTL + time.Second)

	_, ok := cache.Cached(ctx)
	assert.False(t, ok)
}

func TestPublicCache_MalformedEntryDropped(t *testing.T) {
	cache, mr := newTestCache(t, &fakeStore{})
	ctx := context.Background()

	require.NoError(t, mr.Set(publicCacheKey, "{not json"))

	_, ok := cache.Cached(ctx)
	assert.False(t, ok)
	assert.False(t, mr.Exists(publicCacheKey))
}

func TestPublicCache_RefreshFromStore(t *testing.T) {
	store := &fakeStore{}
	store.setKey(t, "skills", []string{"Go", "Rust"})
	cache, _ := newTestCache(t, store)
	ctx := context.Background()

	require.NoError(t, cache.Refresh(ctx))

	cached, ok := cache.Cached(ctx)
	require.True(t, ok)
	assert.Equal(t, []string{"Go", "Rust"}, cached.Skills)
	assert.Equal(t, portfolio.Defaults().PersonalInfo, cached.PersonalInfo)
}

func TestPublicCache_RefreshMissingDocumentCachesDefaults(t *testing.T) {
	cache, _ := newTestCache(t, &fakeStore{})
	ctx := context.Background()

	require.NoError(t, cache.Refresh(ctx))

	cached, ok := cache.Cached(ctx)
	require.True(t, ok)
	assert.Equal(t, portfolio.Defaults(), cached)
}

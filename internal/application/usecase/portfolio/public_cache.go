package portfolio

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/anhtran/folio-api/internal/domain/portfolio"
	"github.com/anhtran/folio-api/pkg/logger"
)

const (
	publicCacheKey = "portfolio:public"
	publicCacheTTL = 10 * time.Minute
)

// PublicCache serves the visitor-facing aggregate through redis. The worker
// refreshes it on every portfolio.updated event; the public handler falls
// back to the state manager on a miss.
type PublicCache struct {
	rdb    *redis.Client
	store  portfolio.Store
	logger logger.Logger
}

func NewPublicCache(rdb *redis.Client, store portfolio.Store, log logger.Logger) *PublicCache {
	return &PublicCache{rdb: rdb, store: store, logger: log}
}

// Cached returns the cached aggregate, reporting a miss as ok=false.
func (c *PublicCache) Cached(ctx context.Context) (portfolio.Data, bool) {
	raw, err := c.rdb.Get(ctx, publicCacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Failed to read portfolio cache", zap.Error(err))
		}
		return portfolio.Data{}, false
	}

	var data portfolio.Data
	if err := json.Unmarshal(raw, &data); err != nil {
		c.logger.Warn("Malformed portfolio cache entry, dropping it", zap.Error(err))
		c.rdb.Del(ctx, publicCacheKey)
		return portfolio.Data{}, false
	}
	return data, true
}

// Store caches an aggregate snapshot.
func (c *PublicCache) Store(ctx context.Context, data portfolio.Data) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, publicCacheKey, raw, publicCacheTTL).Err()
}

// Refresh re-reads the document from the store and rewrites the cache entry.
// An absent document caches the defaults.
func (c *PublicCache) Refresh(ctx context.Context) error {
	raw, _, err := c.store.Get(ctx)
	if errors.Is(err, portfolio.ErrNotFound) {
		return c.Store(ctx, portfolio.Defaults())
	}
	if err != nil {
		return err
	}

	data, err := portfolio.FromDocument(raw)
	if err != nil {
		return err
	}
	return c.Store(ctx, data)
}

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"seo-article-agent/internal/domain/model"
	"seo-article-agent/internal/domain/ports/adapter"
	"seo-article-agent/internal/infra/metrics"
)

var _ adapter.SearchProvider = (*CachedSearchProvider)(nil)

// CachedSearchProvider is a read-through cache in front of a SearchProvider.
// Cache failures are logged and bypassed.
type CachedSearchProvider struct {
	inner  adapter.SearchProvider
	client RedisClient
	ttl    time.Duration
	log    *zerolog.Logger
}

func NewCachedSearchProvider(inner adapter.SearchProvider, client RedisClient, ttl time.Duration, log *zerolog.Logger) *CachedSearchProvider {
	return &CachedSearchProvider{inner: inner, client: client, ttl: ttl, log: log}
}

// SERPKey keys on the exact query: results embed its text, so queries that
// differ in case or spacing get their own entries.
func SERPKey(query string) string {
	return "serp:" + query
}

func (c *CachedSearchProvider) Search(ctx context.Context, query string) (*model.SourceData, error) {
	key := SERPKey(query)

	raw, err := c.client.Get(ctx, key)
	switch {
	case err == nil:
		var data model.SourceData
		if jerr := json.Unmarshal([]byte(raw), &data); jerr == nil {
			metrics.IncCacheRequest("serp", "hit")
			return &data, nil
		}
		c.log.Warn().Str("key", key).Msg("corrupt serp cache entry")
	case errors.Is(err, Nil):
	default:
		c.log.Warn().Err(err).Str("key", key).Msg("serp cache read failed")
	}
	metrics.IncCacheRequest("serp", "miss")

	data, err := c.inner.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(data); err == nil {
		if err := c.client.Set(ctx, key, b, c.ttl); err != nil {
			c.log.Warn().Err(err).Str("key", key).Msg("serp cache write failed")
		}
	}
	return data, nil
}

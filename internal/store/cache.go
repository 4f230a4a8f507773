package store

import (
	"context"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

const schemaCacheKey = "schema"

// CachedSchemaProvider memoizes the schema description for a short TTL so
// every repair attempt of a run does not re-introspect the store. Ingestion
// calls Invalidate after rewriting tables.
type CachedSchemaProvider struct {
	next  SchemaProvider
	ttl   time.Duration
	mu    sync.Mutex
	cache *ttlcache.Cache[string, string]
}

func NewCachedSchemaProvider(next SchemaProvider, ttl time.Duration) *CachedSchemaProvider {
	return &CachedSchemaProvider{
		next: next,
		ttl:  ttl,
		cache: ttlcache.New(
			ttlcache.WithTTL[string, string](ttl),
		),
	}
}

func (c *CachedSchemaProvider) DescribeSchema(ctx context.Context) (string, error) {
	if c.ttl <= 0 {
		return c.next.DescribeSchema(ctx)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if cached := c.cache.Get(schemaCacheKey); cached != nil {
		return cached.Value(), nil
	}

	schema, err := c.next.DescribeSchema(ctx)
	if err != nil {
		return "", err
	}
	c.cache.Set(schemaCacheKey, schema, ttlcache.DefaultTTL)
	return schema, nil
}

// Invalidate drops the cached description.
func (c *CachedSchemaProvider) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.DeleteAll()
}

var _ SchemaProvider = (*CachedSchemaProvider)(nil)

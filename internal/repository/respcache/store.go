// Package respcache caches document store reads in a key-value store.
package respcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/mpapi/internal/db"
	"github.com/kailas-cloud/mpapi/internal/domain"
	"github.com/kailas-cloud/mpapi/internal/usecase/resource"
)

// kv is the consumer interface for the response cache (ISP).
type kv interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DelPrefix(ctx context.Context, prefix string) (int, error)
}

// versionKey holds the database version the cached responses were read from.
const versionKey = "db_version"

// Config tunes the cache.
type Config struct {
	Prefix string
	TTL    time.Duration
	// Bypass lists collections that are always read from the inner store,
	// typically those written through submissions.
	Bypass []string
}

// Store caches Query, Count and Aggregate results of an inner store.
// Upserts go straight through.
type Store struct {
	inner      resource.Store
	kv         kv
	prefix     string
	ttl        time.Duration
	bypass     map[string]bool
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(inner resource.Store, s kv, cfg Config, cacheTotal *prometheus.CounterVec, logger *zap.Logger) *Store {
	bypass := make(map[string]bool, len(cfg.Bypass))
	for _, c := range cfg.Bypass {
		bypass[c] = true
	}
	return &Store{
		inner:      inner,
		kv:         s,
		prefix:     cfg.Prefix,
		ttl:        cfg.TTL,
		bypass:     bypass,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Query returns cached documents or reads them from the inner store.
func (c *Store) Query(ctx context.Context, collection string, params domain.StoreParams) ([]domain.Document, error) {
	if c.bypass[collection] {
		return c.inner.Query(ctx, collection, params) //nolint:wrapcheck // transparent decorator
	}
	key := c.cacheKey("find", collection, params)

	var docs []domain.Document
	if c.get(ctx, key, &docs) {
		return docs, nil
	}
	docs, err := c.inner.Query(ctx, collection, params)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	c.put(ctx, key, docs)
	return docs, nil
}

// Count returns a cached count or reads it from the inner store.
func (c *Store) Count(ctx context.Context, collection string, criteria domain.Criteria, hint domain.Hint) (int, error) {
	if c.bypass[collection] {
		return c.inner.Count(ctx, collection, criteria, hint) //nolint:wrapcheck // transparent decorator
	}
	key := c.cacheKey("count", collection, criteria)

	var n int
	if c.get(ctx, key, &n) {
		return n, nil
	}
	n, err := c.inner.Count(ctx, collection, criteria, hint)
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	c.put(ctx, key, n)
	return n, nil
}

// Aggregate returns cached pipeline output or runs the pipeline on the inner store.
// Pipelines that sample documents are never cached.
func (c *Store) Aggregate(ctx context.Context, collection string, pipeline []domain.Stage) ([]domain.Document, error) {
	if c.bypass[collection] || samples(pipeline) {
		return c.inner.Aggregate(ctx, collection, pipeline) //nolint:wrapcheck // transparent decorator
	}
	key := c.cacheKey("aggregate", collection, pipeline)

	var docs []domain.Document
	if c.get(ctx, key, &docs) {
		return docs, nil
	}
	docs, err := c.inner.Aggregate(ctx, collection, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}
	c.put(ctx, key, docs)
	return docs, nil
}

// Upsert writes through to the inner store and drops the cached responses
// of the collection.
func (c *Store) Upsert(ctx context.Context, collection, key string, doc domain.Document) error {
	if err := c.inner.Upsert(ctx, collection, key, doc); err != nil {
		return err //nolint:wrapcheck // transparent decorator
	}
	if !c.bypass[collection] {
		if _, err := c.Invalidate(ctx, collection); err != nil {
			c.logger.Warn("Failed to invalidate cached responses",
				zap.String("collection", collection), zap.Error(err))
		}
	}
	return nil
}

// Invalidate drops every cached response of collection.
func (c *Store) Invalidate(ctx context.Context, collection string) (int, error) {
	n, err := c.kv.DelPrefix(ctx, c.prefix+collection+":")
	if err != nil {
		return n, fmt.Errorf("invalidate %s: %w", collection, err)
	}
	return n, nil
}

// SyncVersion purges the cache when it was filled from a database version
// other than version, then records version. It reports whether a purge ran.
func (c *Store) SyncVersion(ctx context.Context, version string) (bool, error) {
	marker := c.prefix + versionKey
	cached, err := c.kv.Get(ctx, marker)
	switch {
	case err == nil && string(cached) == version:
		return false, nil
	case err != nil && !errors.Is(err, db.ErrKeyNotFound):
		return false, fmt.Errorf("read cache version: %w", err)
	}

	n, err := c.kv.DelPrefix(ctx, c.prefix)
	if err != nil {
		return false, fmt.Errorf("purge cache: %w", err)
	}
	if err := c.kv.Set(ctx, marker, []byte(version)); err != nil {
		return true, fmt.Errorf("write cache version: %w", err)
	}
	c.logger.Info("Purged response cache",
		zap.String("from_version", string(cached)), zap.String("to_version", version), zap.Int("keys", n))
	return true, nil
}

func (c *Store) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

// cacheKey hashes the operation and its arguments. Map keys marshal sorted,
// so equal requests share a key.
func (c *Store) cacheKey(op, collection string, args any) string {
	data, err := json.Marshal(args)
	if err != nil {
		data = []byte(fmt.Sprintf("%v", args))
	}
	h := sha256.New()
	h.Write([]byte(op))
	h.Write([]byte{0})
	h.Write([]byte(collection))
	h.Write([]byte{0})
	h.Write(data)
	return c.prefix + collection + ":" + hex.EncodeToString(h.Sum(nil))
}

func (c *Store) get(ctx context.Context, key string, out any) bool {
	data, err := c.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached response", zap.String("key", key), zap.Error(err))
		}
		c.incCache("miss")
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		c.logger.Warn("Failed to parse cached response", zap.String("key", key), zap.Error(err))
		c.incCache("miss")
		return false
	}
	c.incCache("hit")
	return true
}

func (c *Store) put(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("Failed to encode response for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.kv.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache response", zap.String("key", key), zap.Error(err))
	}
}

// samples reports whether any stage, including nested sub-pipelines, is a $sample.
func samples(v any) bool {
	switch t := v.(type) {
	case []domain.Stage:
		for _, st := range t {
			if samples(st) {
				return true
			}
		}
	case []any:
		for _, e := range t {
			if samples(e) {
				return true
			}
		}
	case map[string]any:
		for k, e := range t {
			if k == "$sample" || samples(e) {
				return true
			}
		}
	}
	return false
}

package translate

import (
	"context"
	"crypto/sha1"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores translations keyed by normalized source text. A lost update
// is harmless (idempotent overwrite), so implementations only guarantee
// read-after-write within a request.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string)
}

// RedisCache shares translations across workers.
type RedisCache struct {
	RDB    *redis.Client
	Prefix string
	TTL    time.Duration
}

func NewRedisCache(rdb *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	if prefix == "" {
		prefix = "translate"
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisCache{RDB: rdb, Prefix: prefix, TTL: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	v, err := c.RDB.Get(ctx, c.Prefix+":"+key).Result()
	if err != nil {
		return "", false
	}
	return v, true
}

func (c *RedisCache) Set(ctx context.Context, key, value string) {
	_ = c.RDB.SetEx(ctx, c.Prefix+":"+key, value, c.TTL).Err()
}

// MemoryCache is the in-process fallback used when Redis is unavailable.
// Safe for concurrent use.
type MemoryCache struct {
	mu sync.RWMutex
	m  map[string]string
}

func NewMemoryCache() *MemoryCache { return &MemoryCache{m: make(map[string]string)} }

func (c *MemoryCache) Get(_ context.Context, key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.m[key]
	return v, ok
}

func (c *MemoryCache) Set(_ context.Context, key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = value
}

// CachedTranslator wraps a Translator with an explicit cache and makes it
// infallible: a failed translation is logged, the original text is returned,
// and the failure is cached as a no-op translation so a flapping remote is
// not retried for every row of every request.
type CachedTranslator struct {
	Inner Translator
	Cache Cache
}

func NewCachedTranslator(inner Translator, cache Cache) *CachedTranslator {
	return &CachedTranslator{Inner: inner, Cache: cache}
}

// Translate never returns an error; the second return reports whether the
// text actually changed.
func (t *CachedTranslator) Translate(ctx context.Context, text, source, target string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return text, false
	}
	key := cacheKey(trimmed, target)
	if cached, ok := t.Cache.Get(ctx, key); ok {
		return cached, cached != text
	}

	translated, err := t.Inner.Translate(ctx, trimmed, source, target)
	if err != nil {
		log.Printf("translate: falling back to original text: %v", err)
		t.Cache.Set(ctx, key, text)
		return text, false
	}
	t.Cache.Set(ctx, key, translated)
	return translated, translated != text
}

// cacheKey normalizes the source text (case and surrounding space are not
// meaningful for translation) and hashes it so arbitrarily long messages
// make bounded keys.
func cacheKey(text, target string) string {
	sum := sha1.Sum([]byte(strings.ToLower(text)))
	return fmt.Sprintf("%s:%x", target, sum)
}

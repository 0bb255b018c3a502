package common

import (
	"container/list"
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CacheRepository defines a minimal interface for a key/value cache.
// API clients depend on this rather than on a concrete cache so tests can
// hand in a plain map.
type CacheRepository[V any] interface {
	Get(key string) (value V, found bool)
	Set(key string, value V, expiration time.Duration)
	Delete(key string)
}

var _ CacheRepository[[]byte] = (*Cache[[]byte])(nil)

const (
	DefaultCacheSize       = 100
	DefaultCleanupInterval = time.Hour
)

// CacheStats is a point-in-time view of a cache.
type CacheStats struct {
	Name           string `json:"name"`
	Size           int    `json:"size"`
	MaxSize        int    `json:"maxSize"`
	ValidEntries   int    `json:"validEntries"`
	ExpiredEntries int    `json:"expiredEntries"`
}

type cacheEntry[V any] struct {
	key       string
	value     V
	createdAt time.Time
	expiresAt time.Time
}

// Cache is a bounded in-memory store with per-entry TTL.
//
// When full, Set evicts the entry that was inserted first. Reads do not
// change that order, and overwriting a key keeps its original slot.
// Expired entries are removed lazily on read and by the periodic sweeper
// started with Start.
type Cache[V any] struct {
	mu      sync.Mutex
	name    string
	maxSize int
	items   map[string]*list.Element
	order   *list.List // front = oldest insertion

	now             func() time.Time
	cleanupInterval time.Duration
	logger          *zap.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// CacheOption configures a Cache at construction.
type CacheOption func(*cacheOptions)

type cacheOptions struct {
	now             func() time.Time
	cleanupInterval time.Duration
	logger          *zap.Logger
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) CacheOption {
	return func(o *cacheOptions) { o.now = now }
}

// WithCleanupInterval sets how often the sweeper runs once started.
func WithCleanupInterval(d time.Duration) CacheOption {
	return func(o *cacheOptions) { o.cleanupInterval = d }
}

// WithCacheLogger attaches a logger used by the sweeper.
func WithCacheLogger(logger *zap.Logger) CacheOption {
	return func(o *cacheOptions) { o.logger = logger }
}

// NewCache creates an empty cache holding at most maxSize entries.
// A non-positive maxSize falls back to DefaultCacheSize.
func NewCache[V any](name string, maxSize int, opts ...CacheOption) *Cache[V] {
	o := cacheOptions{
		now:             time.Now,
		cleanupInterval: DefaultCleanupInterval,
		logger:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}
	return &Cache[V]{
		name:            name,
		maxSize:         maxSize,
		items:           make(map[string]*list.Element),
		order:           list.New(),
		now:             o.now,
		cleanupInterval: o.cleanupInterval,
		logger:          o.logger.With(zap.String("cache", name)),
	}
}

// Name returns the label the cache was created with.
func (c *Cache[V]) Name() string {
	return c.name
}

// Set inserts or overwrites key. The entry expires ttl from now.
func (c *Cache[V]) Set(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if el, ok := c.items[key]; ok {
		e := el.Value.(*cacheEntry[V])
		e.value = value
		e.createdAt = now
		e.expiresAt = now.Add(ttl)
		return
	}

	if len(c.items) >= c.maxSize {
		c.evictOldestLocked()
	}

	el := c.order.PushBack(&cacheEntry[V]{
		key:       key,
		value:     value,
		createdAt: now,
		expiresAt: now.Add(ttl),
	})
	c.items[key] = el
}

// Get returns the value for key if it has not expired. An expired entry is
// deleted as a side effect.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	el, ok := c.items[key]
	if !ok {
		return zero, false
	}
	e := el.Value.(*cacheEntry[V])
	if c.now().After(e.expiresAt) {
		c.removeLocked(el)
		return zero, false
	}
	return e.value, true
}

// Age reports how long ago the live entry for key was written.
func (c *Cache[V]) Age(key string) (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return 0, false
	}
	e := el.Value.(*cacheEntry[V])
	now := c.now()
	if now.After(e.expiresAt) {
		c.removeLocked(el)
		return 0, false
	}
	return now.Sub(e.createdAt), true
}

// Has reports whether Get would find key.
func (c *Cache[V]) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Delete removes key if present.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.removeLocked(el)
	}
}

// Clear removes every entry.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.order.Init()
}

// Len returns the number of stored entries, expired or not.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Cleanup deletes all expired entries and returns how many were removed.
func (c *Cache[V]) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for el := c.order.Front(); el != nil; {
		next := el.Next()
		if now.After(el.Value.(*cacheEntry[V]).expiresAt) {
			c.removeLocked(el)
			removed++
		}
		el = next
	}
	return removed
}

// Stats counts valid and expired entries without removing anything.
func (c *Cache[V]) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	stats := CacheStats{
		Name:    c.name,
		Size:    len(c.items),
		MaxSize: c.maxSize,
	}
	for el := c.order.Front(); el != nil; el = el.Next() {
		if now.After(el.Value.(*cacheEntry[V]).expiresAt) {
			stats.ExpiredEntries++
		} else {
			stats.ValidEntries++
		}
	}
	return stats
}

// Start launches the periodic sweeper. It runs until ctx is cancelled or
// Stop is called. Calling Start on a running cache does nothing.
func (c *Cache[V]) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil || c.cleanupInterval <= 0 {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})
	go c.sweep(ctx, c.done)
}

// Stop halts the sweeper and waits for it to exit. Safe to call more than
// once and on a cache that was never started.
func (c *Cache[V]) Stop() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (c *Cache[V]) sweep(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := c.Cleanup(); n > 0 {
				c.logger.Debug("swept expired entries", zap.Int("removed", n))
			}
		}
	}
}

func (c *Cache[V]) evictOldestLocked() {
	if el := c.order.Front(); el != nil {
		c.removeLocked(el)
	}
}

func (c *Cache[V]) removeLocked(el *list.Element) {
	c.order.Remove(el)
	delete(c.items, el.Value.(*cacheEntry[V]).key)
}

// GenerateKey builds a case-insensitive key from its parts, e.g.
// GenerateKey("Acme Ltd", "Administration") == "acme ltd:administration".
func GenerateKey(parts ...string) string {
	caser := cases.Lower(language.Und)
	lowered := make([]string, len(parts))
	for i, p := range parts {
		lowered[i] = caser.String(p)
	}
	return strings.Join(lowered, ":")
}

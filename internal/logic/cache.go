package logic

import (
	"container/list"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned by caches when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// RedisCache stores JSON-encoded values in Redis with a per-key TTL.
type RedisCache struct {
	client RedisClient
}

func NewRedisCache(client RedisClient) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string, dest any) error {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode cached %s: %w", key, err)
	}
	return nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.client.Set(ctx, key, raw, ttl).Err()
}

func (c *RedisCache) DeletePrefix(ctx context.Context, prefix string) error {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("redis scan %s: %w", prefix, err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis del %s: %w", prefix, err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// CacheStats reports in-process cache counters.
type CacheStats struct {
	Size      int
	MaxSize   int
	Hits      int64
	Misses    int64
	Evictions int64
}

// HitRate returns hits over lookups, or 0 before the first lookup.
func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

type memoryItem struct {
	key       string
	value     []byte
	expiresAt time.Time
}

// MemoryCache is a size-bounded LRU with per-entry TTL.
type MemoryCache struct {
	mu      sync.Mutex
	maxSize int
	order   *list.List
	items   map[string]*list.Element
	stats   CacheStats
	now     func() time.Time
}

func NewMemoryCache(maxSize int) *MemoryCache {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &MemoryCache{
		maxSize: maxSize,
		order:   list.New(),
		items:   make(map[string]*list.Element),
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string, dest any) error {
	c.mu.Lock()
	el, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		c.mu.Unlock()
		return ErrCacheMiss
	}
	item := el.Value.(*memoryItem)
	if c.now().After(item.expiresAt) {
		c.removeElement(el)
		c.stats.Misses++
		c.mu.Unlock()
		return ErrCacheMiss
	}
	c.order.MoveToFront(el)
	c.stats.Hits++
	raw := item.value
	c.mu.Unlock()

	return json.Unmarshal(raw, dest)
}

func (c *MemoryCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(ttl)
	if el, ok := c.items[key]; ok {
		item := el.Value.(*memoryItem)
		item.value = raw
		item.expiresAt = expiresAt
		c.order.MoveToFront(el)
		return nil
	}

	for c.order.Len() >= c.maxSize {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.removeElement(oldest)
		c.stats.Evictions++
	}
	c.items[key] = c.order.PushFront(&memoryItem{key: key, value: raw, expiresAt: expiresAt})
	return nil
}

func (c *MemoryCache) DeletePrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, el := range c.items {
		if strings.HasPrefix(key, prefix) {
			c.removeElement(el)
		}
	}
	return nil
}

// Stats returns a snapshot of the cache counters.
func (c *MemoryCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Size = c.order.Len()
	s.MaxSize = c.maxSize
	return s
}

func (c *MemoryCache) removeElement(el *list.Element) {
	item := el.Value.(*memoryItem)
	delete(c.items, item.key)
	c.order.Remove(el)
}

// TieredCache fronts a shared cache with a short-lived in-process one.
// Reads fall through to the shared tier and repopulate the local tier.
type TieredCache struct {
	local    *MemoryCache
	shared   Cache
	localTTL time.Duration
}

func NewTieredCache(local *MemoryCache, shared Cache, localTTL time.Duration) *TieredCache {
	if localTTL <= 0 {
		localTTL = time.Minute
	}
	return &TieredCache{local: local, shared: shared, localTTL: localTTL}
}

func (c *TieredCache) Get(ctx context.Context, key string, dest any) error {
	if err := c.local.Get(ctx, key, dest); err == nil {
		return nil
	}
	if err := c.shared.Get(ctx, key, dest); err != nil {
		return err
	}
	_ = c.local.Set(ctx, key, dest, c.localTTL)
	return nil
}

func (c *TieredCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	_ = c.local.Set(ctx, key, value, min(ttl, c.localTTL))
	return c.shared.Set(ctx, key, value, ttl)
}

func (c *TieredCache) DeletePrefix(ctx context.Context, prefix string) error {
	_ = c.local.DeletePrefix(ctx, prefix)
	return c.shared.DeletePrefix(ctx, prefix)
}

// Stats reports the local tier's counters.
func (c *TieredCache) Stats() CacheStats { return c.local.Stats() }

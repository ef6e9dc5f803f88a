package chart

import (
	"sync"
	"time"
)

type CacheItem struct {
	Data       []byte
	Expiration time.Time
}

// Cache keeps rendered charts for a short time so every browser poll does not re-render.
type Cache struct {
	ttl   time.Duration
	mu    sync.Mutex
	items map[string]*CacheItem
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{ttl: ttl, items: make(map[string]*CacheItem)}
}

func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if item, found := c.items[key]; found && time.Now().Before(item.Expiration) {
		return item.Data, true
	}
	return nil, false
}

func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for k, item := range c.items {
		if now.After(item.Expiration) {
			delete(c.items, k)
		}
	}
	c.items[key] = &CacheItem{Data: data, Expiration: now.Add(c.ttl)}
}

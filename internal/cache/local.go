package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// LocalCache is an in-process Cache with TTL expiry and a size bound.
// Values are stored JSON-encoded so callers never share mutable state.
type LocalCache struct {
	mu         sync.Mutex
	items      map[string]*localItem
	maxSize    int
	defaultTTL time.Duration
	metrics    *Metrics
	now        func() time.Time
}

type localItem struct {
	data       []byte
	expiresAt  time.Time
	accessedAt time.Time
}

func NewLocalCache(maxSize int, defaultTTL time.Duration, metrics *Metrics) *LocalCache {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &LocalCache{
		items:      make(map[string]*localItem),
		maxSize:    maxSize,
		defaultTTL: defaultTTL,
		metrics:    metrics,
		now:        time.Now,
	}
}

func (lc *LocalCache) GetObject(_ context.Context, key string, dest interface{}) (bool, error) {
	lc.mu.Lock()
	item, ok := lc.items[key]
	now := lc.now()
	if ok && now.After(item.expiresAt) {
		delete(lc.items, key)
		ok = false
	}
	if !ok {
		lc.mu.Unlock()
		lc.metrics.observe("local", "miss")
		return false, nil
	}
	item.accessedAt = now
	data := item.data
	lc.mu.Unlock()

	if err := json.Unmarshal(data, dest); err != nil {
		lc.metrics.observe("local", "error")
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	lc.metrics.observe("local", "hit")
	return true, nil
}

func (lc *LocalCache) SetObject(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if ttl == 0 {
		ttl = lc.defaultTTL
	}

	lc.mu.Lock()
	defer lc.mu.Unlock()
	now := lc.now()
	if _, exists := lc.items[key]; !exists && len(lc.items) >= lc.maxSize {
		lc.evictLRU()
	}
	lc.items[key] = &localItem{data: data, expiresAt: now.Add(ttl), accessedAt: now}
	return nil
}

func (lc *LocalCache) Delete(_ context.Context, key string) error {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	delete(lc.items, key)
	return nil
}

func (lc *LocalCache) Len() int {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return len(lc.items)
}

// evictLRU drops the least recently accessed entry. Callers hold mu.
func (lc *LocalCache) evictLRU() {
	var oldestKey string
	var oldest time.Time
	for k, item := range lc.items {
		if oldestKey == "" || item.accessedAt.Before(oldest) {
			oldestKey = k
			oldest = item.accessedAt
		}
	}
	if oldestKey != "" {
		delete(lc.items, oldestKey)
	}
}

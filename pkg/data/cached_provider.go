package data

import (
	"path/filepath"
	"sync"

	"github.com/ducminhle1904/btc-intraday-bot/pkg/types"
)

// MemoryCache implements Cache with in-memory storage
type MemoryCache struct {
	cache map[string][]types.OHLCV
	mutex sync.RWMutex
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		cache: make(map[string][]types.OHLCV),
	}
}

// Get retrieves a series from the cache if available. The returned slice
// is a copy; callers can mutate it freely.
func (c *MemoryCache) Get(key string) ([]types.OHLCV, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	data, exists := c.cache[key]
	if !exists {
		return nil, false
	}
	result := make([]types.OHLCV, len(data))
	copy(result, data)
	return result, true
}

// Set stores a copy of the series in the cache
func (c *MemoryCache) Set(key string, data []types.OHLCV) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	cached := make([]types.OHLCV, len(data))
	copy(cached, data)
	c.cache[key] = cached
}

// Clear removes all cached series
func (c *MemoryCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.cache = make(map[string][]types.OHLCV)
}

// Size returns the number of cached entries
func (c *MemoryCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.cache)
}

// CachedProvider wraps a Provider with an in-memory cache so repeated
// loads of the same file hit the disk once
type CachedProvider struct {
	provider Provider
	cache    Cache
}

// NewCachedProvider creates a caching wrapper around the given provider
func NewCachedProvider(provider Provider) *CachedProvider {
	return &CachedProvider{
		provider: provider,
		cache:    NewMemoryCache(),
	}
}

// GetName returns the name of the provider
func (p *CachedProvider) GetName() string {
	return p.provider.GetName() + " (cached)"
}

// LoadData loads bars through the cache
func (p *CachedProvider) LoadData(source string) ([]types.OHLCV, error) {
	key := cacheKey(source)
	if data, ok := p.cache.Get(key); ok {
		return data, nil
	}

	data, err := p.provider.LoadData(source)
	if err != nil {
		return nil, err
	}
	p.cache.Set(key, data)
	return data, nil
}

// ValidateData delegates to the wrapped provider
func (p *CachedProvider) ValidateData(data []types.OHLCV) error {
	return p.provider.ValidateData(data)
}

// ClearCache empties the cache
func (p *CachedProvider) ClearCache() {
	p.cache.Clear()
}

func cacheKey(source string) string {
	if abs, err := filepath.Abs(source); err == nil {
		return abs
	}
	return source
}

package ffi_fixtures

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"
)

// Cache keeps recently used libraries open, keyed by path. Evicted
// libraries are closed.
type Cache struct {
	mu     sync.Mutex
	lru    *lru.Cache
	opts   []Option
	logger *zap.Logger
}

// NewCache returns a Cache holding at most size libraries. opts are passed
// to every Open.
func NewCache(size int, logger *zap.Logger, opts ...Option) (*Cache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Cache{
		opts:   append([]Option{WithLogger(logger)}, opts...),
		logger: logger,
	}

	inner, err := lru.NewWithEvict(size, c.onEvict)
	if err != nil {
		return nil, fmt.Errorf("failed to create library cache: %w", err)
	}
	c.lru = inner

	return c, nil
}

// Get returns the open library at path, loading it if needed.
func (c *Cache) Get(path string) (*Library, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.lru.Get(path); ok {
		return v.(*Library), nil
	}

	lib, err := Open(path, c.opts...)
	if err != nil {
		return nil, err
	}

	c.lru.Add(path, lib)
	return lib, nil
}

func (c *Cache) Len() int {
	return c.lru.Len()
}

// Purge closes and drops every cached library.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lru.Purge()
}

func (c *Cache) onEvict(key interface{}, value interface{}) {
	lib := value.(*Library)
	if err := lib.Close(); err != nil {
		c.logger.Warn("failed to close evicted library", zap.Any("path", key), zap.Error(err))
	}
}

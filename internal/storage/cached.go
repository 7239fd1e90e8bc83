package storage

import (
	"context"
	"sync"
)

// CachedBackend pairs a backing store with an in-memory copy of its blob.
// The first Load reads through to the backing store; every Save writes
// through and only updates the cache once the backing store accepted it.
//
// The mutex protects the cached bytes only. Callers doing read-modify-write
// cycles can still lose updates to each other.
type CachedBackend struct {
	backing Backend

	mu     sync.RWMutex
	loaded bool
	data   []byte
}

func NewCachedBackend(backing Backend) *CachedBackend {
	return &CachedBackend{backing: backing}
}

func (c *CachedBackend) Name() string {
	return c.backing.Name() + "+cache"
}

func (c *CachedBackend) Load(ctx context.Context) ([]byte, error) {
	c.mu.RLock()
	if c.loaded {
		data := cloneBytes(c.data)
		c.mu.RUnlock()
		return data, nil
	}
	c.mu.RUnlock()

	data, err := c.backing.Load(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loaded {
		c.data = cloneBytes(data)
		c.loaded = true
	}
	return cloneBytes(c.data), nil
}

func (c *CachedBackend) Save(ctx context.Context, data []byte) error {
	if err := c.backing.Save(ctx, data); err != nil {
		return err
	}

	c.mu.Lock()
	c.data = cloneBytes(data)
	c.loaded = true
	c.mu.Unlock()
	return nil
}

// Invalidate drops the cached copy so the next Load reads through again.
func (c *CachedBackend) Invalidate() {
	c.mu.Lock()
	c.data = nil
	c.loaded = false
	c.mu.Unlock()
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}

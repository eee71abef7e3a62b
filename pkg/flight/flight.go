package flight

import (
	"sync"
	"time"
)

// Cache coalesces concurrent lookups for the same key into a single call to
// work and keeps finished values for a fixed period, so identical synthesis
// requests arriving together share one model invocation.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	ttl      time.Duration
	finished map[K]*entry[V]
	pending  map[K]*call[V]
	work     func(K) (V, error)
}

type entry[V any] struct {
	val      V
	deadline time.Time // zero => never expires
}

type call[V any] struct {
	val  V
	err  error
	done chan struct{}
}

// NewCache creates a cache around work. ttl <= 0 keeps results forever.
func NewCache[K comparable, V any](ttl time.Duration, work func(K) (V, error)) *Cache[K, V] {
	return &Cache[K, V]{
		ttl:      ttl,
		finished: make(map[K]*entry[V]),
		pending:  make(map[K]*call[V]),
		work:     work,
	}
}

// Get returns the cached value for k, joining an in-flight computation when
// one exists, otherwise computing it. Errors are not cached.
func (c *Cache[K, V]) Get(k K) (V, error) {
	c.mu.Lock()
	if e, ok := c.finished[k]; ok {
		if e.deadline.IsZero() || time.Now().Before(e.deadline) {
			v := e.val
			c.mu.Unlock()
			return v, nil
		}
		delete(c.finished, k)
	}
	if p, ok := c.pending[k]; ok {
		c.mu.Unlock()
		<-p.done
		return p.val, p.err
	}
	p := &call[V]{done: make(chan struct{})}
	c.pending[k] = p
	c.mu.Unlock()

	p.val, p.err = c.work(k)

	c.mu.Lock()
	delete(c.pending, k)
	if p.err == nil {
		var deadline time.Time
		if c.ttl > 0 {
			deadline = time.Now().Add(c.ttl)
		}
		c.finished[k] = &entry[V]{val: p.val, deadline: deadline}
	}
	c.mu.Unlock()
	close(p.done)

	return p.val, p.err
}

// Forget drops any finished value for k. In-flight work is unaffected.
func (c *Cache[K, V]) Forget(k K) {
	c.mu.Lock()
	delete(c.finished, k)
	c.mu.Unlock()
}

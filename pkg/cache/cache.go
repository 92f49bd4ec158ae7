// Package cache memoizes pure string-keyed results in a bounded LRU.
//
// goxmatch keeps one process-wide instance for regex dialect translation:
// a portable pattern always translates to the same host pattern, so every
// query plan can share it.
//
//	c := cache.New[string](1024)
//	host, err := c.Resolve(`\d{4}`, func() (string, error) {
//	    return regex.Translate(`\d{4}`)
//	})
package cache

import (
	"container/list"
	"sync"
)

// DefaultSize is used when New is given a non-positive size.
const DefaultSize = 256

type slot[V any] struct {
	key   string
	value V
}

// Cache holds at most size values and drops the least recently used one
// when full. It is safe for concurrent use.
type Cache[V any] struct {
	mu    sync.Mutex
	size  int
	order *list.List // front is most recent
	byKey map[string]*list.Element
}

// New returns an empty cache holding up to size values.
func New[V any](size int) *Cache[V] {
	if size <= 0 {
		size = DefaultSize
	}
	return &Cache[V]{size: size, order: list.New(), byKey: make(map[string]*list.Element)}
}

// Lookup returns the value stored under key and marks it most recent.
func (c *Cache[V]) Lookup(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.byKey[key]; ok {
		c.order.MoveToFront(el)
		return el.Value.(*slot[V]).value, true
	}
	var zero V
	return zero, false
}

// Store records value under key.
func (c *Cache[V]) Store(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.byKey[key]; ok {
		el.Value.(*slot[V]).value = value
		c.order.MoveToFront(el)
		return
	}
	if c.order.Len() >= c.size {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.byKey, oldest.Value.(*slot[V]).key)
	}
	c.byKey[key] = c.order.PushFront(&slot[V]{key: key, value: value})
}

// Resolve returns the cached value for key, computing and storing it with
// fn on a miss. Errors from fn are returned and nothing is stored.
//
// fn runs without the lock held, so concurrent misses on one key may each
// call it; the results are interchangeable.
func (c *Cache[V]) Resolve(key string, fn func() (V, error)) (V, error) {
	if v, ok := c.Lookup(key); ok {
		return v, nil
	}
	v, err := fn()
	if err != nil {
		var zero V
		return zero, err
	}
	c.Store(key, v)
	return v, nil
}

// Len returns the number of stored values.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// # internal/data/workspace/cache.go
package workspace

import (
	"container/list"
	"sync"
)

// LRUCache is a thread-safe, capacity-bounded least-recently-used cache.
// onEvict, when set, runs for every entry dropped to make room; it does not
// run for explicit Remove or Clear calls.
type LRUCache[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	items    map[K]*list.Element
	order    *list.List // front = most recently used
	onEvict  func(K, V)
}

type lruEntry[K comparable, V any] struct {
	key   K
	value V
}

// NewLRUCache creates a cache holding at most capacity entries. Values <= 0
// are normalised to 1.
func NewLRUCache[K comparable, V any](capacity int, onEvict func(K, V)) *LRUCache[K, V] {
	if capacity <= 0 {
		capacity = 1
	}
	return &LRUCache[K, V]{
		capacity: capacity,
		items:    make(map[K]*list.Element, capacity),
		order:    list.New(),
		onEvict:  onEvict,
	}
}

func (c *LRUCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*lruEntry[K, V]).value, true
}

// Put inserts or replaces key. The least recently used entry is dropped
// first when the cache is full.
func (c *LRUCache[K, V]) Put(key K, value V) {
	var evicted *lruEntry[K, V]

	c.mu.Lock()
	if el, ok := c.items[key]; ok {
		c.order.MoveToFront(el)
		el.Value.(*lruEntry[K, V]).value = value
		c.mu.Unlock()
		return
	}
	if c.order.Len() >= c.capacity {
		evicted = c.removeOldestLocked()
	}
	c.items[key] = c.order.PushFront(&lruEntry[K, V]{key: key, value: value})
	c.mu.Unlock()

	if evicted != nil && c.onEvict != nil {
		c.onEvict(evicted.key, evicted.value)
	}
}

// Remove drops key and reports whether it was present.
func (c *LRUCache[K, V]) Remove(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return false
	}
	c.order.Remove(el)
	delete(c.items, key)
	return true
}

func (c *LRUCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *LRUCache[K, V]) Cap() int {
	return c.capacity
}

func (c *LRUCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.items = make(map[K]*list.Element, c.capacity)
}

// Caller must hold c.mu.
func (c *LRUCache[K, V]) removeOldestLocked() *lruEntry[K, V] {
	back := c.order.Back()
	if back == nil {
		return nil
	}
	c.order.Remove(back)
	entry := back.Value.(*lruEntry[K, V])
	delete(c.items, entry.key)
	return entry
}

package cache

import (
	"container/list"
	"sync"
)

// LRU is a bounded least-recently-used cache keyed by int64. It is safe for
// concurrent use. A capacity of zero or less disables caching entirely.
type LRU struct {
	mu       sync.Mutex
	capacity int
	items    map[int64]*list.Element
	order    *list.List
}

type lruEntry struct {
	key   int64
	value string
}

func NewLRU(capacity int) *LRU {
	return &LRU{
		capacity: capacity,
		items:    make(map[int64]*list.Element),
		order:    list.New(),
	}
}

// Get returns the cached value and marks the key as most recently used.
func (c *LRU) Get(key int64) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return "", false
	}
	c.order.MoveToFront(el)
	return el.Value.(*lruEntry).value, true
}

// Put stores the value, evicting the least recently used entry when full.
func (c *LRU) Put(key int64, value string) {
	if c.capacity <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.order.MoveToFront(el)
		el.Value.(*lruEntry).value = value
		return
	}

	if c.order.Len() >= c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*lruEntry).key)
		}
	}
	c.items[key] = c.order.PushFront(&lruEntry{key: key, value: value})
}

// Len returns the number of cached entries.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

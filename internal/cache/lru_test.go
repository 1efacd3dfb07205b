package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLRUEviction(t *testing.T) {
	c := NewLRU(2)
	c.Put(1, "SKU-1")
	c.Put(2, "SKU-2")
	c.Put(3, "SKU-3")

	_, ok := c.Get(1)
	assert.False(t, ok, "oldest entry should be evicted")

	v, ok := c.Get(3)
	assert.True(t, ok)
	assert.Equal(t, "SKU-3", v)
	assert.Equal(t, 2, c.Len())
}

func TestLRUGetRefreshesRecency(t *testing.T) {
	c := NewLRU(2)
	c.Put(1, "SKU-1")
	c.Put(2, "SKU-2")

	_, ok := c.Get(1)
	assert.True(t, ok)

	c.Put(3, "SKU-3")

	_, ok = c.Get(2)
	assert.False(t, ok, "entry 2 became least recently used")
	_, ok = c.Get(1)
	assert.True(t, ok)
}

func TestLRUUpdateExisting(t *testing.T) {
	c := NewLRU(2)
	c.Put(1, "SKU-1")
	c.Put(1, "SKU-1b")

	v, ok := c.Get(1)
	assert.True(t, ok)
	assert.Equal(t, "SKU-1b", v)
	assert.Equal(t, 1, c.Len())
}

func TestLRUZeroCapacity(t *testing.T) {
	c := NewLRU(0)
	c.Put(1, "SKU-1")
	_, ok := c.Get(1)
	assert.False(t, ok)
}

func TestLRUConcurrentAccess(t *testing.T) {
	c := NewLRU(64)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				key := int64(n*200 + j)
				c.Put(key, fmt.Sprintf("SKU-%d", key))
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 64)
}

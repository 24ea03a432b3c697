package lrucache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLruCache[int, []byte](2)
	c.Add(1, []byte("one"))
	c.Add(2, []byte("two"))

	_, ok := c.Get(1)
	assert.True(t, ok)

	c.Add(3, []byte("three"))
	_, ok = c.Get(2)
	assert.False(t, ok, "2 was least recently used")

	v, ok := c.Get(1)
	assert.True(t, ok)
	assert.Equal(t, []byte("one"), v)
	assert.Equal(t, 2, c.Len())
}

func TestAddReplaces(t *testing.T) {
	c := NewLruCache[string, int](4)
	c.Add("a", 1)
	c.Add("a", 2)

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, c.Len())
}

func TestMinimumCapacity(t *testing.T) {
	c := NewLruCache[int, int](0)
	c.Add(1, 1)
	c.Add(2, 2)
	assert.Equal(t, 1, c.Len())

	_, ok := c.Get(2)
	assert.True(t, ok)
}

func TestConcurrentUse(t *testing.T) {
	c := NewLruCache[int, int](8)
	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 1000 {
				c.Add((g*i)%16, i)
				c.Get(i % 16)
			}
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Len(), 8)
}

// Package lrucache is a small mutex-guarded LRU used for encoded frames and
// terminal styles.
package lrucache

import (
	"container/list"
	"sync"
)

type LruCache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Add(key K, val V)
	Len() int
}

type lruCache[K comparable, V any] struct {
	mu  sync.Mutex
	cap int
	ll  *list.List
	m   map[K]*list.Element
}

type lruCacheEntry[K comparable, V any] struct {
	key K
	val V
}

// NewLruCache never holds fewer than one entry.
func NewLruCache[K comparable, V any](capacity int) LruCache[K, V] {
	return &lruCache[K, V]{cap: max(1, capacity), ll: list.New(), m: make(map[K]*list.Element)}
}

func (c *lruCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ele, ok := c.m[key]; ok {
		c.ll.MoveToFront(ele)
		return ele.Value.(lruCacheEntry[K, V]).val, true
	}
	var zero V
	return zero, false
}

func (c *lruCache[K, V]) Add(key K, val V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ele, ok := c.m[key]; ok {
		ele.Value = lruCacheEntry[K, V]{key: key, val: val}
		c.ll.MoveToFront(ele)
		return
	}
	c.m[key] = c.ll.PushFront(lruCacheEntry[K, V]{key: key, val: val})
	if c.ll.Len() > c.cap {
		if tail := c.ll.Back(); tail != nil {
			c.ll.Remove(tail)
			delete(c.m, tail.Value.(lruCacheEntry[K, V]).key)
		}
	}
}

func (c *lruCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

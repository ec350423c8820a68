// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package numexpr

import (
	"container/list"
	"sync"

	"github.com/google/cel-go/common/ast"
)

// Option configures an Evaluator.
type Option func(*Evaluator)

// DisableCache turns off the parse cache so every evaluation re-parses its
// expression. Use this for benchmarking.
func DisableCache() Option {
	return func(e *Evaluator) {
		e.cache = nil
	}
}

// WithCacheSize sets the maximum number of parsed expressions kept.
func WithCacheSize(size int) Option {
	return func(e *Evaluator) {
		if size <= 0 {
			e.cache = nil
			return
		}
		e.cache = newLRUCache[*ast.AST](size)
	}
}

// Templates instantiate the same expressions over and over with different
// values; a few hundred distinct expressions covers the largest workloads.
const defaultCacheSize = 512

// lruCache is a thread-safe generic LRU cache with a maximum size.
type lruCache[T any] struct {
	mu        sync.Mutex
	maxSize   int
	items     map[string]*list.Element
	evictList *list.List
}

type cacheEntry[T any] struct {
	key   string
	value T
}

func newLRUCache[T any](maxSize int) *lruCache[T] {
	return &lruCache[T]{
		maxSize:   maxSize,
		items:     make(map[string]*list.Element),
		evictList: list.New(),
	}
}

func (c *lruCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.evictList.MoveToFront(elem)
		return elem.Value.(*cacheEntry[T]).value, true
	}
	var zero T
	return zero, false
}

func (c *lruCache[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.evictList.MoveToFront(elem)
		elem.Value.(*cacheEntry[T]).value = value
		return
	}

	elem := c.evictList.PushFront(&cacheEntry[T]{key: key, value: value})
	c.items[key] = elem

	if c.evictList.Len() > c.maxSize {
		if oldest := c.evictList.Back(); oldest != nil {
			c.evictList.Remove(oldest)
			delete(c.items, oldest.Value.(*cacheEntry[T]).key)
		}
	}
}

func (c *lruCache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictList.Len()
}

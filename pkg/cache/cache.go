// Package cache provides a thread-safe LRU cache for parsed queries.
//
// A compiled query handle is already reusable, so the engine itself imposes
// no process-wide caching policy. This cache is the opt-in policy for callers
// that receive query text repeatedly (for example from request parameters)
// and want to amortize parsing across call sites.
//
// # Example
//
//	c := cache.New(1024)
//	q, err := c.GetOrParse(src, func() (*types.Query, error) {
//	    return parser.Parse(src)
//	})
package cache

import (
	"container/list"
	"sync"

	"github.com/irvinebroque/jsonpath/pkg/types"
)

// entry is a cache entry stored in the doubly-linked list.
type entry struct {
	key   string
	query *types.Query
}

// Cache is a thread-safe LRU (Least Recently Used) cache for parsed queries.
// Once the capacity is reached, the least recently accessed entry is evicted.
//
// Safe for concurrent use by multiple goroutines.
type Cache struct {
	mu       sync.RWMutex
	capacity int
	ll       *list.List
	items    map[string]*list.Element
}

// New creates a new LRU cache with the given capacity.
// If capacity is <= 0, a default of 256 is used.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = 256
	}
	return &Cache{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[string]*list.Element, capacity),
	}
}

// Get retrieves a parsed query from the cache.
// Returns (query, true) if found and moves the entry to the front (MRU).
func (c *Cache) Get(key string) (*types.Query, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	c.ll.MoveToFront(el)
	return el.Value.(*entry).query, true
}

// Set inserts or replaces a query in the cache.
// If at capacity, the least recently used entry is evicted first.
func (c *Cache) Set(key string, query *types.Query) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*entry).query = query
		c.ll.MoveToFront(el)
		return
	}

	if c.ll.Len() >= c.capacity {
		c.evictLocked()
	}

	el := c.ll.PushFront(&entry{key: key, query: query})
	c.items[key] = el
}

// GetOrParse retrieves the query for key, or calls parse to produce it,
// caching the result. Parse errors are not cached.
func (c *Cache) GetOrParse(key string, parse func() (*types.Query, error)) (*types.Query, error) {
	if q, ok := c.Get(key); ok {
		return q, nil
	}
	q, err := parse()
	if err != nil {
		return nil, err
	}
	c.Set(key, q)
	return q, nil
}

// Len returns the number of entries currently in the cache.
func (c *Cache) Len() int {
	c.mu.RLock()
	n := len(c.items)
	c.mu.RUnlock()
	return n
}

// Capacity returns the maximum number of entries the cache can hold.
func (c *Cache) Capacity() int {
	return c.capacity
}

// Invalidate removes a single entry from the cache.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.ll.Remove(el)
		delete(c.items, key)
	}
}

// Clear removes all entries from the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	c.items = make(map[string]*list.Element, c.capacity)
}

// evictLocked removes the least recently used entry.
// Caller must hold c.mu for writing.
func (c *Cache) evictLocked() {
	el := c.ll.Back()
	if el == nil {
		return
	}
	c.ll.Remove(el)
	delete(c.items, el.Value.(*entry).key)
}

package shader

import (
	"container/list"
	"hash/fnv"
	"sync"
	"sync/atomic"
)

// DefaultCacheCapacity is the number of compiled programs kept by NewCache(0).
const DefaultCacheCapacity = 64

// Cache is an LRU of compiled programs keyed by their WGSL source.
//
// Compilation errors are not cached, so a failing source is retried on the
// next request. Cache is safe for concurrent use.
type Cache struct {
	mu       sync.Mutex
	compiler Compiler
	capacity int
	entries  map[uint64]*list.Element
	lru      *list.List

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// Stats reports cache activity.
type Stats struct {
	Len       int
	Capacity  int
	Hits      uint64
	Misses    uint64
	Evictions uint64
	HitRate   float64
}

// NewCache creates a cache that compiles misses with compiler.
// If capacity <= 0, DefaultCacheCapacity is used.
func NewCache(compiler Compiler, capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &Cache{
		compiler: compiler,
		capacity: capacity,
		entries:  make(map[uint64]*list.Element),
		lru:      list.New(),
	}
}

// SourceKey computes the FNV-1a hash used to key a source.
func SourceKey(source string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(source)) // fnv.Write never returns an error
	return h.Sum64()
}

// Get returns the compiled program for source, compiling it on a miss.
// The boolean reports whether the program came from the cache.
func (c *Cache) Get(source string) (*Program, bool, error) {
	key := SourceKey(source)

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		if p := el.Value.(*Program); p.Source == source {
			c.lru.MoveToFront(el)
			c.hits.Add(1)
			return p, true, nil
		}
	}

	c.misses.Add(1)

	spirv, err := c.compiler.Compile(source)
	if err != nil {
		return nil, false, err
	}

	p := &Program{Key: key, Source: source, SPIRV: spirv, Bindings: ParseBindings(source)}

	if el, ok := c.entries[key]; ok {
		// Hash collision with a different source: replace it.
		el.Value = p
		c.lru.MoveToFront(el)
		return p, false, nil
	}

	for c.lru.Len() >= c.capacity {
		oldest := c.lru.Back()
		if oldest == nil {
			break
		}
		c.lru.Remove(oldest)
		delete(c.entries, oldest.Value.(*Program).Key)
		c.evictions.Add(1)
	}

	c.entries[key] = c.lru.PushFront(p)
	return p, false, nil
}

// Len returns the number of cached programs.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Clear drops every cached program. Statistics are kept.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[uint64]*list.Element)
	c.lru.Init()
}

// Stats returns current cache statistics.
func (c *Cache) Stats() Stats {
	hits := c.hits.Load()
	misses := c.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return Stats{
		Len:       c.Len(),
		Capacity:  c.capacity,
		Hits:      hits,
		Misses:    misses,
		Evictions: c.evictions.Load(),
		HitRate:   hitRate,
	}
}

package cache

import (
	"sort"
	"sync"

	"github.com/zeebo/blake3"
)

// Key identifies a shader source by content.
type Key [32]byte

// KeyOf returns the key of src.
func KeyOf(src []byte) Key {
	return Key(blake3.Sum256(src))
}

// Cache holds compiled modules with a soft entry limit.
type Cache struct {
	mu        sync.Mutex
	entries   map[Key]*entry
	softLimit int
	tick      int64 // monotonic access counter

	hits, misses, evictions uint64
}

type entry struct {
	code  []byte
	atime int64
}

// New creates a cache holding about softLimit modules. Zero means
// unlimited.
func New(softLimit int) *Cache {
	return &Cache{
		entries:   make(map[Key]*entry),
		softLimit: softLimit,
	}
}

// Get returns the module stored under key.
func (c *Cache) Get(key Key) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	c.tick++
	e.atime = c.tick
	return e.code, true
}

// GetOrCompile returns the module stored under key, calling compile on a
// miss. compile runs under the lock, so concurrent misses on one key compile
// once. Failed compiles are not cached.
func (c *Cache) GetOrCompile(key Key, compile func() ([]byte, error)) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tick++
	if e, ok := c.entries[key]; ok {
		c.hits++
		e.atime = c.tick
		return e.code, nil
	}
	c.misses++
	code, err := compile()
	if err != nil {
		return nil, err
	}
	c.entries[key] = &entry{code: code, atime: c.tick}
	if c.softLimit > 0 && len(c.entries) > c.softLimit {
		c.evictOldest()
	}
	return code, nil
}

// Len returns the number of cached modules.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear drops every module.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[Key]*entry)
	c.tick = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Len:       len(c.entries),
		Capacity:  c.softLimit,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}

// evictOldest shrinks the cache to three quarters of the soft limit,
// least recently used first. Caller must hold c.mu.
func (c *Cache) evictOldest() {
	target := max(c.softLimit*3/4, 1)
	n := len(c.entries) - target
	if n <= 0 {
		return
	}
	type aged struct {
		key   Key
		atime int64
	}
	all := make([]aged, 0, len(c.entries))
	for k, e := range c.entries {
		all = append(all, aged{k, e.atime})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].atime < all[j].atime })
	for _, a := range all[:n] {
		delete(c.entries, a.key)
	}
	c.evictions += uint64(n)
}

// Stats contains cache statistics.
type Stats struct {
	Len       int
	Capacity  int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

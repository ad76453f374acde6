package cache

import (
	"sync"

	"github.com/gogpu/fbcomp/pixel"
	"github.com/gogpu/fbcomp/region"
)

// Key identifies one converted sub-rectangle of a client buffer.
type Key struct {
	// ID is the caller supplied key of the source buffer.
	ID uint64

	// Rect is the sub-rectangle in source buffer coordinates.
	Rect region.Rect

	// Format is the destination format the pixels were converted to.
	Format pixel.Format

	// Swap is set when the source pixels were byte swapped.
	Swap bool
}

// Pixmap holds converted pixels, tightly packed in Format.
type Pixmap struct {
	Data   []byte
	Width  int
	Height int
	Format pixel.Format
}

// Buffer wraps the pixmap as a pixel buffer without copying.
func (p *Pixmap) Buffer() *pixel.Buffer {
	return &pixel.Buffer{
		Data:   p.Data,
		Width:  p.Width,
		Height: p.Height,
		Stride: p.Format.RowBytes(p.Width),
		Format: p.Format,
	}
}

// Cache is an LRU cache of pixmaps bounded by total byte size.
//
// Cache is safe for concurrent use.
// Cache must not be copied after creation (has mutex).
type Cache struct {
	mu      sync.Mutex
	entries map[Key]*lruNode
	lru     lruList
	size    int
	limit   int

	hits      uint64
	misses    uint64
	evictions uint64
}

// New creates a cache holding at most limit bytes of pixel data.
// A limit of 0 means unlimited.
func New(limit int) *Cache {
	return &Cache{
		entries: make(map[Key]*lruNode),
		limit:   limit,
	}
}

// Get returns the pixmap stored under k.
func (c *Cache) Get(k Key) (*Pixmap, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.entries[k]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	c.lru.moveToFront(n)
	return n.value, true
}

// Put stores p under k, replacing any previous entry, and evicts least
// recently used entries while the cache is over its limit. A pixmap larger
// than the whole budget is not stored.
func (c *Cache) Put(k Key, p *Pixmap) {
	if p == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.limit > 0 && len(p.Data) > c.limit {
		return
	}
	if old, ok := c.entries[k]; ok {
		c.size -= len(old.value.Data)
		old.value = p
		c.size += len(p.Data)
		c.lru.moveToFront(old)
	} else {
		n := &lruNode{key: k, value: p}
		c.entries[k] = n
		c.lru.pushFront(n)
		c.size += len(p.Data)
	}
	for c.limit > 0 && c.size > c.limit {
		c.evictOldest()
	}
}

// Invalidate drops every entry derived from the buffer with the given ID.
// It returns the number of entries removed.
func (c *Cache) Invalidate(id uint64) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k, n := range c.entries {
		if k.ID == id {
			c.remove(n)
			removed++
		}
	}
	return removed
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[Key]*lruNode)
	c.lru = lruList{}
	c.size = 0
}

// Len returns the number of entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns cache statistics.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Len:       len(c.entries),
		Bytes:     c.size,
		Limit:     c.limit,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	return s
}

// evictOldest removes the least recently used entry. Caller must hold c.mu.
func (c *Cache) evictOldest() {
	n := c.lru.back()
	if n == nil {
		return
	}
	c.remove(n)
	c.evictions++
}

// remove deletes n from the map and the list. Caller must hold c.mu.
func (c *Cache) remove(n *lruNode) {
	c.lru.unlink(n)
	delete(c.entries, n.key)
	c.size -= len(n.value.Data)
}

// Stats contains cache statistics.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Bytes is the pixel data currently held.
	Bytes int
	// Limit is the byte budget, 0 for unlimited.
	Limit int
	// Hits is the number of successful lookups.
	Hits uint64
	// Misses is the number of failed lookups.
	Misses uint64
	// HitRate is Hits / (Hits + Misses), 0.0 to 1.0.
	HitRate float64
	// Evictions is the number of entries evicted for space.
	Evictions uint64
}

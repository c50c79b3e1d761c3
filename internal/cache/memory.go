package cache

import (
	"container/list"
	"sync"
	"time"
)

// DefaultCapacity is enough for a few long sections of 128 kbps MP3.
const DefaultCapacity = 64 << 20

// AudioCache is an in-memory LRU cache of synthesized audio.
type AudioCache struct {
	capacity int64 // Maximum size in bytes
	size     int64 // Current size in bytes

	// LRU implementation
	items    map[Key]*list.Element
	eviction *list.List

	mu sync.Mutex

	stats Stats
}

type entry struct {
	key   Key
	value []byte
}

// New creates a cache with the given capacity in bytes. A non-positive
// capacity selects DefaultCapacity.
func New(capacity int64) *AudioCache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &AudioCache{
		capacity: capacity,
		items:    make(map[Key]*list.Element),
		eviction: list.New(),
		stats:    Stats{Capacity: capacity},
	}
}

// Get retrieves audio for key.
func (c *AudioCache) Get(key Key) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		return nil, false
	}

	c.eviction.MoveToFront(elem)
	c.stats.Hits++
	return elem.Value.(*entry).value, true
}

// Put stores audio under key, evicting older entries as needed.
func (c *AudioCache) Put(key Key, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	valueSize := int64(len(value))
	if valueSize > c.capacity {
		return ErrItemTooLarge
	}

	if elem, ok := c.items[key]; ok {
		c.removeElement(elem)
	}

	for c.size+valueSize > c.capacity && c.eviction.Len() > 0 {
		c.evictOldest()
	}

	elem := c.eviction.PushFront(&entry{key: key, value: value})
	c.items[key] = elem
	c.size += valueSize

	return nil
}

// InvalidateItem drops every entry for itemID regardless of voice or speed
// and returns how many were removed.
func (c *AudioCache) InvalidateItem(itemID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for elem := c.eviction.Back(); elem != nil; {
		prev := elem.Prev()
		if elem.Value.(*entry).key.ItemID == itemID {
			c.removeElement(elem)
			removed++
		}
		elem = prev
	}
	return removed
}

// Clear removes all entries.
func (c *AudioCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[Key]*list.Element)
	c.eviction.Init()
	c.size = 0
}

// Contains checks if a key exists without updating recency.
func (c *AudioCache) Contains(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.items[key]
	return ok
}

// Stats returns cache statistics.
func (c *AudioCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := c.stats
	stats.Size = c.size
	stats.ItemCount = int64(len(c.items))
	if stats.Hits+stats.Misses > 0 {
		stats.HitRate = float64(stats.Hits) / float64(stats.Hits+stats.Misses)
	}
	return stats
}

// evictOldest removes the least recently used item (must be called with lock held).
func (c *AudioCache) evictOldest() {
	if elem := c.eviction.Back(); elem != nil {
		c.removeElement(elem)
		c.stats.Evictions++
		c.stats.LastEvict = time.Now()
	}
}

// removeElement removes an element from the cache (must be called with lock held).
func (c *AudioCache) removeElement(elem *list.Element) {
	c.eviction.Remove(elem)
	e := elem.Value.(*entry)
	delete(c.items, e.key)
	c.size -= int64(len(e.value))
}

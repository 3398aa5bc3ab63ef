package cache

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/dgnsrekt/voicebox/internal/audio"
)

// ErrItemTooLarge is returned when a buffer exceeds the cache capacity.
var ErrItemTooLarge = errors.New("item too large for cache")

// Stats holds cache counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int64
	Capacity  int64
	ItemCount int64
	HitRate   float64
}

// MemoryCache is a size-bounded LRU of audio buffers.
type MemoryCache struct {
	capacity int64 // bytes
	size     int64

	items    map[string]*list.Element
	eviction *list.List

	mu sync.Mutex

	stats Stats
}

type entry struct {
	key       string
	value     audio.Buffer
	size      int64
	timestamp time.Time
	hits      int64
}

// NewMemoryCache creates a cache holding at most capacity bytes of samples.
func NewMemoryCache(capacity int64) *MemoryCache {
	return &MemoryCache{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		eviction: list.New(),
		stats:    Stats{Capacity: capacity},
	}
}

// Key derives a cache key from the fields that identify a synthesis.
func Key(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(hash[:16])
}

func sizeOf(b audio.Buffer) int64 {
	return int64(len(b.Samples)) * 4
}

// Get retrieves a buffer and marks it most recently used.
func (c *MemoryCache) Get(key string) (audio.Buffer, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		return audio.Buffer{}, false
	}

	c.eviction.MoveToFront(elem)
	e := elem.Value.(*entry)
	e.hits++

	c.stats.Hits++
	return e.value, true
}

// Put stores a buffer, evicting least recently used entries to make room.
// The cache keeps the buffer as given; callers must not modify it later.
func (c *MemoryCache) Put(key string, value audio.Buffer) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	valueSize := sizeOf(value)
	if valueSize > c.capacity {
		return ErrItemTooLarge
	}

	if elem, ok := c.items[key]; ok {
		c.eviction.MoveToFront(elem)
		e := elem.Value.(*entry)
		c.size += valueSize - e.size
		e.value = value
		e.size = valueSize
		e.timestamp = time.Now()
	} else {
		elem := c.eviction.PushFront(&entry{
			key:       key,
			value:     value,
			size:      valueSize,
			timestamp: time.Now(),
		})
		c.items[key] = elem
		c.size += valueSize
	}

	for c.size > c.capacity && c.eviction.Len() > 1 {
		c.evictOldest()
	}
	c.stats.Size = c.size
	return nil
}

// Delete removes an entry.
func (c *MemoryCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.removeElement(elem)
	}
}

// Clear removes all entries.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.eviction.Init()
	c.size = 0
	c.stats.Size = 0
}

// Size returns the current size in bytes.
func (c *MemoryCache) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Len returns the number of entries.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Contains checks for a key without updating recency.
func (c *MemoryCache) Contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[key]
	return ok
}

// Stats returns a snapshot of the counters.
func (c *MemoryCache) Stats() Stats {
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

// Prune removes entries older than maxAge and returns how many went.
func (c *MemoryCache) Prune(maxAge time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	pruned := 0
	for elem := c.eviction.Back(); elem != nil; {
		prev := elem.Prev()
		if elem.Value.(*entry).timestamp.Before(cutoff) {
			c.removeElement(elem)
			pruned++
		}
		elem = prev
	}
	c.stats.Size = c.size
	return pruned
}

// evictOldest must be called with the lock held.
func (c *MemoryCache) evictOldest() {
	if elem := c.eviction.Back(); elem != nil {
		c.removeElement(elem)
		c.stats.Evictions++
	}
}

func (c *MemoryCache) removeElement(elem *list.Element) {
	c.eviction.Remove(elem)
	e := elem.Value.(*entry)
	delete(c.items, e.key)
	c.size -= e.size
}

package block

import (
	"container/list"
	"sync"
)

// Cache is a write-through LRU block cache. Reads are served from the
// cache when possible; writes go to the underlying device first and
// update the cache only on success, so the cache never holds data the
// device does not.
type Cache struct {
	device  BlockDevice
	maxSize int
	entries map[uint64]*list.Element
	lru     *list.List

	hitCount  uint64
	missCount uint64
	mu        sync.Mutex
}

type cacheEntry struct {
	id   uint64
	data []byte
}

// NewCache wraps device with an LRU cache holding at most maxSize
// blocks. A maxSize below one is clamped to one.
func NewCache(device BlockDevice, maxSize int) *Cache {
	if maxSize < 1 {
		maxSize = 1
	}
	return &Cache{
		device:  device,
		maxSize: maxSize,
		entries: make(map[uint64]*list.Element),
		lru:     list.New(),
	}
}

// BlockSize returns the underlying device's block size.
func (c *Cache) BlockSize() int {
	return c.device.BlockSize()
}

// BlockCount returns the underlying device's block count.
func (c *Cache) BlockCount() uint64 {
	return c.device.BlockCount()
}

// ReadBlock serves the block from cache, falling back to the device on
// a miss.
func (c *Cache) ReadBlock(id uint64, buf []byte) error {
	if err := checkAccess(id, buf, c.device.BlockSize(), c.device.BlockCount()); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[id]; ok {
		c.hitCount++
		c.lru.MoveToFront(elem)
		copy(buf, elem.Value.(*cacheEntry).data)
		return nil
	}

	c.missCount++
	if err := c.device.ReadBlock(id, buf); err != nil {
		return err
	}
	c.insert(id, buf)
	return nil
}

// WriteBlock writes through to the device and refreshes the cached copy.
func (c *Cache) WriteBlock(id uint64, buf []byte) error {
	if err := checkAccess(id, buf, c.device.BlockSize(), c.device.BlockCount()); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.device.WriteBlock(id, buf); err != nil {
		return err
	}

	if elem, ok := c.entries[id]; ok {
		c.lru.MoveToFront(elem)
		copy(elem.Value.(*cacheEntry).data, buf)
		return nil
	}
	c.insert(id, buf)
	return nil
}

// insert adds a block to the cache, evicting the least recently used
// entry if full. Caller must hold the lock.
func (c *Cache) insert(id uint64, buf []byte) {
	if len(c.entries) >= c.maxSize {
		if back := c.lru.Back(); back != nil {
			delete(c.entries, back.Value.(*cacheEntry).id)
			c.lru.Remove(back)
		}
	}

	entry := &cacheEntry{id: id, data: make([]byte, len(buf))}
	copy(entry.data, buf)
	c.entries[id] = c.lru.PushFront(entry)
}

// Invalidate drops a block from the cache. The device copy is
// authoritative, so nothing is written back.
func (c *Cache) Invalidate(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[id]; ok {
		delete(c.entries, id)
		c.lru.Remove(elem)
	}
}

// Flush forwards to the underlying device. All writes have already been
// written through.
func (c *Cache) Flush() error {
	return c.device.Flush()
}

// Stats returns cache hit and miss counts.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return CacheStats{
		Entries:   len(c.entries),
		MaxSize:   c.maxSize,
		HitCount:  c.hitCount,
		MissCount: c.missCount,
	}
}

// CacheStats contains cache statistics.
type CacheStats struct {
	Entries   int
	MaxSize   int
	HitCount  uint64
	MissCount uint64
}

package cache

import (
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

// EvictionPolicy selects how much a FIFO drops once it grows past capacity.
type EvictionPolicy int

const (
	// EvictOldest drops the single oldest entry.
	EvictOldest EvictionPolicy = iota
	// EvictOldestHalf drops the oldest half in one sweep.
	EvictOldestHalf
)

// FIFO is a bounded map that evicts in insertion order. Reads do not
// refresh an entry's position. Safe for concurrent use.
type FIFO[K comparable, V any] struct {
	mu       sync.Mutex
	entries  map[K]V
	order    []K // insertion order, oldest at head
	head     int
	capacity int
	policy   EvictionPolicy

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// Stats is a point-in-time view of a cache's counters.
type Stats struct {
	Len       int
	Capacity  int
	Hits      int64
	Misses    int64
	Evictions int64
}

// HitRate returns hits/(hits+misses), or 0 before any lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// NewFIFO returns a cache holding at most capacity entries after each Put.
// A capacity below one is treated as one.
func NewFIFO[K comparable, V any](capacity int, policy EvictionPolicy) *FIFO[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	return &FIFO[K, V]{
		entries:  make(map[K]V, capacity),
		capacity: capacity,
		policy:   policy,
	}
}

// Get returns the cached value for key.
func (c *FIFO[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	v, ok := c.entries[key]
	c.mu.Unlock()

	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

// Put stores value under key. Replacing an existing key keeps its original
// insertion position.
func (c *FIFO[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		c.entries[key] = value
		return
	}
	c.entries[key] = value
	c.order = append(c.order, key)

	if len(c.entries) > c.capacity {
		c.evictLocked()
	}
}

func (c *FIFO[K, V]) evictLocked() {
	n := 1
	if c.policy == EvictOldestHalf {
		n = len(c.entries) / 2
	}
	evicted := 0
	for ; evicted < n && c.head < len(c.order); evicted++ {
		delete(c.entries, c.order[c.head])
		c.head++
	}
	c.evictions.Add(int64(evicted))

	// Compact once the dead prefix dominates the slice
	if c.head > len(c.order)/2 {
		c.order = append(c.order[:0:0], c.order[c.head:]...)
		c.head = 0
	}
}

// Len returns the number of cached entries.
func (c *FIFO[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear drops every entry. Counters are kept.
func (c *FIFO[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[K]V, c.capacity)
	c.order = nil
	c.head = 0
}

// ResetCounters zeroes the hit, miss and eviction counters.
func (c *FIFO[K, V]) ResetCounters() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.evictions.Store(0)
}

// Stats returns the current counters.
func (c *FIFO[K, V]) Stats() Stats {
	return Stats{
		Len:       c.Len(),
		Capacity:  c.capacity,
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}

// ContentKey hashes a whole document for use as a cache key.
func ContentKey(text string) uint64 {
	return xxhash.Sum64String(text)
}

// PairKey hashes an unordered pair of strings, so (a,b) and (b,a) share a key.
func PairKey(a, b string) uint64 {
	if b < a {
		a, b = b, a
	}
	d := xxhash.New()
	_, _ = d.WriteString(a)
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(b)
	return d.Sum64()
}

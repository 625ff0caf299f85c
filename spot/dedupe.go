package spot

import (
	"sync"
	"time"

	"dxnode/ids"
)

// DedupeResult classifies a spot-id observation against the table's TTL.
type DedupeResult int

const (
	// Fresh means the id has never been seen.
	Fresh DedupeResult = iota
	// Duplicate means the id was last seen within the TTL window.
	Duplicate
	// Expired means the id was seen before, but longer ago than the TTL.
	Expired
)

// DedupeTable is an optional layer above Cache: it maps a SpotId to the
// epoch-seconds timestamp it was last observed, classifying repeat
// observations. CheckAndMark always refreshes the stored timestamp,
// regardless of the classification returned.
type DedupeTable struct {
	mu      sync.Mutex
	ttl     time.Duration
	lastSeen map[ids.SpotId]int64
}

// NewDedupeTable constructs a table with the given TTL.
func NewDedupeTable(ttl time.Duration) *DedupeTable {
	return &DedupeTable{
		ttl:      ttl,
		lastSeen: make(map[ids.SpotId]int64),
	}
}

// CheckAndMark classifies id against now (epoch seconds) and refreshes its
// last-seen timestamp unconditionally.
func (t *DedupeTable) CheckAndMark(id ids.SpotId, now int64) DedupeResult {
	t.mu.Lock()
	defer t.mu.Unlock()

	result := Fresh
	if prev, ok := t.lastSeen[id]; ok {
		if now-prev <= int64(t.ttl/time.Second) {
			result = Duplicate
		} else {
			result = Expired
		}
	}
	t.lastSeen[id] = now
	return result
}

// Prune removes entries older than the TTL relative to now, bounding the
// table's memory growth. It is safe to call periodically from a background
// task; it performs no I/O and never blocks on anything but its own mutex.
func (t *DedupeTable) Prune(now int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ttlSecs := int64(t.ttl / time.Second)
	for id, seen := range t.lastSeen {
		if now-seen > ttlSecs {
			delete(t.lastSeen, id)
		}
	}
}

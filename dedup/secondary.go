// Package dedup implements a secondary, time-windowed duplicate filter
// that supplements spot.DedupeTable: it splits duplicate suppression by
// "source class" so that, say, a spot re-reported by a different peer
// within the window still gets through, while the same peer repeating
// itself does not.
package dedup

import (
	"fmt"
	"sync"
	"time"

	"dxnode/spot"
)

// SecondaryDeduper suppresses same-class duplicates of the same
// (dx, frequency) pair within a sliding window.
type SecondaryDeduper struct {
	mu              sync.Mutex
	window          time.Duration
	collapseClasses bool
	seen            map[string]time.Time
}

// NewSecondaryDeduper constructs a deduper with the given window. When
// collapseClasses is true, the source class is ignored and any repeat of
// the same (dx, frequency) within the window is suppressed regardless of
// where it came from.
func NewSecondaryDeduper(window time.Duration, collapseClasses bool) *SecondaryDeduper {
	return &SecondaryDeduper{
		window:          window,
		collapseClasses: collapseClasses,
		seen:            make(map[string]time.Time),
	}
}

// ShouldForward reports whether s (attributed to the given source class —
// typically "local" or a peer NodeId string) should be forwarded, recording
// s's time as the key's last sighting either way. Entries are never pruned.
func (d *SecondaryDeduper) ShouldForward(s spot.Spot, class string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := d.key(s, class)
	now := s.Time
	if last, ok := d.seen[key]; ok && now.Sub(last) <= d.window {
		d.seen[key] = now
		return false
	}
	d.seen[key] = now
	return true
}

func (d *SecondaryDeduper) key(s spot.Spot, class string) string {
	if d.collapseClasses {
		return fmt.Sprintf("%s|%d", s.DX.String(), uint64(s.Freq))
	}
	return fmt.Sprintf("%s|%d|%s", s.DX.String(), uint64(s.Freq), class)
}

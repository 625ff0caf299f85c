package node

import (
	"sync"

	"dxnode/spot"
)

// busCapacity is the per-subscriber buffered channel size from spec.md §5:
// a bounded, multi-consumer broadcast. A subscriber that falls behind by
// more than this many announcements observes a lag rather than blocking
// the publisher.
const busCapacity = 256

// spotBus is NodeState's announcement fan-out: every successful insert is
// published here after the cache lock has been released. Slow subscribers
// drop the oldest buffered announcement and record a lag rather than
// stalling the publisher — publication failure (no subscribers, or a full
// buffer) is always non-fatal.
type spotBus struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]*subscriber
}

type subscriber struct {
	ch     chan spot.Announcement
	mu     sync.Mutex
	lagged uint64
}

func newSpotBus() *spotBus {
	return &spotBus{subs: make(map[uint64]*subscriber)}
}

func (b *spotBus) publish(a spot.Announcement) {
	b.mu.Lock()
	targets := make([]*subscriber, 0, len(b.subs))
	for _, s := range b.subs {
		targets = append(targets, s)
	}
	b.mu.Unlock()

	for _, s := range targets {
		s.deliver(a)
	}
}

func (s *subscriber) deliver(a spot.Announcement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case s.ch <- a:
		return
	default:
	}
	// Buffer full: drop the oldest to make room and record the lag. The
	// lost announcement is never retried — the bootstrap replay and the
	// cache's own `recent` snapshot are what a consumer falls back to.
	select {
	case <-s.ch:
	default:
	}
	s.lagged++
	select {
	case s.ch <- a:
	default:
	}
}

func (b *spotBus) subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	s := &subscriber{ch: make(chan spot.Announcement, busCapacity)}
	b.subs[id] = s
	return &Subscription{bus: b, id: id, sub: s}
}

func (b *spotBus) unsubscribe(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, id)
}

// Subscription is a fresh view onto the spot bus returned by
// NodeState.SubscribeSpots.
type Subscription struct {
	bus *spotBus
	id  uint64
	sub *subscriber
}

// C returns the channel of announcements. Consumers should select on it
// alongside a shutdown signal, per spec.md §5's cancellation model.
func (s *Subscription) C() <-chan spot.Announcement {
	return s.sub.ch
}

// Lagged reports how many announcements this subscription has missed due
// to falling behind. It never resets.
func (s *Subscription) Lagged() uint64 {
	s.sub.mu.Lock()
	defer s.sub.mu.Unlock()
	return s.sub.lagged
}

// Close removes the subscription from the bus. Safe to call more than
// once.
func (s *Subscription) Close() {
	s.bus.unsubscribe(s.id)
}

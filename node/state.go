// Package node implements the DX cluster node runtime: shared spot state
// with pub/sub fan-out, the peer session state machine, the outbound
// connector with backoff, and the user session — spec.md §4.
package node

import (
	"dxnode/dedup"
	"dxnode/ids"
	"dxnode/spot"
)

// NodeState is the single chokepoint for spot mutation, shared by every
// session on the node. It owns the bounded cache and the announcement bus;
// the two are intentionally decoupled (spec.md §9) — the cache is
// authoritative for SH/DX, the bus is a best-effort "tell me what just
// happened" feed.
type NodeState struct {
	id        ids.NodeId
	cache     *spot.Cache
	bus       *spotBus
	secondary *dedup.SecondaryDeduper // nil disables the secondary gate
}

// NewNodeState constructs a NodeState with the given local identity and
// cache capacity (see spot.DefaultCapacity for the zero-value behavior).
func NewNodeState(id ids.NodeId, cacheCapacity int) *NodeState {
	return &NodeState{
		id:    id,
		cache: spot.NewCache(cacheCapacity),
		bus:   newSpotBus(),
	}
}

// WithSecondaryDedup attaches a secondary, time-windowed duplicate gate in
// front of InsertWithSource. A nil deduper (the default) disables the
// gate entirely, matching the "optional" wiring spec.md §9 calls for.
func (n *NodeState) WithSecondaryDedup(d *dedup.SecondaryDeduper) *NodeState {
	n.secondary = d
	return n
}

// Insert is InsertWithSource with an unset (local) source.
func (n *NodeState) Insert(s spot.Spot) {
	n.InsertWithSource(s, "")
}

// InsertWithSource runs s through the optional secondary dedup gate, then
// pushes it onto the cache, releases the cache lock, then publishes the
// announcement. The cache/bus steps are never combined under one lock:
// subscribers are notified strictly after the cache reflects the insert,
// never before.
func (n *NodeState) InsertWithSource(s spot.Spot, source ids.NodeId) {
	if n.secondary != nil {
		class := string(source)
		if class == "" {
			class = "local"
		}
		if !n.secondary.ShouldForward(s, class) {
			return
		}
	}
	n.cache.Push(s)
	n.bus.publish(spot.Announcement{Spot: s, Source: source})
}

// Recent returns up to n of the most-recent spots, newest first.
func (n *NodeState) Recent(count int) []spot.Spot {
	return n.cache.Recent(count)
}

// SubscribeSpots returns a fresh subscription onto the announcement bus.
func (n *NodeState) SubscribeSpots() *Subscription {
	return n.bus.subscribe()
}

// NodeID returns the node's immutable local identifier.
func (n *NodeState) NodeID() ids.NodeId {
	return n.id
}

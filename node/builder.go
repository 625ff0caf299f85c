package node

import (
	"context"
	"fmt"
	"log"
	"net"
	"sync"

	"dxnode/callsign"
	"dxnode/correction"
	"dxnode/dedup"
	"dxnode/filter"
	"dxnode/ids"
	"dxnode/peerdir"
	"dxnode/spot"
)

// NodeBuilder constructs a running node from a Config: bind listeners,
// spawn one accept loop per listener, spawn one UpstreamConnector per
// configured outbound peer (spec.md §4.5).
type NodeBuilder struct {
	cfg Config

	// FilterFactory constructs the per-session Filter for new user
	// sessions. Nil means every session gets the permissive default.
	FilterFactory func() *filter.Filter

	// Corrections, if set, is shared across every user session to offer
	// "did you mean" hints on newly minted DX callsigns.
	Corrections *correction.Index
}

// NewBuilder constructs a builder for cfg.
func NewBuilder(cfg Config) *NodeBuilder {
	return &NodeBuilder{cfg: cfg}
}

// NodeHandle is the live, running node: listeners, accept loops, and
// upstream connectors, plus the test seams spec.md §4.5 calls for.
type NodeHandle struct {
	state        *NodeState
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	userListener net.Listener
	peerListener net.Listener
	dir          *peerdir.Directory
}

// Build binds the configured listeners and starts every background task.
// It returns as soon as the listeners are bound; accept loops and
// connectors run in the background until Shutdown is called.
func (b *NodeBuilder) Build(ctx context.Context) (*NodeHandle, error) {
	cfg := b.cfg
	state := NewNodeState(ids.NodeId(cfg.NodeID), spot.DefaultCapacity)
	if cfg.SecondaryDedup.Enabled {
		state.WithSecondaryDedup(dedup.NewSecondaryDeduper(cfg.SecondaryDedup.Window, cfg.SecondaryDedup.CollapseClasses))
	}
	ctx, cancel := context.WithCancel(ctx)
	h := &NodeHandle{state: state, cancel: cancel}

	if cfg.PeerDirPath != "" {
		dir, err := peerdir.Open(cfg.PeerDirPath)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("open peer directory: %w", err)
		}
		h.dir = dir
	}

	userLn, err := net.Listen("tcp", cfg.UserListen)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("bind user listener: %w", err)
	}
	h.userListener = userLn

	if cfg.PeerListen != "" {
		peerLn, err := net.Listen("tcp", cfg.PeerListen)
		if err != nil {
			userLn.Close()
			cancel()
			return nil, fmt.Errorf("bind peer listener: %w", err)
		}
		h.peerListener = peerLn
	}

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		b.acceptUsers(ctx, h, userLn)
	}()

	if h.peerListener != nil {
		h.wg.Add(1)
		go func() {
			defer h.wg.Done()
			b.acceptPeers(ctx, h, h.peerListener)
		}()
	}

	for _, upstream := range cfg.Upstreams {
		connector := NewUpstreamConnector(upstream, state.NodeID(), cfg.PeerOptions, cfg.RetryPolicy, state).WithDirectory(h.dir)
		h.wg.Add(1)
		go func() {
			defer h.wg.Done()
			connector.Run(ctx)
		}()
	}

	return h, nil
}

func (b *NodeBuilder) acceptUsers(ctx context.Context, h *NodeHandle, ln net.Listener) {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()
	for {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		filt := (*filter.Filter)(nil)
		if b.FilterFactory != nil {
			filt = b.FilterFactory()
		}
		go func() {
			sess := NewUserSession(conn, h.state, filt, callsign.Callsign{}).WithCorrections(b.Corrections)
			if err := sess.Serve(); err != nil {
				log.Printf("user session %s: %v", sess.ID, err)
			}
		}()
	}
}

func (b *NodeBuilder) acceptPeers(ctx context.Context, h *NodeHandle, ln net.Listener) {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()
	for {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		go func() {
			sess := NewPeerSession(conn, h.state, h.state.NodeID(), b.cfg.PeerOptions, "").WithDirectory(h.dir)
			if err := sess.Run(); err != nil {
				log.Printf("peer session %s: %v", sess.ID, err)
			}
		}()
	}
}

// InjectSpot is a test seam directly into NodeState, bypassing both
// session types.
func (h *NodeHandle) InjectSpot(s spot.Spot) {
	h.state.Insert(s)
}

// RecentSpots snapshots up to n of the most recent spots, newest first.
func (h *NodeHandle) RecentSpots(n int) []spot.Spot {
	return h.state.Recent(n)
}

// Subscribe opens a feed of every spot announcement accepted onto this
// node, for external consumers such as status.Tracker and mqttexport —
// neither of which this package imports, keeping the dependency one-way.
func (h *NodeHandle) Subscribe() *Subscription {
	return h.state.SubscribeSpots()
}

// NodeID returns the node's local identifier.
func (h *NodeHandle) NodeID() ids.NodeId {
	return h.state.NodeID()
}

// UserAddr returns the bound address of the user listener.
func (h *NodeHandle) UserAddr() net.Addr {
	return h.userListener.Addr()
}

// PeerAddr returns the bound address of the peer listener, or nil if none
// was configured.
func (h *NodeHandle) PeerAddr() net.Addr {
	if h.peerListener == nil {
		return nil
	}
	return h.peerListener.Addr()
}

// PeerDirectory returns the node's peer directory, or nil if none was
// configured.
func (h *NodeHandle) PeerDirectory() *peerdir.Directory {
	return h.dir
}

// Shutdown cancels the accept loops and upstream connectors (closing any
// session a connector is running), closes both listeners, and blocks until
// those tasks have exited. Sessions already accepted on the listeners are
// not tracked: Shutdown neither closes their connections nor waits for
// them to end.
func (h *NodeHandle) Shutdown() {
	h.cancel()
	h.userListener.Close()
	if h.peerListener != nil {
		h.peerListener.Close()
	}
	h.wg.Wait()
	if h.dir != nil {
		h.dir.Close()
	}
}

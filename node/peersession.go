package node

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"dxnode/ids"
	"dxnode/peerdir"
	"dxnode/spot"
	"dxnode/wire"
)

// peerWriteQueueCapacity bounds the writer task's queue. spec.md §5
// describes an unbounded queue but explicitly permits implementations to
// bound it; a blocked remote then reveals itself through forwarding-task
// bus lag rather than unbounded memory growth.
const peerWriteQueueCapacity = 1024

// bootstrapReplayCount is how many cached spots a freshly started session
// replays to its remote, per spec.md §4.3.
const bootstrapReplayCount = 50

// ErrPermissionDenied is returned by Run when the remote fails
// authentication — a bad AUTH token, or a SPOT frame before auth completes.
var ErrPermissionDenied = errors.New("peer session: permission denied")

// PeerSession is the federation state machine from spec.md §4.3: handshake,
// auth, heartbeat, bidirectional spot exchange, and loop suppression.
type PeerSession struct {
	ID      string
	conn    io.ReadWriteCloser
	state   *NodeState
	localID ids.NodeId
	opts    PeerOptions

	// outboundAuthToken is the token this session presents to its remote
	// on connect, if any. It is independent of ExpectedAuthToken, which
	// gates what this session accepts from the remote.
	outboundAuthToken string

	// dir records peers this session observes via HELLO/CAPS, if the node
	// was built with a peer directory. May be nil.
	dir *peerdir.Directory

	remoteMu sync.RWMutex
	remoteID ids.NodeId

	authOK atomic.Bool

	writeCh chan wire.PeerFrame
	done    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
}

// NewPeerSession constructs a session over conn. outboundAuthToken, if
// non-empty, is sent as this session's own AUTH frame on startup.
func NewPeerSession(conn io.ReadWriteCloser, state *NodeState, localID ids.NodeId, opts PeerOptions, outboundAuthToken string) *PeerSession {
	s := &PeerSession{
		ID:                uuid.NewString(),
		conn:              conn,
		state:             state,
		localID:           localID,
		opts:              opts,
		outboundAuthToken: outboundAuthToken,
		writeCh:           make(chan wire.PeerFrame, peerWriteQueueCapacity),
		done:              make(chan struct{}),
	}
	s.authOK.Store(opts.ExpectedAuthToken == nil)
	return s
}

// WithDirectory attaches a peer directory that HELLO/CAPS sightings on this
// session are recorded into. Returns s for chaining.
func (s *PeerSession) WithDirectory(dir *peerdir.Directory) *PeerSession {
	s.dir = dir
	return s
}

// RemoteID returns the node id the remote announced via HELLO, or the
// zero NodeId if no HELLO has arrived yet.
func (s *PeerSession) RemoteID() ids.NodeId {
	s.remoteMu.RLock()
	defer s.remoteMu.RUnlock()
	return s.remoteID
}

func (s *PeerSession) setRemoteID(id ids.NodeId) {
	s.remoteMu.Lock()
	s.remoteID = id
	s.remoteMu.Unlock()
}

// Run drives the session to completion: starts the writer, heartbeat, and
// forwarding tasks, sends the startup handshake and bootstrap replay, then
// reads and dispatches incoming frames until EOF, a read error, or a
// permission failure. It always closes conn before returning.
func (s *PeerSession) Run() error {
	defer s.conn.Close()

	s.wg.Add(3)
	go s.writerLoop()
	go s.heartbeatLoop()
	go s.forwardingLoop()

	s.enqueue(wire.PeerFrame{Kind: wire.FrameHello, NodeID: s.localID, Version: s.opts.Version})
	s.enqueue(wire.PeerFrame{Kind: wire.FrameCaps, Caps: s.opts.Capabilities})
	if s.outboundAuthToken != "" {
		s.enqueue(wire.PeerFrame{Kind: wire.FrameAuth, Token: s.outboundAuthToken})
	}
	for _, sp := range s.state.Recent(bootstrapReplayCount) {
		s.enqueue(wire.PeerFrame{Kind: wire.FrameSpot, Spot: sp.IncHop()})
	}

	err := s.readLoop()
	s.Close()
	s.wg.Wait()
	return err
}

// Close requests orderly shutdown of all three background tasks. Safe to
// call more than once and from any goroutine.
func (s *PeerSession) Close() {
	s.once.Do(func() { close(s.done) })
}

func (s *PeerSession) readLoop() error {
	scanner := bufio.NewScanner(s.conn)
	for scanner.Scan() {
		frame, err := wire.ParsePeerFrame(scanner.Text())
		if err != nil {
			// Malformed peer line: ignore and continue, per spec.md §7 —
			// a bad frame never tears down the session.
			continue
		}
		if err := s.handleFrame(frame); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func (s *PeerSession) handleFrame(f wire.PeerFrame) error {
	switch f.Kind {
	case wire.FrameHello:
		s.setRemoteID(f.NodeID)
		s.recordSighting(f.NodeID, f.Version, nil)
	case wire.FrameCaps:
		s.recordSighting(s.RemoteID(), "", f.Caps)
	case wire.FrameAuth:
		expected := s.opts.ExpectedAuthToken
		if expected != nil && f.Token != *expected {
			return ErrPermissionDenied
		}
		s.authOK.Store(true)
	case wire.FrameSpot:
		if !s.authOK.Load() {
			return ErrPermissionDenied
		}
		sp := f.Spot
		remote := s.RemoteID()
		if !sp.HasOrigin() && remote != "" {
			sp.Origin = remote
		}
		s.state.InsertWithSource(sp, remote)
	case wire.FrameHeartbeat:
		s.recordSighting(s.RemoteID(), "", nil)
	case wire.FramePing:
		s.enqueue(wire.PeerFrame{Kind: wire.FramePong, Nonce: f.Nonce})
	case wire.FramePong:
		// No action.
	}
	return nil
}

// recordSighting upserts what this session currently knows about the
// remote into the peer directory, if one is attached. A zero nodeID (no
// HELLO seen yet) is a no-op.
func (s *PeerSession) recordSighting(nodeID ids.NodeId, version string, caps []string) {
	if s.dir == nil || nodeID == "" {
		return
	}
	s.dir.Observe(nodeID, version, caps, time.Now().UTC())
}

func (s *PeerSession) enqueue(f wire.PeerFrame) {
	select {
	case s.writeCh <- f:
	case <-s.done:
	}
}

func (s *PeerSession) writerLoop() {
	defer s.wg.Done()
	for {
		select {
		case f := <-s.writeCh:
			if _, err := io.WriteString(s.conn, wire.FormatPeerFrame(f)+"\n"); err != nil {
				return
			}
		case <-s.done:
			s.drainWriteQueue()
			return
		}
	}
}

func (s *PeerSession) drainWriteQueue() {
	for {
		select {
		case f := <-s.writeCh:
			io.WriteString(s.conn, wire.FormatPeerFrame(f)+"\n")
		default:
			return
		}
	}
}

func (s *PeerSession) heartbeatLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.opts.EffectiveHeartbeatInterval())
	defer ticker.Stop()
	var counter uint64
	for {
		select {
		case <-ticker.C:
			counter++
			s.enqueue(wire.PeerFrame{Kind: wire.FrameHeartbeat, Nonce: strconv.FormatUint(counter, 10)})
		case <-s.done:
			return
		}
	}
}

func (s *PeerSession) forwardingLoop() {
	defer s.wg.Done()
	sub := s.state.SubscribeSpots()
	defer sub.Close()
	for {
		select {
		case ann, ok := <-sub.C():
			if !ok {
				return
			}
			if !s.authOK.Load() {
				continue
			}
			if ann.Source == s.RemoteID() {
				continue
			}
			s.enqueue(wire.PeerFrame{Kind: wire.FrameSpot, Spot: forwardCopy(ann.Spot)})
		case <-s.done:
			return
		}
	}
}

func forwardCopy(s spot.Spot) spot.Spot {
	return s.IncHop()
}

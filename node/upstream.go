package node

import (
	"context"
	"log"
	"net"
	"time"

	"dxnode/ids"
	"dxnode/peerdir"
)

// DialFunc abstracts the outbound TCP dial so tests can substitute a fake
// transport without a real listening socket.
type DialFunc func(ctx context.Context, addr string) (net.Conn, error)

func defaultDial(ctx context.Context, addr string) (net.Conn, error) {
	var d net.Dialer
	return d.DialContext(ctx, "tcp", addr)
}

// UpstreamConnector repeatedly dials one configured outbound peer and runs
// a PeerSession against it, backing off between attempts (spec.md §4.4).
// Only UpstreamConfig.Mode == ModePeer is connected; ModeTelnet is a
// declared future extension point and Run returns immediately for it.
type UpstreamConnector struct {
	cfg      UpstreamConfig
	localID  ids.NodeId
	peerOpts PeerOptions
	retry    PeerRetryPolicy
	state    *NodeState
	dial     DialFunc
	dir      *peerdir.Directory
}

// NewUpstreamConnector constructs a connector for one configured upstream.
func NewUpstreamConnector(cfg UpstreamConfig, localID ids.NodeId, peerOpts PeerOptions, retry PeerRetryPolicy, state *NodeState) *UpstreamConnector {
	return &UpstreamConnector{
		cfg:      cfg,
		localID:  localID,
		peerOpts: peerOpts,
		retry:    retry,
		state:    state,
		dial:     defaultDial,
	}
}

// WithDirectory attaches a peer directory that this connector's sessions
// record HELLO/CAPS/HEARTBEAT sightings into. Returns c for chaining.
func (c *UpstreamConnector) WithDirectory(dir *peerdir.Directory) *UpstreamConnector {
	c.dir = dir
	return c
}

// Run blocks, supervising connect/run/backoff cycles until ctx is done.
func (c *UpstreamConnector) Run(ctx context.Context) {
	if c.cfg.Mode != ModePeer {
		return
	}

	attempt := 0
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		conn, err := c.dial(ctx, c.cfg.Addr)
		if err != nil {
			log.Printf("upstream %s: connect failed: %v", c.cfg.Addr, err)
		} else {
			attempt = 0
			sess := NewPeerSession(conn, c.state, c.localID, c.peerOpts, c.cfg.AuthToken).WithDirectory(c.dir)
			stopClose := context.AfterFunc(ctx, func() { conn.Close() })
			if runErr := sess.Run(); runErr != nil {
				log.Printf("upstream %s: session ended: %v", c.cfg.Addr, runErr)
			}
			stopClose()
		}

		attempt++
		delay := backoffDelay(attempt, c.retry.BaseDelay, c.retry.MaxDelay)
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}

// backoffDelay computes base·2^(attempt-1) clamped at max, for attempt ≥ 1.
// The loop-and-clamp form (rather than raw exponentiation) keeps the
// arithmetic saturating: it can never overflow time.Duration regardless of
// how large attempt grows, per spec.md §4.4.
func backoffDelay(attempt int, base, max time.Duration) time.Duration {
	if base <= 0 {
		base = time.Second
	}
	if max < base {
		max = base
	}
	delay := base
	for i := 1; i < attempt; i++ {
		if delay > max/2 {
			return max
		}
		delay *= 2
	}
	if delay > max {
		delay = max
	}
	return delay
}

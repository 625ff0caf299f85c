package node

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"
)

func TestBackoffDelaySchedule(t *testing.T) {
	base := 100 * time.Millisecond
	max := 2 * time.Second

	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{1, base},
		{2, base * 2},
		{3, base * 4},
		{4, base * 8},
		{5, base * 16}, // 1.6s, still under max
		{6, max},       // 3.2s would exceed max, clamp
		{100, max},
	}
	for _, c := range cases {
		got := backoffDelay(c.attempt, base, max)
		if got != c.want {
			t.Fatalf("backoffDelay(%d) = %v, want %v", c.attempt, got, c.want)
		}
	}
}

func TestBackoffDelayDefaultsWhenBaseUnset(t *testing.T) {
	if got := backoffDelay(1, 0, 0); got != time.Second {
		t.Fatalf("expected 1s default base, got %v", got)
	}
}

func TestUpstreamConnectorTelnetModeNeverDials(t *testing.T) {
	var dialCount int32
	c := NewUpstreamConnector(UpstreamConfig{Addr: "127.0.0.1:0", Mode: ModeTelnet}, "node-a", quietPeerOptions(), PeerRetryPolicy{}, NewNodeState("node-a", 8))
	c.dial = func(ctx context.Context, addr string) (net.Conn, error) {
		atomic.AddInt32(&dialCount, 1)
		return nil, errors.New("should not be called")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	c.Run(ctx)
	if atomic.LoadInt32(&dialCount) != 0 {
		t.Fatalf("expected Telnet-mode upstream to never dial, got %d dials", dialCount)
	}
}

func TestUpstreamConnectorRetriesOnDialFailure(t *testing.T) {
	var dialCount int32
	c := NewUpstreamConnector(UpstreamConfig{Addr: "127.0.0.1:0", Mode: ModePeer}, "node-a", quietPeerOptions(), PeerRetryPolicy{BaseDelay: 5 * time.Millisecond, MaxDelay: 10 * time.Millisecond}, NewNodeState("node-a", 8))
	c.dial = func(ctx context.Context, addr string) (net.Conn, error) {
		atomic.AddInt32(&dialCount, 1)
		return nil, errors.New("connection refused")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	c.Run(ctx)
	if atomic.LoadInt32(&dialCount) < 2 {
		t.Fatalf("expected multiple retries, got %d", dialCount)
	}
}

func TestUpstreamConnectorShutdownStopsPromptly(t *testing.T) {
	c := NewUpstreamConnector(UpstreamConfig{Addr: "127.0.0.1:0", Mode: ModePeer}, "node-a", quietPeerOptions(), PeerRetryPolicy{BaseDelay: time.Hour, MaxDelay: time.Hour}, NewNodeState("node-a", 8))
	c.dial = func(ctx context.Context, addr string) (net.Conn, error) {
		return nil, errors.New("connection refused")
	}
	ctx, cancel := context.WithCancel(context.Background())
	doneCh := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(doneCh)
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()
	select {
	case <-doneCh:
	case <-time.After(time.Second):
		t.Fatal("expected Run to return promptly after shutdown despite a long backoff sleep")
	}
}

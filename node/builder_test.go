package node

import (
	"context"
	"testing"
	"time"

	"dxnode/callsign"
	"dxnode/ids"
	"dxnode/spot"
)

func retryPolicyForTests() PeerRetryPolicy {
	return PeerRetryPolicy{BaseDelay: 30 * time.Millisecond, MaxDelay: 150 * time.Millisecond}
}

func waitForDX(t *testing.T, h *NodeHandle, call string, timeout time.Duration) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		for _, s := range h.RecentSpots(20) {
			if s.DX.String() == call {
				return true
			}
		}
		time.Sleep(20 * time.Millisecond)
	}
	return false
}

func TestEndToEndTwoNodePropagationAndReverse(t *testing.T) {
	bCfg := Config{
		NodeID:      "node-b",
		UserListen:  "127.0.0.1:0",
		PeerListen:  "127.0.0.1:0",
		PeerOptions: quietPeerOptions(),
		RetryPolicy: retryPolicyForTests(),
	}
	bHandle, err := NewBuilder(bCfg).Build(context.Background())
	if err != nil {
		t.Fatalf("build node B: %v", err)
	}
	defer bHandle.Shutdown()

	aCfg := Config{
		NodeID:      "node-a",
		UserListen:  "127.0.0.1:0",
		PeerOptions: quietPeerOptions(),
		RetryPolicy: retryPolicyForTests(),
		Upstreams: []UpstreamConfig{
			{Addr: bHandle.PeerAddr().String(), Mode: ModePeer},
		},
	}
	aHandle, err := NewBuilder(aCfg).Build(context.Background())
	if err != nil {
		t.Fatalf("build node A: %v", err)
	}
	defer aHandle.Shutdown()

	dx, _ := callsign.ParseLoose("K1ABC")
	aHandle.InjectSpot(spot.Spot{DX: dx, Origin: ids.NodeId("node-a"), Time: time.Now().UTC()})

	if !waitForDX(t, bHandle, "K1ABC", 3*time.Second) {
		t.Fatal("expected K1ABC minted on node A to propagate to node B within 3s")
	}

	de, _ := callsign.ParseLoose("W1AW")
	bHandle.InjectSpot(spot.Spot{DX: de, Origin: ids.NodeId("node-b"), Time: time.Now().UTC()})

	if !waitForDX(t, aHandle, "W1AW", 3*time.Second) {
		t.Fatal("expected W1AW minted on node B to propagate back to node A within 3s")
	}
}

func TestEndToEndAuthReject(t *testing.T) {
	expected := "s3cret"
	bOpts := quietPeerOptions()
	bOpts.ExpectedAuthToken = &expected

	bCfg := Config{
		NodeID:      "node-b",
		UserListen:  "127.0.0.1:0",
		PeerListen:  "127.0.0.1:0",
		PeerOptions: bOpts,
		RetryPolicy: retryPolicyForTests(),
	}
	bHandle, err := NewBuilder(bCfg).Build(context.Background())
	if err != nil {
		t.Fatalf("build node B: %v", err)
	}
	defer bHandle.Shutdown()

	aCfg := Config{
		NodeID:      "node-a",
		UserListen:  "127.0.0.1:0",
		PeerOptions: quietPeerOptions(),
		RetryPolicy: retryPolicyForTests(),
		Upstreams: []UpstreamConfig{
			{Addr: bHandle.PeerAddr().String(), Mode: ModePeer, AuthToken: "bad"},
		},
	}
	aHandle, err := NewBuilder(aCfg).Build(context.Background())
	if err != nil {
		t.Fatalf("build node A: %v", err)
	}
	defer aHandle.Shutdown()

	dx, _ := callsign.ParseLoose("K1ABC")
	aHandle.InjectSpot(spot.Spot{DX: dx, Origin: ids.NodeId("node-a"), Time: time.Now().UTC()})

	time.Sleep(300 * time.Millisecond)
	for _, s := range bHandle.RecentSpots(20) {
		if s.DX.String() == "K1ABC" {
			t.Fatal("expected the unauthenticated peer link to never admit K1ABC onto node B")
		}
	}
}

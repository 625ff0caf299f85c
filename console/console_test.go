package console

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"dxnode/callsign"
	"dxnode/ids"
	"dxnode/node"
	"dxnode/peerdir"
	"dxnode/spot"
	"dxnode/status"
)

func TestRedrawPopulatesSpotsAndPeersTables(t *testing.T) {
	h, err := node.NewBuilder(node.Config{NodeID: "console-node", UserListen: "127.0.0.1:0"}).Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer h.Shutdown()

	dx, _ := callsign.ParseLoose("K1ABC")
	h.InjectSpot(spot.Spot{DX: dx, Time: time.Now().UTC(), Comment: "59 FT8"})

	dirPath := filepath.Join(t.TempDir(), "peers.db")
	dir, err := peerdir.Open(dirPath)
	if err != nil {
		t.Fatalf("peerdir.Open: %v", err)
	}
	defer dir.Close()
	dir.Observe(ids.NodeId("peer-b"), "1", []string{"spot"}, time.Now().UTC())

	tracker := status.NewTracker()
	d := NewDashboard(h, tracker, dir)
	d.redraw()

	if d.spots.GetRowCount() != 2 { // header + one spot
		t.Fatalf("spots row count = %d, want 2", d.spots.GetRowCount())
	}
	if d.spots.GetCell(1, 1).Text != "K1ABC" {
		t.Fatalf("spot dx cell = %q", d.spots.GetCell(1, 1).Text)
	}

	if d.peers.GetRowCount() != 2 { // header + one peer
		t.Fatalf("peers row count = %d, want 2", d.peers.GetRowCount())
	}
	if d.peers.GetCell(1, 0).Text != "peer-b" {
		t.Fatalf("peer node cell = %q", d.peers.GetCell(1, 0).Text)
	}
}

func TestRedrawWithoutPeerDirectoryShowsPlaceholder(t *testing.T) {
	h, err := node.NewBuilder(node.Config{NodeID: "console-node", UserListen: "127.0.0.1:0"}).Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer h.Shutdown()

	d := NewDashboard(h, status.NewTracker(), nil)
	d.redraw()

	if d.peers.GetRowCount() != 2 {
		t.Fatalf("peers row count = %d, want 2 (header + placeholder)", d.peers.GetRowCount())
	}
}

package status

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"dxnode/node"
	"dxnode/peerdir"
)

// PeerView is one row of the status report's peer directory section.
type PeerView struct {
	NodeID       string   `json:"node_id"`
	Version      string   `json:"version"`
	Capabilities []string `json:"capabilities"`
	LastSeen     time.Time `json:"last_seen"`
	LastSeenAgo  string   `json:"last_seen_ago"`
}

// Report is a point-in-time snapshot of a running node.
type Report struct {
	NodeID        string            `json:"node_id"`
	GeneratedAt   time.Time         `json:"generated_at"`
	Uptime        time.Duration     `json:"uptime_ns"`
	UptimeHuman   string            `json:"uptime_human"`
	CacheSize     int               `json:"cache_size"`
	TotalSpots    uint64            `json:"total_spots"`
	SpotsByOrigin map[string]uint64 `json:"spots_by_origin"`
	Peers         []PeerView        `json:"peers"`
}

// BuildReport snapshots handle and tracker into a Report. dir may be nil
// if the node was built without a peer directory.
func BuildReport(handle *node.NodeHandle, tracker *Tracker, dir *peerdir.Directory) (Report, error) {
	now := time.Now().UTC()
	r := Report{
		NodeID:        string(handle.NodeID()),
		GeneratedAt:   now,
		Uptime:        tracker.Uptime(),
		UptimeHuman:   humanize.RelTime(now.Add(-tracker.Uptime()), now, "ago", "from now"),
		CacheSize:     len(handle.RecentSpots(1 << 20)),
		TotalSpots:    tracker.Total(),
		SpotsByOrigin: tracker.OriginCounts(),
	}

	if dir != nil {
		entries, err := dir.All()
		if err != nil {
			return Report{}, fmt.Errorf("status: read peer directory: %w", err)
		}
		for _, e := range entries {
			r.Peers = append(r.Peers, PeerView{
				NodeID:       string(e.NodeID),
				Version:      e.Version,
				Capabilities: e.Capabilities,
				LastSeen:     e.LastSeen,
				LastSeenAgo:  humanize.Time(e.LastSeen),
			})
		}
	}
	return r, nil
}

// HumanText renders the report the way an operator watching a terminal
// would want it, in the teacher's Tracker.Print style: one labeled line
// per section rather than a single dense dump.
func (r Report) HumanText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "node %s — up %s\n", r.NodeID, r.UptimeHuman)
	fmt.Fprintf(&b, "cache: %d spots, %d total accepted\n", r.CacheSize, r.TotalSpots)

	fmt.Fprintf(&b, "spots by origin: ")
	if len(r.SpotsByOrigin) == 0 {
		b.WriteString("(none)")
	} else {
		origins := make([]string, 0, len(r.SpotsByOrigin))
		for o := range r.SpotsByOrigin {
			origins = append(origins, o)
		}
		sort.Strings(origins)
		for i, o := range origins {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%d", o, r.SpotsByOrigin[o])
		}
	}
	b.WriteByte('\n')

	fmt.Fprintf(&b, "peers: ")
	if len(r.Peers) == 0 {
		b.WriteString("(none)\n")
		return b.String()
	}
	b.WriteByte('\n')
	for _, p := range r.Peers {
		fmt.Fprintf(&b, "  %s v%s caps=%s last seen %s\n", p.NodeID, p.Version, strings.Join(p.Capabilities, ","), p.LastSeenAgo)
	}
	return b.String()
}

package node

import "time"

// UpstreamMode selects how an outbound peer is driven. Only ModePeer is
// connected by the core; ModeTelnet is a declared future extension point
// (spec.md §4.4, §9).
type UpstreamMode int

const (
	ModeTelnet UpstreamMode = iota
	ModePeer
)

// PeerOptions configures the identity a PeerSession presents to a remote
// node.
type PeerOptions struct {
	Version           string
	Capabilities      []string
	HeartbeatInterval time.Duration
	ExpectedAuthToken *string // nil means no inbound auth is required
}

// EffectiveHeartbeatInterval clamps HeartbeatInterval to the 1s minimum
// spec.md §4.3 requires.
func (p PeerOptions) EffectiveHeartbeatInterval() time.Duration {
	if p.HeartbeatInterval < time.Second {
		return time.Second
	}
	return p.HeartbeatInterval
}

// PeerRetryPolicy configures UpstreamConnector's backoff schedule.
type PeerRetryPolicy struct {
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

// UpstreamConfig describes one outbound peer to dial.
type UpstreamConfig struct {
	Addr          string
	Mode          UpstreamMode
	LoginCallsign string
	AuthToken     string
}

// Config collects the semantic node options from spec.md §6. It is not a
// file format — config.Load in the config package parses a YAML file into
// this shape (plus the domain-stack sections config owns separately).
type Config struct {
	NodeID      string
	UserListen  string
	PeerListen  string // empty disables the peer listener
	PeerOptions PeerOptions
	RetryPolicy PeerRetryPolicy
	Upstreams   []UpstreamConfig

	// PeerDirPath, if non-empty, opens a peerdir.Directory at this path and
	// records every peer session's HELLO/CAPS/HEARTBEAT sightings into it.
	PeerDirPath string

	// SecondaryDedup, if enabled, gates every NodeState.InsertWithSource
	// call behind dedup.SecondaryDeduper.
	SecondaryDedup SecondaryDedupConfig
}

// SecondaryDedupConfig configures the dedup.SecondaryDeduper layered in
// front of the primary cache/bus insert path.
type SecondaryDedupConfig struct {
	Enabled bool

	// Window is the sliding duplicate-suppression window. With zero, only
	// a repeat whose time is not later than the previous sighting's is
	// suppressed.
	Window time.Duration

	// CollapseClasses, if true, ignores source class when deduping: a
	// repeat of the same (dx, frequency) from any source within Window
	// is suppressed, not just repeats from the same source.
	CollapseClasses bool
}

package wire

import (
	"strconv"
	"strings"
	"time"

	"dxnode/callsign"
	"dxnode/freq"
	"dxnode/ids"
	"dxnode/spot"
)

// PeerFrameKind enumerates the peer-protocol frame types from spec.md §4.3/§6.
type PeerFrameKind int

const (
	FrameHello PeerFrameKind = iota
	FrameCaps
	FrameAuth
	FrameSpot
	FrameHeartbeat
	FramePing
	FramePong
)

// PeerFrame is a parsed line exchanged between two cluster nodes. Kind
// determines which other fields are meaningful.
type PeerFrame struct {
	Kind    PeerFrameKind
	NodeID  ids.NodeId
	Version string
	Caps    []string
	Token   string
	Spot    spot.Spot
	Nonce   string
}

var spotFieldNames = []string{
	"", // index 0 is the keyword itself, never reported missing
	"spot id",
	"timestamp",
	"frequency",
	"dx callsign",
	"spotter callsign",
	"comment",
	"origin",
	"hop",
}

// ParsePeerFrame parses one pipe-delimited peer-protocol line.
func ParsePeerFrame(line string) (PeerFrame, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return PeerFrame{}, newPeerParseError("line was empty")
	}

	parts := strings.Split(trimmed, "|")
	keyword := strings.ToUpper(parts[0])

	switch keyword {
	case "HELLO":
		if len(parts) < 2 || parts[1] == "" {
			return PeerFrame{}, newPeerParseError("missing node id")
		}
		version := "1"
		if len(parts) >= 3 && parts[2] != "" {
			version = parts[2]
		}
		return PeerFrame{Kind: FrameHello, NodeID: ids.NodeId(parts[1]), Version: version}, nil

	case "CAPS":
		var caps []string
		if len(parts) >= 2 {
			for _, v := range strings.Split(parts[1], ",") {
				v = strings.TrimSpace(v)
				if v != "" {
					caps = append(caps, v)
				}
			}
		}
		return PeerFrame{Kind: FrameCaps, Caps: caps}, nil

	case "AUTH":
		if len(parts) < 2 || parts[1] == "" {
			return PeerFrame{}, newPeerParseError("missing auth token")
		}
		return PeerFrame{Kind: FrameAuth, Token: parts[1]}, nil

	case "SPOT":
		return parseSpotFrame(parts)

	case "HEARTBEAT":
		nonce := ""
		if len(parts) >= 2 {
			nonce = parts[1]
		}
		return PeerFrame{Kind: FrameHeartbeat, Nonce: nonce}, nil

	case "PING":
		nonce := ""
		if len(parts) >= 2 {
			nonce = parts[1]
		}
		return PeerFrame{Kind: FramePing, Nonce: nonce}, nil

	case "PONG":
		nonce := ""
		if len(parts) >= 2 {
			nonce = parts[1]
		}
		return PeerFrame{Kind: FramePong, Nonce: nonce}, nil

	default:
		return PeerFrame{}, newPeerParseError("unknown frame type: %s", parts[0])
	}
}

func parseSpotFrame(parts []string) (PeerFrame, error) {
	if len(parts) < len(spotFieldNames) {
		return PeerFrame{}, newPeerParseError("missing %s", spotFieldNames[len(parts)])
	}
	if len(parts) > len(spotFieldNames) {
		return PeerFrame{}, newPeerParseError("invalid spot frame: too many fields")
	}

	spotID, ok := ids.ParseSpotId(parts[1])
	if !ok {
		return PeerFrame{}, newPeerParseError("invalid spot id")
	}

	secs, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return PeerFrame{}, newPeerParseError("invalid timestamp")
	}

	freqHz, err := strconv.ParseUint(parts[3], 10, 64)
	if err != nil {
		return PeerFrame{}, newPeerParseError("invalid frequency")
	}

	dx, err := callsign.ParseLoose(parts[4])
	if err != nil {
		return PeerFrame{}, newPeerParseError("invalid dx callsign")
	}

	spotter, err := callsign.ParseLoose(parts[5])
	if err != nil {
		return PeerFrame{}, newPeerParseError("invalid spotter callsign")
	}

	comment := unescapeComment(parts[6])
	origin := ids.NodeId(parts[7])

	hop, err := strconv.ParseUint(parts[8], 10, 32)
	if err != nil {
		return PeerFrame{}, newPeerParseError("invalid hop")
	}

	return PeerFrame{
		Kind: FrameSpot,
		Spot: spot.Spot{
			SpotID:  spotID,
			Time:    time.Unix(secs, 0).UTC(),
			Freq:    freq.FrequencyHz(freqHz),
			DX:      dx,
			Spotter: spotter,
			Comment: comment,
			Origin:  origin,
			Hop:     uint32(hop),
		},
	}, nil
}

// FormatPeerFrame renders a PeerFrame back to wire form. It is the inverse
// of ParsePeerFrame for every Kind.
func FormatPeerFrame(f PeerFrame) string {
	switch f.Kind {
	case FrameHello:
		return "HELLO|" + string(f.NodeID) + "|" + f.Version
	case FrameCaps:
		return "CAPS|" + strings.Join(f.Caps, ",")
	case FrameAuth:
		return "AUTH|" + f.Token
	case FrameSpot:
		s := f.Spot
		return strings.Join([]string{
			"SPOT",
			s.SpotID.String(),
			strconv.FormatInt(s.Time.Unix(), 10),
			strconv.FormatUint(uint64(s.Freq), 10),
			s.DX.String(),
			s.Spotter.String(),
			escapeComment(s.Comment),
			string(s.Origin),
			strconv.FormatUint(uint64(s.Hop), 10),
		}, "|")
	case FrameHeartbeat:
		return "HEARTBEAT|" + f.Nonce
	case FramePing:
		return "PING|" + f.Nonce
	case FramePong:
		return "PONG|" + f.Nonce
	default:
		return ""
	}
}

// escapeComment percent-encodes the two characters that would otherwise
// break the pipe-delimited frame ('%' first, so the escape sequences it
// introduces are never themselves re-escaped).
func escapeComment(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "|", "%7C")
	return s
}

// unescapeComment inverts escapeComment ('|' first, the mirror order).
func unescapeComment(s string) string {
	s = strings.ReplaceAll(s, "%7C", "|")
	s = strings.ReplaceAll(s, "%25", "%")
	return s
}

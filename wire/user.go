package wire

import "strings"

// UserCommandKind enumerates the user-protocol commands from spec.md §6.
type UserCommandKind int

const (
	CmdDX UserCommandKind = iota
	CmdShowDX
	CmdShowFilters
	CmdPing
	CmdRaw
)

// UserCommand is a parsed line from a user-session connection. Kind
// determines which other fields are meaningful: DX uses DXCall/FreqKHz/
// Comment, Raw uses RawLine, the rest carry no payload.
type UserCommand struct {
	Kind    UserCommandKind
	DXCall  string
	FreqKHz string
	Comment string
	RawLine string
}

// ParseCommand parses a single user-protocol line. Command keywords are
// case-insensitive; DX's callsign/frequency/comment fields are returned as
// raw text — callsign and frequency parsing/validation is the session's
// job, so a DX line with an invalid callsign still parses here and fails
// later with a more specific error.
func ParseCommand(line string) (UserCommand, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return UserCommand{}, newUserParseError("line was empty")
	}

	upper := strings.ToUpper(trimmed)

	if strings.HasPrefix(upper, "DX ") || upper == "DX" {
		rest := strings.TrimSpace(trimmed[2:])
		fields := strings.Fields(rest)
		if len(fields) < 1 {
			return UserCommand{}, newUserParseError("DX command missing callsign")
		}
		if len(fields) < 2 {
			return UserCommand{}, newUserParseError("DX command missing frequency")
		}
		comment := ""
		if len(fields) > 2 {
			comment = strings.Join(fields[2:], " ")
		}
		return UserCommand{
			Kind:    CmdDX,
			DXCall:  fields[0],
			FreqKHz: fields[1],
			Comment: comment,
		}, nil
	}

	if upper == "SH/DX" {
		return UserCommand{Kind: CmdShowDX}, nil
	}

	if upper == "SH/FILTERS" || upper == "SHOW/FILTERS" {
		return UserCommand{Kind: CmdShowFilters}, nil
	}

	if upper == "PING" || upper == "HEARTBEAT" {
		return UserCommand{Kind: CmdPing}, nil
	}

	return UserCommand{Kind: CmdRaw, RawLine: trimmed}, nil
}

// FormatCommand renders a UserCommand back to wire form. It is the inverse
// of ParseCommand for the canonical forms (DX, SH/DX, SH/FILTERS, PING) —
// aliases like HEARTBEAT or SHOW/FILTERS parse to the same Kind but are not
// required to round-trip byte-for-byte.
func FormatCommand(c UserCommand) string {
	switch c.Kind {
	case CmdDX:
		if c.Comment == "" {
			return "DX " + c.DXCall + " " + c.FreqKHz
		}
		return "DX " + c.DXCall + " " + c.FreqKHz + " " + c.Comment
	case CmdShowDX:
		return "SH/DX"
	case CmdShowFilters:
		return "SH/FILTERS"
	case CmdPing:
		return "PING"
	default:
		return c.RawLine
	}
}

// FormatBanner renders the session-start banner.
func FormatBanner(nodeID string) string {
	return "Welcome to " + nodeID + " DX cluster"
}

// FormatPrompt renders the prompt emitted after every exchange.
func FormatPrompt() string {
	return ">"
}

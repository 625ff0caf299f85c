package node

import (
	"bufio"
	"encoding/binary"
	"io"
	"time"

	"github.com/google/uuid"

	"dxnode/callsign"
	"dxnode/correction"
	"dxnode/filter"
	"dxnode/freq"
	"dxnode/ids"
	"dxnode/spot"
	"dxnode/wire"
)

// defaultSpotterCallsign is attributed to a DX mint when the session has
// not negotiated one, per spec.md §4.2.
var defaultSpotterCallsign = callsign.Callsign{}

func init() {
	c, err := callsign.ParseLoose("N0CALL")
	if err != nil {
		panic(err)
	}
	defaultSpotterCallsign = c
}

// UserSession drives one telnet-style connection: banner, prompt, then a
// read loop that parses and dispatches user commands (spec.md §4.2).
type UserSession struct {
	ID         string
	conn       io.ReadWriteCloser
	state      *NodeState
	filter     *filter.Filter
	attributed callsign.Callsign

	// corrections, if set, turns a newly minted DX callsign into an
	// advisory "did you mean" hint against recently seen callsigns.
	corrections *correction.Index
}

// NewUserSession constructs a session over conn. attributed is the
// callsign minted spots are credited to; the zero Callsign falls back to
// N0CALL. filt may be nil, in which case a permissive default is used.
func NewUserSession(conn io.ReadWriteCloser, state *NodeState, filt *filter.Filter, attributed callsign.Callsign) *UserSession {
	if filt == nil {
		filt = filter.New(nil)
	}
	if attributed.IsZero() {
		attributed = defaultSpotterCallsign
	}
	return &UserSession{
		ID:         uuid.NewString(),
		conn:       conn,
		state:      state,
		filter:     filt,
		attributed: attributed,
	}
}

// WithCorrections attaches a shared callsign-correction index. Returns s
// for chaining.
func (s *UserSession) WithCorrections(ix *correction.Index) *UserSession {
	s.corrections = ix
	return s
}

// Serve runs the session loop until EOF or a read error, which terminates
// the session cleanly per spec.md §4.2.
func (s *UserSession) Serve() error {
	defer s.conn.Close()

	s.writeLine(wire.FormatBanner(string(s.state.NodeID())))
	s.writeLine(wire.FormatPrompt())

	scanner := bufio.NewScanner(s.conn)
	for scanner.Scan() {
		s.handleLine(scanner.Text())
		s.writeLine(wire.FormatPrompt())
	}
	return scanner.Err()
}

func (s *UserSession) handleLine(line string) {
	cmd, err := wire.ParseCommand(line)
	if err != nil {
		s.writeLine("ERR: " + err.Error())
		return
	}

	switch cmd.Kind {
	case wire.CmdDX:
		s.handleDX(cmd)
	case wire.CmdShowDX:
		s.handleShowDX()
	case wire.CmdShowFilters:
		s.writeLine(s.filter.Summary())
	case wire.CmdPing:
		s.writeLine("PONG")
	default:
		s.writeLine("Unknown command: " + cmd.RawLine)
	}
}

func (s *UserSession) handleDX(cmd wire.UserCommand) {
	freqHz, err := freq.FromKHzString(cmd.FreqKHz)
	if err != nil {
		s.writeLine("ERR: " + err.Error())
		return
	}
	dx, err := callsign.ParseLoose(cmd.DXCall)
	if err != nil {
		s.writeLine("ERR: " + err.Error())
		return
	}

	now := time.Now().UTC()
	minted := spot.Spot{
		SpotID:  mintSpotID(dx, freqHz, now),
		Time:    now,
		Freq:    freqHz,
		DX:      dx,
		Spotter: s.attributed,
		Comment: spot.NormalizeComment(cmd.Comment),
		Origin:  s.state.NodeID(),
		Hop:     0,
	}
	s.state.Insert(minted)
	s.writeLine(wire.FormatSpotLine(minted))

	if s.corrections != nil {
		if hint := correction.Hint(dx, s.corrections); hint != "" {
			s.writeLine(hint)
		}
		s.corrections.Observe(dx)
	}
}

func (s *UserSession) handleShowDX() {
	for _, sp := range s.state.Recent(10) {
		if s.filter.Matches(sp) {
			s.writeLine(wire.FormatSpotLine(sp))
		}
	}
}

func (s *UserSession) writeLine(line string) {
	s.conn.Write([]byte(line + "\n"))
}

// mintSpotID derives a spot-id from (dx, frequency big-endian bytes, unix
// seconds), per spec.md §4.2.
func mintSpotID(dx callsign.Callsign, f freq.FrequencyHz, at time.Time) ids.SpotId {
	var freqBytes [8]byte
	binary.BigEndian.PutUint64(freqBytes[:], uint64(f))
	var tsBytes [8]byte
	binary.BigEndian.PutUint64(tsBytes[:], uint64(at.Unix()))
	return ids.HashComponents([]byte(dx.String()), freqBytes[:], tsBytes[:])
}

package wire

import "fmt"

// UserParseError describes why a user-protocol line failed to parse.
type UserParseError struct {
	reason string
}

func (e *UserParseError) Error() string { return e.reason }

func newUserParseError(format string, args ...any) error {
	return &UserParseError{reason: fmt.Sprintf(format, args...)}
}

// PeerParseError describes why a peer-protocol frame failed to parse.
type PeerParseError struct {
	reason string
}

func (e *PeerParseError) Error() string { return e.reason }

func newPeerParseError(format string, args ...any) error {
	return &PeerParseError{reason: fmt.Sprintf(format, args...)}
}

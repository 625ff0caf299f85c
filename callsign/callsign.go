// Package callsign implements the Callsign primitive: a normalized,
// uppercase amateur-radio identifier.
package callsign

import (
	"errors"
	"strings"
)

// ErrEmpty is returned when the input callsign is empty after trimming.
var ErrEmpty = errors.New("callsign: empty")

// ErrInvalidFormat is returned by ParseStrict when the input does not look
// like a callsign (no digit, or characters outside [A-Z0-9/]).
var ErrInvalidFormat = errors.New("callsign: invalid format")

// Callsign is a normalized uppercase amateur-radio identifier.
type Callsign struct {
	raw string
}

// ParseLoose trims and uppercases the input, rejecting only the empty
// string. This is the default parse used for spotter/dx attribution, since
// full format validation is a domain concern outside the node core.
func ParseLoose(input string) (Callsign, error) {
	return parse(input, false)
}

// ParseStrict additionally requires at least one digit and restricts the
// character set to alphanumerics and '/'.
func ParseStrict(input string) (Callsign, error) {
	return parse(input, true)
}

func parse(input string, strict bool) (Callsign, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return Callsign{}, ErrEmpty
	}
	if strict {
		hasDigit := false
		for _, c := range trimmed {
			if c >= '0' && c <= '9' {
				hasDigit = true
			}
			if !isCallsignRune(c) {
				return Callsign{}, ErrInvalidFormat
			}
		}
		if !hasDigit {
			return Callsign{}, ErrInvalidFormat
		}
	}
	return Callsign{raw: strings.ToUpper(trimmed)}, nil
}

func isCallsignRune(c rune) bool {
	switch {
	case c >= 'A' && c <= 'Z':
		return true
	case c >= 'a' && c <= 'z':
		return true
	case c >= '0' && c <= '9':
		return true
	case c == '/':
		return true
	default:
		return false
	}
}

// String returns the normalized callsign text.
func (c Callsign) String() string {
	return c.raw
}

// IsZero reports whether c is the zero value (never successfully parsed).
func (c Callsign) IsZero() bool {
	return c.raw == ""
}

// Equal reports exact-byte equality of the normalized forms.
func (c Callsign) Equal(other Callsign) bool {
	return c.raw == other.raw
}

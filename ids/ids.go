// Package ids implements the node and spot identifier primitives.
package ids

import (
	"crypto/sha256"
	"encoding/hex"
)

// NodeId is an opaque, non-empty node identifier. Equality is exact-byte.
type NodeId string

// SpotId is a 32-byte digest derived from a sequence of byte slices.
type SpotId [32]byte

// HashComponents derives a SpotId by hashing the concatenation of parts
// with SHA-256. This satisfies spec's only contract — determinism and
// width — with a real cryptographic digest rather than the fallback XOR
// scheme the original design flagged as non-interoperable.
func HashComponents(parts ...[]byte) SpotId {
	h := sha256.New()
	for _, p := range parts {
		h.Write(p)
	}
	var id SpotId
	copy(id[:], h.Sum(nil))
	return id
}

// String renders the SpotId as 64 lowercase hex characters.
func (id SpotId) String() string {
	return hex.EncodeToString(id[:])
}

// ParseSpotId parses a 64-character lowercase hex string into a SpotId.
func ParseSpotId(s string) (SpotId, bool) {
	var id SpotId
	if len(s) != 64 {
		return id, false
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, false
	}
	copy(id[:], b)
	return id, true
}

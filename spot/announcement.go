package spot

import "dxnode/ids"

// Announcement is published on NodeState's bus after every successful
// insert. Source is the zero NodeId for locally-minted spots and the
// remote peer's id for spots ingested over a peer link; it exists solely
// for loop suppression at the forwarding boundary.
type Announcement struct {
	Spot   Spot
	Source ids.NodeId
}

// FromPeer reports whether the announcement originated from a peer link
// (as opposed to a local DX mint).
func (a Announcement) FromPeer() bool {
	return a.Source != ""
}

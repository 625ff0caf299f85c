// Package status reports what a running node is doing: uptime, cache
// occupancy, spot throughput by origin, and known peers. Counting is
// delegated to stats.Tracker, keyed by this domain's notion of "source" —
// the originating node id of each propagated spot — in place of the
// RBN/PSKReporter feed names the teacher's Tracker was built around.
package status

import (
	"time"

	"dxnode/node"
	"dxnode/stats"
)

// Tracker counts spots observed on a node's bus, bucketed by origin node
// id, plus the node's uptime since the tracker was created. It is a thin
// wrapper over stats.Tracker: origin id stands in for the teacher's
// "source" counter, and the parallel "mode" counter goes unused here.
type Tracker struct {
	inner *stats.Tracker
}

// NewTracker constructs a Tracker whose uptime clock starts now.
func NewTracker() *Tracker {
	return &Tracker{inner: stats.NewTracker()}
}

// Watch consumes sub until its channel closes, incrementing the counter
// for each announcement's origin. Intended to be run in its own goroutine
// against a *node.NodeHandle's Subscribe() feed.
func (t *Tracker) Watch(sub *node.Subscription) {
	for ann := range sub.C() {
		origin := string(ann.Spot.Origin)
		if origin == "" {
			origin = "(local)"
		}
		t.inner.IncrementSource(origin)
	}
}

// OriginCounts returns a snapshot of spot counts by origin node id.
func (t *Tracker) OriginCounts() map[string]uint64 {
	return t.inner.GetSourceCounts()
}

// Total returns the sum of every origin's count.
func (t *Tracker) Total() uint64 {
	return t.inner.GetTotal()
}

// Uptime returns how long ago the tracker was created.
func (t *Tracker) Uptime() time.Duration {
	return t.inner.GetUptime()
}

// Reset clears every counter and restarts the uptime clock.
func (t *Tracker) Reset() {
	t.inner.Reset()
}

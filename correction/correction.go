// Package correction suggests a likely-intended callsign when a freshly
// minted DX spot's callsign is a near-miss of one recently seen on the
// node. It is purely advisory: spots are never rewritten, only annotated
// with a hint line the session may choose to show the operator.
package correction

import (
	"sync"

	"github.com/agnivade/levenshtein"

	"dxnode/callsign"
)

// MaxSuggestDistance is the edit-distance threshold within which a recent
// callsign is considered a plausible near-miss.
const MaxSuggestDistance = 2

// DefaultCapacity bounds how many distinct recent callsigns the index
// retains for comparison.
const DefaultCapacity = 512

// Index is a bounded, FIFO history of recently observed callsigns, used to
// suggest a correction for a possible typo in a newly minted spot.
type Index struct {
	mu       sync.Mutex
	capacity int
	order    []string
	seen     map[string]struct{}
}

// NewIndex constructs an index with the given capacity. A non-positive
// capacity falls back to DefaultCapacity.
func NewIndex(capacity int) *Index {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Index{
		capacity: capacity,
		seen:     make(map[string]struct{}, capacity),
	}
}

// Observe records call as recently seen, evicting the oldest entry once at
// capacity. Re-observing an already-tracked callsign is a no-op for
// ordering purposes (it stays at its original position).
func (ix *Index) Observe(call callsign.Callsign) {
	if call.IsZero() {
		return
	}
	text := call.String()

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if _, ok := ix.seen[text]; ok {
		return
	}
	if len(ix.order) == ix.capacity {
		oldest := ix.order[0]
		ix.order = ix.order[1:]
		delete(ix.seen, oldest)
	}
	ix.order = append(ix.order, text)
	ix.seen[text] = struct{}{}
}

// Suggest returns the closest recently observed callsign to call, if any
// is within MaxSuggestDistance edits and not identical to call itself.
func (ix *Index) Suggest(call callsign.Callsign) (string, bool) {
	text := call.String()

	ix.mu.Lock()
	candidates := make([]string, len(ix.order))
	copy(candidates, ix.order)
	ix.mu.Unlock()

	best := ""
	bestDist := MaxSuggestDistance + 1
	for _, candidate := range candidates {
		if candidate == text {
			continue
		}
		d := levenshtein.ComputeDistance(text, candidate)
		if d <= MaxSuggestDistance && d < bestDist {
			best = candidate
			bestDist = d
		}
	}
	if best == "" {
		return "", false
	}
	return best, true
}

// Hint formats a human-readable suggestion line, or "" if none applies.
func Hint(call callsign.Callsign, ix *Index) string {
	suggestion, ok := ix.Suggest(call)
	if !ok {
		return ""
	}
	return "did you mean " + suggestion + "?"
}

package node

import (
	"dxnode/cty"
	"dxnode/filter"
)

// ctyLookup adapts a *cty.CTYDatabase to filter.Lookup, translating
// cty.Metadata into the narrower filter.Metadata shape. The two packages
// stay decoupled (filter never imports cty) at the cost of this one
// field-by-field adapter, built here where both are already in scope.
type ctyLookup struct {
	db *cty.CTYDatabase
}

// NewCTYLookup wraps db as a filter.Lookup. A nil db is valid: every
// lookup then reports "unknown", matching filter's own nil-lookup
// behavior.
func NewCTYLookup(db *cty.CTYDatabase) filter.Lookup {
	return ctyLookup{db: db}
}

func (l ctyLookup) LookupMetadata(callsign string) (filter.Metadata, bool) {
	if l.db == nil {
		return filter.Metadata{}, false
	}
	m, ok := l.db.LookupMetadata(callsign)
	if !ok {
		return filter.Metadata{}, false
	}
	return filter.Metadata{Continent: m.Continent, CQZone: m.CQZone, Grid: m.Grid}, true
}

package cty

// Metadata is the subset of a CTY prefix entry the node core cares about:
// the continent and CQ zone used by filter's whitelist predicates. Grid is
// left for a future grid-square database and is always empty for now; a
// lookup that returns an empty Grid is treated as "unknown" by filter, same
// as an empty Continent.
type Metadata struct {
	Continent string
	CQZone    int
	Grid      string
}

// LookupMetadata adapts LookupCallsign's PrefixInfo into the narrower
// Metadata shape consumed by filter, so filter does not need to depend on
// the plist-derived PrefixInfo representation directly.
func (db *CTYDatabase) LookupMetadata(cs string) (Metadata, bool) {
	info, ok := db.LookupCallsign(cs)
	if !ok {
		return Metadata{}, false
	}
	return Metadata{Continent: info.Continent, CQZone: info.CQZone}, true
}

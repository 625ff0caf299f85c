// Package filter implements the per-session spot predicate from spec.md
// §4.2: a polymorphic filter whose default accepts every spot, expanded
// into a real continent/CQ-zone/grid-prefix whitelist engine grounded in
// the teacher's filter package.
package filter

import (
	"fmt"
	"sort"
	"strings"

	"dxnode/spot"
)

// Lookup resolves a callsign to CTY-derived metadata. cty.CTYDatabase
// satisfies this via LookupMetadata.
type Lookup interface {
	LookupMetadata(callsign string) (Metadata, bool)
}

// Metadata mirrors cty.Metadata without importing the cty package, keeping
// filter's dependency surface to the shape it actually needs.
type Metadata struct {
	Continent string
	CQZone    int
	Grid      string
}

// Filter is a per-session predicate over spots. The zero value constructed
// via New accepts everything; callers narrow it with the Set* methods.
type Filter struct {
	lookup Lookup

	AllDXContinents bool
	AllDEContinents bool
	dxContinents    map[string]bool
	deContinents    map[string]bool

	AllDXZones bool
	AllDEZones bool
	dxZones    map[int]bool
	deZones    map[int]bool

	AllDXGrid2 bool
	AllDEGrid2 bool
	dxGrid2    map[string]bool
	deGrid2    map[string]bool
}

// New constructs a Filter that accepts every spot until narrowed. lookup
// may be nil, in which case any continent/zone/grid predicate treats every
// spot's metadata as unknown (and therefore rejects once narrowed).
func New(lookup Lookup) *Filter {
	f := &Filter{lookup: lookup}
	f.normalizeDefaults()
	return f
}

func (f *Filter) normalizeDefaults() {
	if len(f.dxContinents) == 0 {
		f.AllDXContinents = true
	}
	if len(f.deContinents) == 0 {
		f.AllDEContinents = true
	}
	if len(f.dxZones) == 0 {
		f.AllDXZones = true
	}
	if len(f.deZones) == 0 {
		f.AllDEZones = true
	}
	if len(f.dxGrid2) == 0 {
		f.AllDXGrid2 = true
	}
	if len(f.deGrid2) == 0 {
		f.AllDEGrid2 = true
	}
}

// SetDXContinent adds or removes a continent code from the DX whitelist.
func (f *Filter) SetDXContinent(code string, allow bool) {
	f.dxContinents = setMembership(f.dxContinents, strings.ToUpper(code), allow)
	f.AllDXContinents = len(f.dxContinents) == 0
}

// SetDEContinent adds or removes a continent code from the DE (spotter)
// whitelist.
func (f *Filter) SetDEContinent(code string, allow bool) {
	f.deContinents = setMembership(f.deContinents, strings.ToUpper(code), allow)
	f.AllDEContinents = len(f.deContinents) == 0
}

// SetDXZone adds or removes a CQ zone from the DX whitelist.
func (f *Filter) SetDXZone(zone int, allow bool) {
	f.dxZones = setMembershipInt(f.dxZones, zone, allow)
	f.AllDXZones = len(f.dxZones) == 0
}

// SetDEZone adds or removes a CQ zone from the DE whitelist.
func (f *Filter) SetDEZone(zone int, allow bool) {
	f.deZones = setMembershipInt(f.deZones, zone, allow)
	f.AllDEZones = len(f.deZones) == 0
}

// SetDXGrid2Prefix adds or removes a 2-character grid prefix (derived from
// the leading 2 characters of the supplied grid) from the DX whitelist.
func (f *Filter) SetDXGrid2Prefix(grid string, allow bool) {
	f.dxGrid2 = setMembership(f.dxGrid2, grid2(grid), allow)
	f.AllDXGrid2 = len(f.dxGrid2) == 0
}

// SetDEGrid2Prefix adds or removes a 2-character grid prefix from the DE
// whitelist.
func (f *Filter) SetDEGrid2Prefix(grid string, allow bool) {
	f.deGrid2 = setMembership(f.deGrid2, grid2(grid), allow)
	f.AllDEGrid2 = len(f.deGrid2) == 0
}

func grid2(grid string) string {
	grid = strings.ToUpper(strings.TrimSpace(grid))
	if len(grid) < 2 {
		return grid
	}
	return grid[:2]
}

func setMembership(m map[string]bool, key string, allow bool) map[string]bool {
	if m == nil {
		m = make(map[string]bool)
	}
	if allow {
		m[key] = true
	} else {
		delete(m, key)
	}
	return m
}

func setMembershipInt(m map[int]bool, key int, allow bool) map[int]bool {
	if m == nil {
		m = make(map[int]bool)
	}
	if allow {
		m[key] = true
	} else {
		delete(m, key)
	}
	return m
}

// Matches reports whether s passes every active whitelist. While a grid
// whitelist is active, only a looked-up grid of exactly 2 characters can
// pass it; a longer grid (e.g. "KN44") is rejected.
func (f *Filter) Matches(s spot.Spot) bool {
	if !f.AllDXContinents || !f.AllDXZones || !f.AllDXGrid2 {
		if !f.passContinentZoneGrid(s.DX.String(), f.AllDXContinents, f.dxContinents, f.AllDXZones, f.dxZones, f.AllDXGrid2, f.dxGrid2) {
			return false
		}
	}
	if !f.AllDEContinents || !f.AllDEZones || !f.AllDEGrid2 {
		if !f.passContinentZoneGrid(s.Spotter.String(), f.AllDEContinents, f.deContinents, f.AllDEZones, f.deZones, f.AllDEGrid2, f.deGrid2) {
			return false
		}
	}
	return true
}

func (f *Filter) passContinentZoneGrid(call string, allCont bool, conts map[string]bool, allZone bool, zones map[int]bool, allGrid2 bool, grid2s map[string]bool) bool {
	meta, ok := Metadata{}, false
	if f.lookup != nil {
		meta, ok = f.lookup.LookupMetadata(call)
	}

	if !allCont {
		if !ok || meta.Continent == "" || !conts[strings.ToUpper(meta.Continent)] {
			return false
		}
	}
	if !allZone {
		if !ok || meta.CQZone == 0 || !zones[meta.CQZone] {
			return false
		}
	}
	if !allGrid2 {
		g := grid2(meta.Grid)
		if !ok || len(meta.Grid) != 2 || !grid2s[g] {
			return false
		}
	}
	return true
}

// Summary renders a human-readable description of the active filters, for
// SH/FILTERS and SHOW/FILTERS.
func (f *Filter) Summary() string {
	parts := []string{
		summaryLine("DX continents", f.AllDXContinents, stringKeys(f.dxContinents)),
		summaryLine("DE continents", f.AllDEContinents, stringKeys(f.deContinents)),
		summaryLine("DX zones", f.AllDXZones, intKeysAsStrings(f.dxZones)),
		summaryLine("DE zones", f.AllDEZones, intKeysAsStrings(f.deZones)),
		summaryLine("DX grids", f.AllDXGrid2, stringKeys(f.dxGrid2)),
		summaryLine("DE grids", f.AllDEGrid2, stringKeys(f.deGrid2)),
	}
	return "Filters: " + strings.Join(parts, "; ")
}

func summaryLine(label string, all bool, values []string) string {
	if all {
		return fmt.Sprintf("%s=ALL", label)
	}
	return fmt.Sprintf("%s=%s", label, strings.Join(values, ","))
}

func stringKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func intKeysAsStrings(m map[int]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, fmt.Sprintf("%d", k))
	}
	sort.Strings(out)
	return out
}

package filter

import (
	"testing"

	"dxnode/callsign"
	"dxnode/spot"
)

type fakeLookup map[string]Metadata

func (f fakeLookup) LookupMetadata(call string) (Metadata, bool) {
	m, ok := f[call]
	return m, ok
}

func mustCall(t *testing.T, s string) callsign.Callsign {
	t.Helper()
	c, err := callsign.ParseLoose(s)
	if err != nil {
		t.Fatalf("ParseLoose(%q): %v", s, err)
	}
	return c
}

func TestNewFilterDefaultsAllowAll(t *testing.T) {
	f := New(fakeLookup{
		"EUDX": {Continent: "EU", CQZone: 14},
		"NADE": {Continent: "NA", CQZone: 5},
	})
	s := spot.Spot{DX: mustCall(t, "EUDX"), Spotter: mustCall(t, "NADE")}
	if !f.Matches(s) {
		t.Fatalf("default filter should allow all continents/zones")
	}
}

func TestContinentFilters(t *testing.T) {
	lookup := fakeLookup{
		"EUDX": {Continent: "EU"},
		"NADX": {Continent: "NA"},
		"NADE": {Continent: "NA"},
	}
	f := New(lookup)
	f.SetDXContinent("EU", true)

	if !f.Matches(spot.Spot{DX: mustCall(t, "EUDX"), Spotter: mustCall(t, "NADE")}) {
		t.Fatalf("expected EU DX continent to pass")
	}
	if f.Matches(spot.Spot{DX: mustCall(t, "NADX"), Spotter: mustCall(t, "NADE")}) {
		t.Fatalf("expected non-matching DX continent to be rejected")
	}
	if f.Matches(spot.Spot{DX: mustCall(t, "UNKNOWN"), Spotter: mustCall(t, "NADE")}) {
		t.Fatalf("expected missing DX continent to be rejected when filter active")
	}
}

func TestZoneFilters(t *testing.T) {
	lookup := fakeLookup{
		"DX14": {CQZone: 14},
		"DX15": {CQZone: 15},
		"DE5":  {CQZone: 5},
	}
	f := New(lookup)
	f.SetDXZone(14, true)

	if !f.Matches(spot.Spot{DX: mustCall(t, "DX14"), Spotter: mustCall(t, "DE5")}) {
		t.Fatalf("expected matching DX zone to pass")
	}
	if f.Matches(spot.Spot{DX: mustCall(t, "DX15"), Spotter: mustCall(t, "DE5")}) {
		t.Fatalf("expected non-matching DX zone to be rejected")
	}
}

func TestGrid2WhitelistBlocksNonMatching(t *testing.T) {
	lookup := fakeLookup{
		"FNDX":  {Grid: "FN"},
		"KNDX":  {Grid: "KN44"},
		"ANYDE": {Grid: "KN"},
	}
	f := New(lookup)
	f.SetDXGrid2Prefix("FN05", true) // truncated to FN

	if !f.Matches(spot.Spot{DX: mustCall(t, "FNDX"), Spotter: mustCall(t, "ANYDE")}) {
		t.Fatalf("expected FN grid to pass when whitelisted")
	}
	if f.Matches(spot.Spot{DX: mustCall(t, "KNDX"), Spotter: mustCall(t, "ANYDE")}) {
		t.Fatalf("expected non-2-char grid of a non-whitelisted prefix to be rejected")
	}
}

func TestGrid2UnsetClearsWhitelist(t *testing.T) {
	f := New(nil)
	f.SetDXGrid2Prefix("FN", true)
	f.SetDXGrid2Prefix("KN", true)
	f.SetDXGrid2Prefix("KN", false)

	if f.AllDXGrid2 {
		t.Fatalf("expected DXGRID2 filter to remain active after removing one entry")
	}
	f.SetDXGrid2Prefix("FN", false)
	if !f.AllDXGrid2 {
		t.Fatalf("expected DXGRID2 filter to reset to ALL after removing last entry")
	}
}

func TestSummaryReportsAllByDefault(t *testing.T) {
	f := New(nil)
	got := f.Summary()
	want := "Filters: DX continents=ALL; DE continents=ALL; DX zones=ALL; DE zones=ALL; DX grids=ALL; DE grids=ALL"
	if got != want {
		t.Fatalf("Summary() = %q, want %q", got, want)
	}
}

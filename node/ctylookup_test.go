package node

import (
	"testing"

	"dxnode/cty"
)

func TestCTYLookupNilDatabaseReportsUnknown(t *testing.T) {
	lookup := NewCTYLookup(nil)
	_, ok := lookup.LookupMetadata("K1ABC")
	if ok {
		t.Fatal("expected a nil database to report every lookup as unknown")
	}
}

func TestCTYLookupEmptyDatabaseReportsUnknown(t *testing.T) {
	db := &cty.CTYDatabase{}
	lookup := NewCTYLookup(db)
	// An empty database has no entries; this exercises the adapter's
	// not-found path without needing a real CTY file.
	_, ok := lookup.LookupMetadata("K1ABC")
	if ok {
		t.Fatal("expected an empty database to report every lookup as unknown")
	}
}

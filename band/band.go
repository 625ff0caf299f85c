// Package band classifies a frequency into an amateur-radio band label.
// This supplements the domain primitives spec.md treats as external
// collaborators; it is used only for display and status, never for core
// routing decisions.
package band

import "dxnode/freq"

type definition struct {
	label string
	lowHz uint64
	highHz uint64
}

// table mirrors the original dxcluster-types band table, cross-checked
// against the community ka9q/ubersdr frequencyToBand helper found in the
// retrieval pack.
var table = []definition{
	{"160m", 1_800_000, 2_000_000},
	{"80m", 3_500_000, 4_000_000},
	{"60m", 5_351_500, 5_366_500},
	{"40m", 7_000_000, 7_300_000},
	{"30m", 10_100_000, 10_150_000},
	{"20m", 14_000_000, 14_350_000},
	{"17m", 18_068_000, 18_168_000},
	{"15m", 21_000_000, 21_450_000},
	{"12m", 24_890_000, 24_990_000},
	{"10m", 28_000_000, 29_700_000},
	{"6m", 50_000_000, 54_000_000},
	{"2m", 144_000_000, 148_000_000},
	{"1.25m", 222_000_000, 225_000_000},
	{"70cm", 420_000_000, 450_000_000},
}

// Label returns the amateur band label for a frequency, or "" when the
// frequency falls outside every known allocation.
func Label(f freq.FrequencyHz) string {
	hz := uint64(f)
	for _, d := range table {
		if hz >= d.lowHz && hz <= d.highHz {
			return d.label
		}
	}
	return ""
}

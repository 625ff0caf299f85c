package wire

import (
	"testing"
	"time"

	"dxnode/callsign"
	"dxnode/freq"
	"dxnode/spot"
)

func TestFormatSpotLine(t *testing.T) {
	dx, _ := callsign.ParseLoose("VP8ABC")
	de, _ := callsign.ParseLoose("W1AW")
	s := spot.Spot{
		DX:      dx,
		Spotter: de,
		Freq:    freq.FrequencyHz(14_074_000),
		Comment: "59 up 2",
		Time:    time.Unix(1_700_000_000, 0).UTC(),
	}
	got := FormatSpotLine(s)
	want := "DX de W1AW: 14074 VP8ABC 59 up 2"
	if got != want {
		t.Fatalf("FormatSpotLine() = %q, want %q", got, want)
	}
}

func TestFormatSpotLineNoComment(t *testing.T) {
	dx, _ := callsign.ParseLoose("VP8ABC")
	de, _ := callsign.ParseLoose("W1AW")
	s := spot.Spot{DX: dx, Spotter: de, Freq: freq.FrequencyHz(14_074_500)}
	got := FormatSpotLine(s)
	want := "DX de W1AW: 14074.500 VP8ABC"
	if got != want {
		t.Fatalf("FormatSpotLine() = %q, want %q", got, want)
	}
}

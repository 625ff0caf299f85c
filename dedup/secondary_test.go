package dedup

import (
	"testing"
	"time"

	"dxnode/callsign"
	"dxnode/freq"
	"dxnode/spot"
)

func mustCall(t *testing.T, s string) callsign.Callsign {
	t.Helper()
	c, err := callsign.ParseLoose(s)
	if err != nil {
		t.Fatalf("ParseLoose(%q): %v", s, err)
	}
	return c
}

func TestSecondaryDeduperSplitsBySourceClass(t *testing.T) {
	d := NewSecondaryDeduper(time.Minute, false)
	now := time.Unix(1_700_000_000, 0).UTC()

	makeSpot := func(at time.Time) spot.Spot {
		return spot.Spot{
			DX:      mustCall(t, "K1ABC"),
			Spotter: mustCall(t, "W1XYZ"),
			Freq:    freq.FrequencyHz(14_074_000),
			Time:    at,
		}
	}

	if !d.ShouldForward(makeSpot(now), "peer-a") {
		t.Fatal("expected first observation from peer-a to pass")
	}
	if !d.ShouldForward(makeSpot(now), "peer-b") {
		t.Fatal("expected same spot from a different source class to pass")
	}
	if d.ShouldForward(makeSpot(now.Add(10*time.Second)), "peer-a") {
		t.Fatal("expected peer-a duplicate to be suppressed within window")
	}
	if d.ShouldForward(makeSpot(now.Add(10*time.Second)), "peer-b") {
		t.Fatal("expected peer-b duplicate to be suppressed within window")
	}
}

func TestSecondaryDeduperCollapsesClassesWhenConfigured(t *testing.T) {
	d := NewSecondaryDeduper(time.Minute, true)
	now := time.Unix(1_700_000_000, 0).UTC()
	s := spot.Spot{DX: mustCall(t, "K1ABC"), Freq: freq.FrequencyHz(14_074_000), Time: now}

	if !d.ShouldForward(s, "peer-a") {
		t.Fatal("expected first observation to pass")
	}
	if d.ShouldForward(s, "peer-b") {
		t.Fatal("expected collapsed-class duplicate from a different peer to be suppressed")
	}
}

func TestSecondaryDeduperAllowsAfterWindow(t *testing.T) {
	d := NewSecondaryDeduper(5*time.Second, false)
	now := time.Unix(1_700_000_000, 0).UTC()
	s := spot.Spot{DX: mustCall(t, "K1ABC"), Freq: freq.FrequencyHz(14_074_000), Time: now}

	d.ShouldForward(s, "peer-a")
	later := s
	later.Time = now.Add(10 * time.Second)
	if !d.ShouldForward(later, "peer-a") {
		t.Fatal("expected observation outside the window to pass")
	}
}

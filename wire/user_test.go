package wire

import "testing"

func TestParseCommandDX(t *testing.T) {
	c, err := ParseCommand("DX VP8ABC 14074.0 loud and clear")
	if err != nil {
		t.Fatalf("ParseCommand: %v", err)
	}
	if c.Kind != CmdDX || c.DXCall != "VP8ABC" || c.FreqKHz != "14074.0" || c.Comment != "loud and clear" {
		t.Fatalf("unexpected parse: %+v", c)
	}
}

func TestParseCommandDXMissingFrequency(t *testing.T) {
	if _, err := ParseCommand("DX VP8ABC"); err == nil {
		t.Fatal("expected missing-frequency error")
	}
}

func TestParseCommandDXMissingCallsign(t *testing.T) {
	if _, err := ParseCommand("DX"); err == nil {
		t.Fatal("expected missing-callsign error")
	}
}

func TestParseCommandCaseInsensitiveKeywords(t *testing.T) {
	for _, line := range []string{"sh/dx", "Sh/Dx", "SH/DX"} {
		c, err := ParseCommand(line)
		if err != nil || c.Kind != CmdShowDX {
			t.Fatalf("ParseCommand(%q) = %+v, %v", line, c, err)
		}
	}
}

func TestParseCommandShowFiltersAliases(t *testing.T) {
	for _, line := range []string{"SH/FILTERS", "SHOW/FILTERS", "show/filters"} {
		c, err := ParseCommand(line)
		if err != nil || c.Kind != CmdShowFilters {
			t.Fatalf("ParseCommand(%q) = %+v, %v", line, c, err)
		}
	}
}

func TestParseCommandPingAliases(t *testing.T) {
	for _, line := range []string{"PING", "HEARTBEAT", "heartbeat"} {
		c, err := ParseCommand(line)
		if err != nil || c.Kind != CmdPing {
			t.Fatalf("ParseCommand(%q) = %+v, %v", line, c, err)
		}
	}
}

func TestParseCommandUnknownFallsBackToRaw(t *testing.T) {
	c, err := ParseCommand("HELP")
	if err != nil {
		t.Fatalf("ParseCommand: %v", err)
	}
	if c.Kind != CmdRaw || c.RawLine != "HELP" {
		t.Fatalf("unexpected raw command: %+v", c)
	}
}

func TestParseCommandRejectsEmptyLine(t *testing.T) {
	if _, err := ParseCommand("   "); err == nil {
		t.Fatal("expected error for empty line")
	}
}

func TestUserCommandRoundTrip(t *testing.T) {
	lines := []string{
		"DX VP8ABC 14074.0 loud and clear",
		"SH/DX",
		"SH/FILTERS",
		"PING",
	}
	for _, line := range lines {
		c, err := ParseCommand(line)
		if err != nil {
			t.Fatalf("ParseCommand(%q): %v", line, err)
		}
		again, err := ParseCommand(FormatCommand(c))
		if err != nil {
			t.Fatalf("re-parse of formatted %q: %v", line, err)
		}
		if again != c {
			t.Fatalf("round-trip mismatch for %q: %+v != %+v", line, again, c)
		}
	}
}

func TestFormatBannerAndPrompt(t *testing.T) {
	if got := FormatBanner("N2WQ-1"); got != "Welcome to N2WQ-1 DX cluster" {
		t.Fatalf("unexpected banner: %q", got)
	}
	if got := FormatPrompt(); got != ">" {
		t.Fatalf("unexpected prompt: %q", got)
	}
}

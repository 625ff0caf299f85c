package wire

import (
	"dxnode/spot"
)

// FormatSpotLine renders a spot the way it is pushed to a user session:
// "DX de <spotter>: <freq_khz> <dx> <comment>".
func FormatSpotLine(s spot.Spot) string {
	line := "DX de " + s.Spotter.String() + ": " + s.Freq.ToKHzString() + " " + s.DX.String()
	if s.Comment != "" {
		line += " " + s.Comment
	}
	return line
}

package transcript

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// GenerateSRT renders the flat segment list as SRT subtitle cues: sequence
// number, timestamp range, one "[SPEAKER]: text" content line, blank
// separator. Segments are emitted in original order, 1-indexed. An empty
// segment list produces an empty string.
func GenerateSRT(t *Transcript) string {
	var lines []string

	for i, seg := range t.Segments {
		lines = append(lines,
			strconv.Itoa(i+1),
			FormatTimestamp(seg.Start)+" --> "+FormatTimestamp(seg.End),
			"["+speakerLabel(seg)+"]: "+strings.TrimSpace(seg.Text),
			"",
		)
	}

	return strings.Join(lines, "\n")
}

// FormatTimestamp renders seconds as an SRT timestamp, HH:MM:SS,mmm.
// Milliseconds are truncated, not rounded; downstream consumers depend on
// byte-identical output. Out-of-range values are formatted as-is.
func FormatTimestamp(seconds float64) string {
	hours := int(seconds) / 3600
	minutes := (int(seconds) % 3600) / 60
	secs := int(seconds) % 60
	millis := int(math.Mod(seconds, 1) * 1000)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

package transcript

import "strings"

// Format renders the human-readable transcript: a two-line header, then one
// block per maximal run of consecutive segments sharing a speaker label.
// Each block is a "[SPEAKER]:" line (with a leading newline separating
// blocks) followed by the space-joined trimmed texts of the run, with
// interjection segments wrapped in asterisks. This view is lossy by design;
// the JSON export is the faithful record.
func Format(t *Transcript) string {
	lines := []string{"TRANSCRIPT WITH SPEAKER DIARIZATION", strings.Repeat("=", 50), ""}

	currentSpeaker := ""
	var speakerText []string

	for _, seg := range t.Segments {
		speaker := speakerLabel(seg)
		text := strings.TrimSpace(seg.Text)

		if seg.Interjection {
			text = "*" + text + "*"
		}

		if speaker != currentSpeaker {
			// First segment never flushes: there is no prior speaker yet.
			if currentSpeaker != "" && len(speakerText) > 0 {
				lines = append(lines, "\n["+currentSpeaker+"]:", strings.Join(speakerText, " "))
			}
			currentSpeaker = speaker
			speakerText = []string{text}
		} else {
			speakerText = append(speakerText, text)
		}
	}

	// Flush the final in-progress block.
	if currentSpeaker != "" && len(speakerText) > 0 {
		lines = append(lines, "\n["+currentSpeaker+"]:", strings.Join(speakerText, " "))
	}

	return strings.Join(lines, "\n")
}

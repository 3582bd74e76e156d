package transcript

// Segment is one timed utterance from the speech pipeline. Speaker is empty
// when diarization was not run or failed to assign one; exporters substitute
// "UNKNOWN". The post-processor mutates Text and sets Interjection but never
// touches Start, End or Speaker.
type Segment struct {
	Start        float64 `json:"start"`
	End          float64 `json:"end"`
	Speaker      string  `json:"speaker,omitempty"`
	Text         string  `json:"text"`
	Interjection bool    `json:"interjection,omitempty"`
}

// Transcript is the ordered segment list for one audio file. Language and
// Device are metadata tags only and play no part in the transformations.
type Transcript struct {
	Language string    `json:"language,omitempty"`
	Device   string    `json:"device,omitempty"`
	Segments []Segment `json:"segments"`
}

// UnknownSpeaker is the label used when a segment has no speaker assigned.
const UnknownSpeaker = "UNKNOWN"

// speakerLabel returns the segment's speaker or the unknown sentinel.
func speakerLabel(s Segment) string {
	if s.Speaker == "" {
		return UnknownSpeaker
	}
	return s.Speaker
}

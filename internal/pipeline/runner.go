package pipeline

import (
	"context"

	"github.com/speaker-diarize/backend/internal/transcript"
)

// Request is the input for one transcription run.
type Request struct {
	FilePath    string // absolute path to the uploaded audio file
	Model       string // whisper model size: "tiny", "base", "small", "medium", "large-v3"
	Language    string // language code, "" or "auto" for detection
	NumSpeakers int    // expected speaker count for diarization
}

// Runner obtains a raw transcript from a speech pipeline. The three
// implementations (HTTP inference server, subprocess CLI, canned demo) are
// interchangeable; callers pick one by name. A runner may return segments
// without speaker labels when diarization is unavailable — downstream code
// degrades to UNKNOWN rather than failing.
type Runner interface {
	// Run transcribes the audio and reports coarse progress in [0,1].
	Run(ctx context.Context, req Request, update ProgressFunc) (*transcript.Transcript, error)
	// Name returns the engine name used in job params.
	Name() string
}

// ProgressFunc receives progress in [0,1] and a short human-readable message.
type ProgressFunc func(progress float64, message string)

package pipeline

import (
	"context"
	"time"

	"github.com/speaker-diarize/backend/internal/transcript"
)

// DemoRunner simulates the pipeline with a canned two-speaker transcript.
// Useful for exercising the web interface without a GPU or inference server.
type DemoRunner struct {
	stepDelay time.Duration // pause between simulated stages, 0 in tests
}

// NewDemoRunner creates a demo runner that pauses stepDelay between stages.
func NewDemoRunner(stepDelay time.Duration) *DemoRunner {
	return &DemoRunner{stepDelay: stepDelay}
}

func (r *DemoRunner) Name() string {
	return "demo"
}

// Run walks the canned progress stages and returns the fixture transcript.
func (r *DemoRunner) Run(ctx context.Context, req Request, update ProgressFunc) (*transcript.Transcript, error) {
	stages := []struct {
		progress float64
		message  string
	}{
		{0.1, "Initializing..."},
		{0.3, "Loading audio file..."},
		{0.6, "Transcribing with Whisper..."},
		{0.8, "Identifying speakers..."},
	}

	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		update(stage.progress, stage.message)
		if r.stepDelay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(r.stepDelay):
			}
		}
	}

	return &transcript.Transcript{
		Language: "en",
		Device:   "cpu",
		Segments: []transcript.Segment{
			{Start: 0.0, End: 5.0, Speaker: "SPEAKER_01", Text: "This is a demonstration of the speaker diarization pipeline."},
			{Start: 5.0, End: 8.0, Speaker: "SPEAKER_02", Text: "The system would normally identify who is speaking when."},
			{Start: 8.0, End: 12.0, Speaker: "SPEAKER_01", Text: "In this demo, we're showing how the web interface works."},
			{Start: 12.0, End: 15.0, Speaker: "SPEAKER_02", Text: "The actual processing would use WhisperX and PyAnnote for real transcription."},
		},
	}, nil
}

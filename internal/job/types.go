package job

import (
	"context"
	"encoding/json"
	"time"

	"github.com/speaker-diarize/backend/internal/transcript"
)

// Status represents the current state of a job
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Job represents one queued transcription task
type Job struct {
	ID          string          `json:"id"`
	Status      Status          `json:"status"`
	FileName    string          `json:"file_name"` // original (sanitized) upload name
	FilePath    string          `json:"file_path"` // absolute path to the stored upload
	Params      json.RawMessage `json:"params"`
	Progress    float64         `json:"progress"` // 0..1
	Message     string          `json:"message,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	StartedAt   *time.Time      `json:"started_at,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// Params are the parameters for a transcription job
type Params struct {
	Engine        string `json:"engine"`         // "http", "subprocess", "demo"
	Model         string `json:"model"`          // "tiny", "base", "small", "medium", "large-v3"
	Language      string `json:"language"`       // "auto", "en", "ko", etc.
	NumSpeakers   int    `json:"num_speakers"`   // expected speaker count
	NoCorrections bool   `json:"no_corrections"` // skip the correction pass
}

// Result is the output of a successful transcription job
type Result struct {
	OutputFiles transcript.OutputFiles `json:"output_files"`
	Segments    int                    `json:"segments"`
	Speakers    int                    `json:"speakers"`
	Language    string                 `json:"language,omitempty"`
	Device      string                 `json:"device,omitempty"`
	Duration    float64                `json:"duration,omitempty"` // audio duration in seconds
}

// Handler processes a job. update reports progress in [0,1] plus a short
// status message persisted for polling clients.
type Handler func(ctx context.Context, job *Job, update func(progress float64, message string)) error

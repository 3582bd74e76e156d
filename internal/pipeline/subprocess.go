package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/speaker-diarize/backend/internal/transcript"
)

// SubprocessRunner shells out to the transcription CLI instead of calling an
// inference server. The command is expected to accept the audio path plus
// --whisper-model/--language/--num-speakers flags and write the segment JSON
// (same shape as the HTTP response) to the path given by --output-json.
type SubprocessRunner struct {
	command []string // e.g. ["python3", "transcribe_with_speakers.py"]
}

// NewSubprocessRunner creates a runner for the given command line. The
// command string is split on whitespace; the audio path and flags are
// appended per run.
func NewSubprocessRunner(command string) *SubprocessRunner {
	return &SubprocessRunner{command: strings.Fields(command)}
}

func (r *SubprocessRunner) Name() string {
	return "subprocess"
}

// Run invokes the CLI and parses the transcript it writes.
func (r *SubprocessRunner) Run(ctx context.Context, req Request, update ProgressFunc) (*transcript.Transcript, error) {
	if len(r.command) == 0 {
		return nil, fmt.Errorf("transcribe command not configured")
	}

	tmpFile, err := os.CreateTemp("", "transcript-*.json")
	if err != nil {
		return nil, fmt.Errorf("create temp output: %w", err)
	}
	tmpFile.Close()
	defer os.Remove(tmpFile.Name())

	args := append(append([]string{}, r.command[1:]...),
		req.FilePath,
		"--whisper-model", req.Model,
		"--num-speakers", strconv.Itoa(req.NumSpeakers),
		"--output-json", tmpFile.Name(),
	)
	if req.Language != "" && req.Language != "auto" {
		args = append(args, "--language", req.Language)
	}

	update(0.1, "Starting transcription process...")
	log.Printf("[pipeline] running %s %s", r.command[0], strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, r.command[0], args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("transcribe command: %s: %w", string(output), err)
	}

	update(0.85, "Reading transcription result...")

	data, err := os.ReadFile(tmpFile.Name())
	if err != nil {
		return nil, fmt.Errorf("read command output: %w", err)
	}

	var parsed transcribeResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse command output: %w", err)
	}

	return &transcript.Transcript{
		Language: parsed.Language,
		Device:   parsed.Device,
		Segments: parsed.Segments,
	}, nil
}

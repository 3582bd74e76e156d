package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/speaker-diarize/backend/internal/job"
	"github.com/speaker-diarize/backend/internal/media"
	"github.com/speaker-diarize/backend/internal/transcript"
)

// Service owns the registered pipeline runners and processes transcription
// jobs: run the selected engine, post-process the transcript, write the
// three export files, and record the result on the job.
type Service struct {
	runners    map[string]Runner
	outputPath string
	corrector  *transcript.Corrector
	device     string // fallback device tag when the engine doesn't report one
}

// NewService creates a pipeline service writing outputs under outputPath.
func NewService(outputPath string, corrector *transcript.Corrector, device string) *Service {
	return &Service{
		runners:    make(map[string]Runner),
		outputPath: outputPath,
		corrector:  corrector,
		device:     device,
	}
}

// Register adds a runner under its engine name.
func (s *Service) Register(r Runner) {
	s.runners[r.Name()] = r
	log.Printf("[pipeline] registered %s engine", r.Name())
}

// Engines returns the registered engine names.
func (s *Service) Engines() []string {
	names := make([]string, 0, len(s.runners))
	for name := range s.runners {
		names = append(names, name)
	}
	return names
}

// HasEngine reports whether an engine is registered.
func (s *Service) HasEngine(name string) bool {
	_, ok := s.runners[name]
	return ok
}

// HandleJob processes a transcription job end to end.
func (s *Service) HandleJob(ctx context.Context, j *job.Job, update func(float64, string)) error {
	var params job.Params
	if err := json.Unmarshal(j.Params, &params); err != nil {
		return fmt.Errorf("unmarshal params: %w", err)
	}

	runner, ok := s.runners[params.Engine]
	if !ok {
		return fmt.Errorf("unknown pipeline engine: %s (available: %v)", params.Engine, s.Engines())
	}

	if _, err := os.Stat(j.FilePath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", j.FilePath)
	}

	log.Printf("[pipeline] starting transcription: engine=%s file=%s model=%s speakers=%d",
		params.Engine, j.FileName, params.Model, params.NumSpeakers)

	// Audio duration is informational only; probe failures are not fatal.
	var duration float64
	if info, err := media.Probe(j.FilePath); err == nil {
		duration = info.Duration
	} else {
		log.Printf("[pipeline] probe failed for %s: %v", j.FileName, err)
	}

	t, err := runner.Run(ctx, Request{
		FilePath:    j.FilePath,
		Model:       params.Model,
		Language:    params.Language,
		NumSpeakers: params.NumSpeakers,
	}, update)
	if err != nil {
		return fmt.Errorf("transcribe: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if t.Device == "" {
		t.Device = s.device
	}

	// Post-processing is a single synchronous pass; once started it runs to
	// completion.
	if !params.NoCorrections {
		update(0.9, "Applying corrections...")
		s.corrector.Apply(t)
	}

	update(0.95, "Saving results...")

	base := strings.TrimSuffix(j.FileName, filepath.Ext(j.FileName))
	files, err := transcript.SaveOutputs(t, j.ID+"_"+base, s.outputPath)
	if err != nil {
		return fmt.Errorf("save outputs: %w", err)
	}

	speakers := make(map[string]struct{})
	for _, seg := range t.Segments {
		if seg.Speaker != "" {
			speakers[seg.Speaker] = struct{}{}
		}
	}

	resultJSON, _ := json.Marshal(job.Result{
		OutputFiles: *files,
		Segments:    len(t.Segments),
		Speakers:    len(speakers),
		Language:    t.Language,
		Device:      t.Device,
		Duration:    duration,
	})
	j.Result = resultJSON

	log.Printf("[pipeline] transcription complete: job=%s segments=%d speakers=%d",
		j.ID, len(t.Segments), len(speakers))
	return nil
}

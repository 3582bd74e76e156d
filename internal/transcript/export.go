package transcript

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Metadata is the processing envelope written alongside the segments in the
// JSON export.
type Metadata struct {
	ProcessedAt   string `json:"processed_at"`
	Device        string `json:"device"`
	TotalSegments int    `json:"total_segments"`
}

// Envelope is the top-level JSON export: metadata plus the flat, ungrouped
// segment list verbatim. This is the lossless machine-readable record.
type Envelope struct {
	Metadata Metadata  `json:"metadata"`
	Segments []Segment `json:"segments"`
}

// OutputFiles names the three artifacts written for one transcript.
type OutputFiles struct {
	Text string `json:"text"`
	JSON string `json:"json"`
	SRT  string `json:"srt"`
}

// MarshalEnvelope serializes the transcript with its metadata envelope,
// indented, without HTML escaping.
func MarshalEnvelope(t *Transcript, processedAt time.Time) ([]byte, error) {
	segments := t.Segments
	if segments == nil {
		segments = []Segment{}
	}
	env := Envelope{
		Metadata: Metadata{
			ProcessedAt:   processedAt.Format(time.RFC3339),
			Device:        t.Device,
			TotalSegments: len(segments),
		},
		Segments: segments,
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(env); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SaveOutputs writes the text, JSON and SRT exports for a transcript to
// outputDir (created if absent) as <baseName>.txt/.json/.srt. The three
// writes are independent: a failure part-way leaves whatever was already
// written, which is fine since nothing reads an in-progress job's output.
func SaveOutputs(t *Transcript, baseName, outputDir string) (*OutputFiles, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	files := &OutputFiles{
		Text: baseName + ".txt",
		JSON: baseName + ".json",
		SRT:  baseName + ".srt",
	}

	if err := os.WriteFile(filepath.Join(outputDir, files.Text), []byte(Format(t)), 0644); err != nil {
		return nil, fmt.Errorf("write text: %w", err)
	}

	data, err := MarshalEnvelope(t, time.Now())
	if err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}
	if err := os.WriteFile(filepath.Join(outputDir, files.JSON), data, 0644); err != nil {
		return nil, fmt.Errorf("write json: %w", err)
	}

	if err := os.WriteFile(filepath.Join(outputDir, files.SRT), []byte(GenerateSRT(t)), 0644); err != nil {
		return nil, fmt.Errorf("write srt: %w", err)
	}

	return files, nil
}

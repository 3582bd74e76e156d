package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/speaker-diarize/backend/internal/transcript"
)

// HTTPRunner talks to a WhisperX+pyannote inference server over HTTP. The
// server does model loading, alignment and diarization; this client only
// uploads audio and parses the segment list back.
type HTTPRunner struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPRunner creates a client for the inference server.
func NewHTTPRunner(baseURL string) *HTTPRunner {
	return &HTTPRunner{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Minute, // transcription can be very long
		},
	}
}

func (r *HTTPRunner) Name() string {
	return "http"
}

// transcribeResponse is the inference server's JSON payload.
type transcribeResponse struct {
	Language string               `json:"language"`
	Device   string               `json:"device"`
	Segments []transcript.Segment `json:"segments"`
}

// Run uploads the audio file and parses the transcript from the response.
func (r *HTTPRunner) Run(ctx context.Context, req Request, update ProgressFunc) (*transcript.Transcript, error) {
	update(0.05, "Uploading audio to inference server...")

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	audioFile, err := os.Open(req.FilePath)
	if err != nil {
		return nil, fmt.Errorf("open audio: %w", err)
	}
	defer audioFile.Close()

	part, err := writer.CreateFormFile("audio", filepath.Base(req.FilePath))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, audioFile); err != nil {
		return nil, fmt.Errorf("copy audio data: %w", err)
	}

	writer.WriteField("model", req.Model)
	writer.WriteField("num_speakers", strconv.Itoa(req.NumSpeakers))
	if req.Language != "" && req.Language != "auto" {
		writer.WriteField("language", req.Language)
	}
	writer.Close()

	url := r.baseURL + "/transcribe"
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	log.Printf("[pipeline] sending request to %s (audio: %s)", url, req.FilePath)
	update(0.15, "Running WhisperX transcription...")

	resp, err := r.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("inference server request: %w", err)
	}
	defer resp.Body.Close()

	update(0.85, "Reading transcription result...")

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inference server error (status %d): %s", resp.StatusCode, string(body))
	}

	var parsed transcribeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	return &transcript.Transcript{
		Language: parsed.Language,
		Device:   parsed.Device,
		Segments: parsed.Segments,
	}, nil
}

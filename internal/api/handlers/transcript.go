package handlers

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/speaker-diarize/backend/internal/job"
	"github.com/speaker-diarize/backend/internal/storage"
)

type TranscriptHandler struct {
	outputPath string
	queue      *job.Queue
}

func NewTranscriptHandler(outputPath string, queue *job.Queue) *TranscriptHandler {
	return &TranscriptHandler{outputPath: outputPath, queue: queue}
}

// completedResult loads a job and its result, enforcing completion.
func (h *TranscriptHandler) completedResult(w http.ResponseWriter, r *http.Request) (*job.Result, bool) {
	id := chi.URLParam(r, "id")
	if id == "" {
		jsonError(w, "missing job ID", http.StatusBadRequest)
		return nil, false
	}

	j, err := h.queue.GetJob(id)
	if err != nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return nil, false
	}
	if j.Status != job.StatusCompleted {
		jsonError(w, "processing not complete", http.StatusBadRequest)
		return nil, false
	}

	var result job.Result
	if err := json.Unmarshal(j.Result, &result); err != nil {
		jsonError(w, "job result unreadable", http.StatusInternalServerError)
		return nil, false
	}
	return &result, true
}

// GetTranscript returns the human-readable transcript of a completed job inline.
func (h *TranscriptHandler) GetTranscript(w http.ResponseWriter, r *http.Request) {
	result, ok := h.completedResult(w, r)
	if !ok {
		return
	}

	path, err := storage.ResolveWithin(h.outputPath, result.OutputFiles.Text)
	if err != nil {
		jsonError(w, "invalid path", http.StatusForbidden)
		return
	}
	content, err := os.ReadFile(path)
	if err != nil {
		jsonError(w, "transcript file not found", http.StatusNotFound)
		return
	}

	jsonResponse(w, map[string]string{
		"content":  string(content),
		"filename": result.OutputFiles.Text,
	}, http.StatusOK)
}

// Download serves one of the three export files as an attachment.
// Format is one of "text", "json", "srt".
func (h *TranscriptHandler) Download(w http.ResponseWriter, r *http.Request) {
	result, ok := h.completedResult(w, r)
	if !ok {
		return
	}

	var name, contentType string
	switch chi.URLParam(r, "format") {
	case "text":
		name, contentType = result.OutputFiles.Text, "text/plain; charset=utf-8"
	case "json":
		name, contentType = result.OutputFiles.JSON, "application/json"
	case "srt":
		name, contentType = result.OutputFiles.SRT, "application/x-subrip"
	default:
		jsonError(w, "invalid file type", http.StatusBadRequest)
		return
	}

	path, err := storage.ResolveWithin(h.outputPath, name)
	if err != nil {
		jsonError(w, "invalid path", http.StatusForbidden)
		return
	}
	if _, err := os.Stat(path); err != nil {
		jsonError(w, "file not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	http.ServeFile(w, r, path)
}

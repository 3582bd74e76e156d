package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/speaker-diarize/backend/internal/job"
	"github.com/speaker-diarize/backend/internal/pipeline"
	"github.com/speaker-diarize/backend/internal/storage"
)

type UploadHandler struct {
	uploadPath    string
	maxBytes      int64
	defaultEngine string
	queue         *job.Queue
	service       *pipeline.Service
}

func NewUploadHandler(uploadPath string, maxUploadMB int64, defaultEngine string, queue *job.Queue, service *pipeline.Service) *UploadHandler {
	return &UploadHandler{
		uploadPath:    uploadPath,
		maxBytes:      maxUploadMB * 1024 * 1024,
		defaultEngine: defaultEngine,
		queue:         queue,
		service:       service,
	}
}

// Upload accepts a multipart audio file plus processing parameters, stores
// the file and enqueues a transcription job.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	file, header, err := r.FormFile("audio")
	if err != nil {
		jsonError(w, "no file provided", http.StatusBadRequest)
		return
	}
	defer file.Close()

	name := storage.SafeFileName(header.Filename)
	if name == "" {
		jsonError(w, "no file selected", http.StatusBadRequest)
		return
	}
	if !storage.IsAudioFile(name) {
		jsonError(w, fmt.Sprintf("invalid file type. Allowed: %s", strings.Join(storage.AudioExtensions(), ", ")), http.StatusBadRequest)
		return
	}

	params := h.parseParams(r)
	if !h.service.HasEngine(params.Engine) {
		jsonError(w, fmt.Sprintf("unknown engine %q (available: %v)", params.Engine, h.service.Engines()), http.StatusBadRequest)
		return
	}

	if err := os.MkdirAll(h.uploadPath, 0755); err != nil {
		jsonError(w, "failed to store upload", http.StatusInternalServerError)
		return
	}

	// Timestamp prefix keeps repeated uploads of the same file distinct.
	stored := fmt.Sprintf("%s_%s", time.Now().Format("20060102_150405"), name)
	dstPath := filepath.Join(h.uploadPath, stored)
	dst, err := os.Create(dstPath)
	if err != nil {
		jsonError(w, "failed to store upload", http.StatusInternalServerError)
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		os.Remove(dstPath)
		jsonError(w, "failed to store upload", http.StatusInternalServerError)
		return
	}
	dst.Close()

	j, err := h.queue.Enqueue(name, dstPath, params)
	if err != nil {
		os.Remove(dstPath)
		jsonError(w, "failed to enqueue job: "+err.Error(), http.StatusInternalServerError)
		return
	}

	jsonResponse(w, map[string]string{
		"job_id":   j.ID,
		"message":  "Processing started",
		"filename": name,
	}, http.StatusAccepted)
}

func (h *UploadHandler) parseParams(r *http.Request) job.Params {
	params := job.Params{
		Engine:      formValue(r, "engine", h.defaultEngine),
		Model:       formValue(r, "model", "base"),
		Language:    formValue(r, "language", "en"),
		NumSpeakers: 2,
	}
	if v, err := strconv.Atoi(r.FormValue("speakers")); err == nil && v > 0 {
		params.NumSpeakers = v
	}
	if r.FormValue("corrections") == "false" {
		params.NoCorrections = true
	}
	return params
}

func formValue(r *http.Request, key, fallback string) string {
	if v := r.FormValue(key); v != "" {
		return v
	}
	return fallback
}

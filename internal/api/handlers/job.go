package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/speaker-diarize/backend/internal/job"
)

type JobHandler struct {
	queue *job.Queue
}

func NewJobHandler(queue *job.Queue) *JobHandler {
	return &JobHandler{queue: queue}
}

// statusResponse is the polling payload. Progress is surfaced as a 0-100
// percentage, matching what the front-end progress bar expects.
type statusResponse struct {
	ID          string          `json:"id"`
	Status      job.Status      `json:"status"`
	Progress    int             `json:"progress"`
	Message     string          `json:"message,omitempty"`
	FileName    string          `json:"file_name"`
	Result      json.RawMessage `json:"result,omitempty"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	StartedAt   *time.Time      `json:"started_at,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

func toStatus(j *job.Job) statusResponse {
	return statusResponse{
		ID:          j.ID,
		Status:      j.Status,
		Progress:    int(j.Progress * 100),
		Message:     j.Message,
		FileName:    j.FileName,
		Result:      j.Result,
		Error:       j.Error,
		CreatedAt:   j.CreatedAt,
		StartedAt:   j.StartedAt,
		CompletedAt: j.CompletedAt,
	}
}

// ListJobs returns all jobs, newest first
func (h *JobHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.queue.ListJobs()
	if err != nil {
		jsonError(w, "failed to list jobs: "+err.Error(), http.StatusInternalServerError)
		return
	}
	resp := make([]statusResponse, 0, len(jobs))
	for _, j := range jobs {
		resp = append(resp, toStatus(j))
	}
	jsonResponse(w, resp, http.StatusOK)
}

// GetJob returns a single job's status by ID
func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		jsonError(w, "missing job ID", http.StatusBadRequest)
		return
	}

	j, err := h.queue.GetJob(id)
	if err != nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}

	jsonResponse(w, toStatus(j), http.StatusOK)
}

// CancelJob cancels a pending or running job
func (h *JobHandler) CancelJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		jsonError(w, "missing job ID", http.StatusBadRequest)
		return
	}

	if err := h.queue.CancelJob(id); err != nil {
		jsonError(w, "failed to cancel job: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RetryJob re-queues a failed or cancelled job
func (h *JobHandler) RetryJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		jsonError(w, "missing job ID", http.StatusBadRequest)
		return
	}

	if err := h.queue.RetryJob(id); err != nil {
		jsonError(w, "failed to retry job: "+err.Error(), http.StatusBadRequest)
		return
	}

	jsonResponse(w, map[string]string{"status": "retrying"}, http.StatusOK)
}

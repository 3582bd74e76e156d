package job

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Queue manages job persistence and dispatching. Jobs run on a fixed pool of
// workers; each job exclusively owns its upload, transcript and output files,
// so workers need no coordination beyond the jobs table itself.
type Queue struct {
	db      *sql.DB
	mu      sync.RWMutex
	pending chan string // job IDs to process
	cancels map[string]context.CancelFunc
	handler Handler
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewQueue creates and starts a queue with the given number of workers.
func NewQueue(db *sql.DB, workers int) *Queue {
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		db:      db,
		pending: make(chan string, 100),
		cancels: make(map[string]context.CancelFunc),
		ctx:     ctx,
		cancel:  cancel,
	}

	// Resume any pending/running jobs from DB on startup
	go q.resumeJobs()

	for i := 0; i < workers; i++ {
		go q.worker()
	}

	return q
}

// SetHandler registers the job handler. Must be called before jobs run.
func (q *Queue) SetHandler(handler Handler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handler = handler
}

// Enqueue creates a new job and adds it to the queue
func (q *Queue) Enqueue(fileName, filePath string, params Params) (*Job, error) {
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshal params: %w", err)
	}

	j := &Job{
		ID:        uuid.New().String(),
		Status:    StatusPending,
		FileName:  fileName,
		FilePath:  filePath,
		Params:    paramsJSON,
		Progress:  0,
		Message:   "Queued",
		CreatedAt: time.Now(),
	}

	_, err = q.db.Exec(`
		INSERT INTO jobs (id, status, file_name, file_path, params, progress, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		j.ID, j.Status, j.FileName, j.FilePath, j.Params, j.Progress, j.Message, j.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}

	select {
	case q.pending <- j.ID:
	default:
		log.Printf("[job] queue full, job %s will be picked up on next restart", j.ID)
	}

	return j, nil
}

// GetJob retrieves a job by ID
func (q *Queue) GetJob(id string) (*Job, error) {
	row := q.db.QueryRow(`
		SELECT id, status, file_name, file_path, params, progress, message, result, error, created_at, started_at, completed_at
		FROM jobs WHERE id = ?`, id)
	return scanJob(row)
}

// ListJobs returns all jobs ordered by creation time (newest first)
func (q *Queue) ListJobs() ([]*Job, error) {
	rows, err := q.db.Query(`
		SELECT id, status, file_name, file_path, params, progress, message, result, error, created_at, started_at, completed_at
		FROM jobs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row rowScanner) (*Job, error) {
	j := &Job{}
	var params, result, message, errMsg sql.NullString
	var startedAt, completedAt sql.NullTime

	err := row.Scan(&j.ID, &j.Status, &j.FileName, &j.FilePath, &params, &j.Progress,
		&message, &result, &errMsg, &j.CreatedAt, &startedAt, &completedAt)
	if err != nil {
		return nil, err
	}

	if params.Valid {
		j.Params = json.RawMessage(params.String)
	}
	if result.Valid {
		j.Result = json.RawMessage(result.String)
	}
	if message.Valid {
		j.Message = message.String
	}
	if errMsg.Valid {
		j.Error = errMsg.String
	}
	if startedAt.Valid {
		j.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		j.CompletedAt = &completedAt.Time
	}

	return j, nil
}

// CancelJob cancels a pending or running job
func (q *Queue) CancelJob(id string) error {
	q.mu.Lock()
	if cancelFn, ok := q.cancels[id]; ok {
		cancelFn()
		delete(q.cancels, id)
	}
	q.mu.Unlock()

	_, err := q.db.Exec(`
		UPDATE jobs SET status = ?, message = ?, completed_at = ?
		WHERE id = ? AND status IN (?, ?)`,
		StatusCancelled, "Cancelled", time.Now(), id, StatusPending, StatusRunning,
	)
	return err
}

// RetryJob re-queues a failed or cancelled job
func (q *Queue) RetryJob(id string) error {
	res, err := q.db.Exec(`
		UPDATE jobs SET status = ?, progress = 0, message = ?, error = '', result = NULL, started_at = NULL, completed_at = NULL
		WHERE id = ? AND status IN (?, ?)`,
		StatusPending, "Queued", id, StatusFailed, StatusCancelled,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("job %s is not failed or cancelled", id)
	}

	select {
	case q.pending <- id:
	default:
	}
	return nil
}

// UpdateProgress updates the progress and status message of a running job.
// Updates are dropped once the job leaves the running state, so a cancelled
// job keeps its "Cancelled" message even if the handler is still winding down.
func (q *Queue) UpdateProgress(id string, progress float64, message string) {
	if message != "" {
		q.db.Exec("UPDATE jobs SET progress = ?, message = ? WHERE id = ? AND status = ?",
			progress, message, id, StatusRunning)
		return
	}
	q.db.Exec("UPDATE jobs SET progress = ? WHERE id = ? AND status = ?", progress, id, StatusRunning)
}

// Stop shuts down the queue
func (q *Queue) Stop() {
	q.cancel()
}

// worker processes jobs from the pending channel
func (q *Queue) worker() {
	for {
		select {
		case <-q.ctx.Done():
			return
		case jobID := <-q.pending:
			q.processJob(jobID)
		}
	}
}

// processJob runs a single job
func (q *Queue) processJob(jobID string) {
	j, err := q.GetJob(jobID)
	if err != nil {
		log.Printf("[job] failed to load job %s: %v", jobID, err)
		return
	}

	// Skip if not pending (cancelled while queued, or already claimed)
	if j.Status != StatusPending {
		return
	}

	q.mu.RLock()
	handler := q.handler
	q.mu.RUnlock()
	if handler == nil {
		q.failJob(j, "no job handler registered")
		return
	}

	// Claim the job. Cancel/retry can leave duplicate IDs in the pending
	// channel, so the pending->running transition must be atomic; a worker
	// that loses the claim drops the ID.
	now := time.Now()
	res, err := q.db.Exec("UPDATE jobs SET status = ?, started_at = ?, message = ? WHERE id = ? AND status = ?",
		StatusRunning, now, "Initializing...", j.ID, StatusPending)
	if err != nil {
		log.Printf("[job] failed to claim job %s: %v", j.ID, err)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return
	}
	j.StartedAt = &now
	j.Status = StatusRunning

	ctx, cancelFn := context.WithCancel(q.ctx)
	q.mu.Lock()
	q.cancels[j.ID] = cancelFn
	q.mu.Unlock()

	update := func(progress float64, message string) {
		q.UpdateProgress(j.ID, progress, message)
	}

	done := make(chan error, 1)
	go func() {
		done <- handler(ctx, j, update)
	}()

	select {
	case <-ctx.Done():
		log.Printf("[job] job %s cancelled", j.ID)
	case err := <-done:
		if err != nil {
			q.failJob(j, err.Error())
		} else {
			q.completeJob(j)
		}
	}

	q.mu.Lock()
	delete(q.cancels, j.ID)
	q.mu.Unlock()
	cancelFn()
}

func (q *Queue) completeJob(j *Job) {
	now := time.Now()
	q.db.Exec("UPDATE jobs SET status = ?, progress = 1.0, message = ?, result = ?, completed_at = ? WHERE id = ?",
		StatusCompleted, "Processing complete!", string(j.Result), now, j.ID)
	log.Printf("[job] job %s completed", j.ID)
}

func (q *Queue) failJob(j *Job, errMsg string) {
	now := time.Now()
	q.db.Exec("UPDATE jobs SET status = ?, message = ?, error = ?, completed_at = ? WHERE id = ?",
		StatusFailed, "Error: "+errMsg, errMsg, now, j.ID)
	log.Printf("[job] job %s failed: %s", j.ID, errMsg)
}

// resumeJobs re-queues any pending jobs found in DB on startup
func (q *Queue) resumeJobs() {
	// Mark any previously "running" jobs as pending (server restarted)
	q.db.Exec("UPDATE jobs SET status = ? WHERE status = ?", StatusPending, StatusRunning)

	rows, err := q.db.Query("SELECT id FROM jobs WHERE status = ? ORDER BY created_at ASC", StatusPending)
	if err != nil {
		log.Printf("[job] failed to resume jobs: %v", err)
		return
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			continue
		}
		select {
		case q.pending <- id:
			count++
		default:
		}
	}

	if count > 0 {
		log.Printf("[job] resumed %d pending jobs", count)
	}
}

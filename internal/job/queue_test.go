package job

import (
	"context"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "jobs.db")+"?_busy_timeout=5000")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	_, err = db.Exec(`
		CREATE TABLE jobs (
			id TEXT PRIMARY KEY,
			status TEXT NOT NULL DEFAULT 'pending',
			file_name TEXT NOT NULL,
			file_path TEXT NOT NULL,
			params TEXT NOT NULL,
			progress REAL DEFAULT 0,
			message TEXT,
			result TEXT,
			error TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			started_at DATETIME,
			completed_at DATETIME
		)`)
	if err != nil {
		t.Fatalf("create schema: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func insertJob(t *testing.T, db *sql.DB, id string, status Status) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO jobs (id, status, file_name, file_path, params, progress, message, created_at)
		VALUES (?, ?, 'talk.mp3', '/data/uploads/talk.mp3', '{}', 0, 'Queued', ?)`,
		id, status, time.Now())
	if err != nil {
		t.Fatalf("insert job: %v", err)
	}
}

// bareQueue builds a queue without starting workers or the resume pass, for
// tests that drive processJob and friends directly.
func bareQueue(db *sql.DB) *Queue {
	ctx, cancel := context.WithCancel(context.Background())
	return &Queue{
		db:      db,
		pending: make(chan string, 10),
		cancels: make(map[string]context.CancelFunc),
		ctx:     ctx,
		cancel:  cancel,
	}
}

func waitStatus(t *testing.T, q *Queue, id string, want Status) *Job {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		j, err := q.GetJob(id)
		if err != nil {
			t.Fatalf("get job: %v", err)
		}
		if j.Status == want {
			return j
		}
		time.Sleep(10 * time.Millisecond)
	}
	last := Status("unknown")
	if j, err := q.GetJob(id); err == nil {
		last = j.Status
	}
	t.Fatalf("job %s never reached %s (last status %s)", id, want, last)
	return nil
}

func TestQueue_EnqueueProcessComplete(t *testing.T) {
	db := newTestDB(t)
	q := NewQueue(db, 1)
	defer q.Stop()

	q.SetHandler(func(ctx context.Context, j *Job, update func(float64, string)) error {
		update(0.5, "Transcribing...")
		j.Result = json.RawMessage(`{"segments":4,"speakers":2}`)
		return nil
	})

	j, err := q.Enqueue("talk.mp3", "/data/uploads/talk.mp3", Params{Engine: "demo", Model: "base", NumSpeakers: 2})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if j.Status != StatusPending || j.ID == "" {
		t.Fatalf("unexpected enqueued job: %+v", j)
	}

	done := waitStatus(t, q, j.ID, StatusCompleted)
	if done.Progress != 1.0 {
		t.Fatalf("expected progress 1.0, got %v", done.Progress)
	}
	if done.StartedAt == nil || done.CompletedAt == nil {
		t.Fatalf("expected started/completed timestamps, got %+v", done)
	}
	var result map[string]int
	if err := json.Unmarshal(done.Result, &result); err != nil {
		t.Fatalf("result not preserved: %v", err)
	}
	if result["segments"] != 4 || result["speakers"] != 2 {
		t.Fatalf("unexpected result %v", result)
	}
}

func TestQueue_FailedJobRecordsError(t *testing.T) {
	db := newTestDB(t)
	q := bareQueue(db)
	q.SetHandler(func(ctx context.Context, j *Job, update func(float64, string)) error {
		return context.DeadlineExceeded
	})

	insertJob(t, db, "job-fail", StatusPending)
	q.processJob("job-fail")

	j, err := q.GetJob("job-fail")
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if j.Status != StatusFailed {
		t.Fatalf("expected failed, got %s", j.Status)
	}
	if j.Error == "" || j.CompletedAt == nil {
		t.Fatalf("expected error and completion timestamp, got %+v", j)
	}
}

func TestQueue_CancelQueuedJob(t *testing.T) {
	db := newTestDB(t)
	q := bareQueue(db)

	insertJob(t, db, "job-queued", StatusPending)
	if err := q.CancelJob("job-queued"); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	j, err := q.GetJob("job-queued")
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if j.Status != StatusCancelled {
		t.Fatalf("expected cancelled, got %s", j.Status)
	}
	if j.Message != "Cancelled" || j.CompletedAt == nil {
		t.Fatalf("expected cancel bookkeeping, got %+v", j)
	}

	// A cancelled queued job must not be claimable.
	q.SetHandler(func(ctx context.Context, j *Job, update func(float64, string)) error {
		t.Error("handler ran for a cancelled job")
		return nil
	})
	q.processJob("job-queued")
}

func TestQueue_CancelLeavesFinishedJobsAlone(t *testing.T) {
	db := newTestDB(t)
	q := bareQueue(db)

	insertJob(t, db, "job-done", StatusCompleted)
	if err := q.CancelJob("job-done"); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	j, _ := q.GetJob("job-done")
	if j.Status != StatusCompleted {
		t.Fatalf("completed job flipped to %s", j.Status)
	}
}

func TestQueue_RetryOnlyFailedOrCancelled(t *testing.T) {
	db := newTestDB(t)
	q := bareQueue(db)

	insertJob(t, db, "job-completed", StatusCompleted)
	insertJob(t, db, "job-running", StatusRunning)
	insertJob(t, db, "job-failed", StatusFailed)
	insertJob(t, db, "job-cancelled", StatusCancelled)

	if err := q.RetryJob("job-completed"); err == nil {
		t.Fatal("expected error retrying a completed job")
	}
	if err := q.RetryJob("job-running"); err == nil {
		t.Fatal("expected error retrying a running job")
	}

	for _, id := range []string{"job-failed", "job-cancelled"} {
		if err := q.RetryJob(id); err != nil {
			t.Fatalf("retry %s: %v", id, err)
		}
		j, _ := q.GetJob(id)
		if j.Status != StatusPending {
			t.Fatalf("%s: expected pending, got %s", id, j.Status)
		}
		if j.Progress != 0 || j.Error != "" || j.StartedAt != nil || j.CompletedAt != nil {
			t.Fatalf("%s: retry did not reset bookkeeping: %+v", id, j)
		}
	}
	if len(q.pending) != 2 {
		t.Fatalf("expected 2 re-queued IDs, got %d", len(q.pending))
	}
}

func TestQueue_ResumeRequeuesInterruptedJobs(t *testing.T) {
	db := newTestDB(t)
	q := bareQueue(db)

	// A restart leaves behind jobs in both states; "running" ones were
	// interrupted mid-flight and must go back to pending.
	insertJob(t, db, "job-was-running", StatusRunning)
	insertJob(t, db, "job-was-pending", StatusPending)
	insertJob(t, db, "job-old-done", StatusCompleted)

	q.resumeJobs()

	j, _ := q.GetJob("job-was-running")
	if j.Status != StatusPending {
		t.Fatalf("interrupted job not re-marked pending: %s", j.Status)
	}
	if len(q.pending) != 2 {
		t.Fatalf("expected 2 resumed IDs, got %d", len(q.pending))
	}
	j, _ = q.GetJob("job-old-done")
	if j.Status != StatusCompleted {
		t.Fatalf("finished job disturbed by resume: %s", j.Status)
	}
}

func TestQueue_ClaimIsExclusive(t *testing.T) {
	db := newTestDB(t)
	q := bareQueue(db)

	var calls int32
	q.SetHandler(func(ctx context.Context, j *Job, update func(float64, string)) error {
		atomic.AddInt32(&calls, 1)
		time.Sleep(50 * time.Millisecond)
		return nil
	})

	insertJob(t, db, "job-dup", StatusPending)

	// Cancel+retry of a queued job can put its ID in front of two workers at
	// once; only one may win the pending->running claim.
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.processJob("job-dup")
		}()
	}
	wg.Wait()

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("handler ran %d times, want 1", n)
	}
	j, _ := q.GetJob("job-dup")
	if j.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", j.Status)
	}
}

func TestQueue_ProgressIgnoredAfterCancel(t *testing.T) {
	db := newTestDB(t)
	q := bareQueue(db)

	insertJob(t, db, "job-late", StatusRunning)
	if err := q.CancelJob("job-late"); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	// A handler still winding down reports progress after the cancel; the
	// cancelled state and message must survive it.
	q.UpdateProgress("job-late", 0.7, "Applying corrections...")

	j, _ := q.GetJob("job-late")
	if j.Status != StatusCancelled {
		t.Fatalf("expected cancelled, got %s", j.Status)
	}
	if j.Message != "Cancelled" {
		t.Fatalf("cancel message overwritten: %q", j.Message)
	}
	if j.Progress != 0 {
		t.Fatalf("progress updated after cancel: %v", j.Progress)
	}
}

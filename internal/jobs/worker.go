package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/openlend/docpipe-backend/internal/events"
	"github.com/openlend/docpipe-backend/internal/logger"
	"github.com/openlend/docpipe-backend/internal/repos"
	"github.com/openlend/docpipe-backend/internal/types"
)

type WorkerConfig struct {
	MaxConcurrentJobs int
	PollInterval      time.Duration
	BaseBackoff       time.Duration
	// StaleProcessing is how long a claimed job may sit in processing before
	// another worker may reclaim it from a presumed-dead owner.
	StaleProcessing time.Duration
}

func (c WorkerConfig) withDefaults() WorkerConfig {
	if c.MaxConcurrentJobs <= 0 {
		c.MaxConcurrentJobs = 4
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 1 * time.Second
	}
	if c.BaseBackoff <= 0 {
		c.BaseBackoff = 5 * time.Second
	}
	if c.StaleProcessing <= 0 {
		c.StaleProcessing = 5 * time.Minute
	}
	return c
}

// Worker polls for runnable jobs and dispatches them to registered handlers
// under a shared concurrency budget.
type Worker struct {
	db       *gorm.DB
	log      *logger.Logger
	jobs     repos.ProcessingJobRepo
	logs     repos.ProcessingLogRepo
	registry *Registry
	publish  events.Publisher
	cfg      WorkerConfig
	sem      *semaphore.Weighted

	onTerminal func(ctx context.Context, job *types.ProcessingJob)
}

func NewWorker(db *gorm.DB, baseLog *logger.Logger, jobRepo repos.ProcessingJobRepo, logRepo repos.ProcessingLogRepo, registry *Registry, publish events.Publisher, cfg WorkerConfig) *Worker {
	cfg = cfg.withDefaults()
	return &Worker{
		db:       db,
		log:      baseLog.With("component", "JobWorker"),
		jobs:     jobRepo,
		logs:     logRepo,
		registry: registry,
		publish:  publish,
		cfg:      cfg,
		sem:      semaphore.NewWeighted(int64(cfg.MaxConcurrentJobs)),
	}
}

// SetTerminalHook registers a callback invoked after a job's transition to
// completed or failed has been persisted. Set once before Start.
func (w *Worker) SetTerminalHook(fn func(ctx context.Context, job *types.ProcessingJob)) {
	w.onTerminal = fn
}

func (w *Worker) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(w.cfg.PollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.drain(ctx)
			}
		}
	}()
}

// drain claims jobs until the queue is empty or the concurrency budget is
// spent. Claimed jobs run on their own goroutine; the slot is released when
// the run finishes.
func (w *Worker) drain(ctx context.Context) {
	for {
		if !w.sem.TryAcquire(1) {
			return
		}
		job, err := w.jobs.ClaimNextRunnable(ctx, nil, w.cfg.StaleProcessing)
		if err != nil {
			w.sem.Release(1)
			w.log.Warn("ClaimNextRunnable failed", "error", err)
			return
		}
		if job == nil {
			w.sem.Release(1)
			return
		}
		go func(job *types.ProcessingJob) {
			defer w.sem.Release(1)
			w.execute(ctx, job)
		}(job)
	}
}

func (w *Worker) execute(ctx context.Context, job *types.ProcessingJob) {
	started := time.Now()
	w.appendLog(ctx, job, types.LogStatusStarted, fmt.Sprintf("%s attempt %d", job.JobType, job.RetryCount+1), nil, 0)

	runErr := w.run(ctx, job)
	w.finish(ctx, job, runErr, time.Since(started))
}

func (w *Worker) run(ctx context.Context, job *types.ProcessingJob) (runErr error) {
	h, ok := w.registry.Get(job.JobType)
	if !ok {
		return fmt.Errorf("no handler registered for job_type=%s", job.JobType)
	}
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("Job handler panic", "job_id", job.ID, "job_type", job.JobType, "panic", r)
			runErr = fmt.Errorf("panic in %s handler: %v", job.JobType, r)
		}
	}()
	jc := NewContext(ctx, w.db, w.log, job)
	return h.Run(jc)
}

// finish applies the retry decision, appends the audit entry, and publishes
// the transition event.
func (w *Worker) finish(ctx context.Context, job *types.ProcessingJob, runErr error, took time.Duration) {
	now := time.Now()
	d := Decide(job, runErr, w.cfg.BaseBackoff)

	updates := map[string]interface{}{
		"status":    d.Status,
		"locked_at": nil,
	}
	if d.RetryCountDelta != 0 {
		updates["retry_count"] = gorm.Expr("retry_count + ?", d.RetryCountDelta)
	}
	switch d.Status {
	case types.JobStatusCompleted:
		updates["completed_at"] = now
		updates["last_error"] = ""
	case types.JobStatusPending:
		updates["not_before"] = now.Add(d.Backoff)
		updates["last_error"] = d.Reason
	case types.JobStatusFailed:
		updates["completed_at"] = now
		updates["last_error"] = d.Reason
	}
	if err := w.jobs.UpdateFields(ctx, nil, job.ID, updates); err != nil {
		w.log.Error("Failed to persist job transition", "job_id", job.ID, "status", d.Status, "error", err)
	}

	logStatus := types.LogStatusCompleted
	message := job.JobType + " completed"
	var detail datatypes.JSON
	if runErr != nil {
		logStatus = types.LogStatusFailed
		message = job.JobType + " failed"
		if d.Requeue {
			message = fmt.Sprintf("%s failed, retry %d/%d scheduled", job.JobType, job.RetryCount+1, job.MaxRetries)
		}
		raw, _ := json.Marshal(map[string]any{"error": d.Reason, "transient": IsTransient(runErr)})
		detail = raw
	}
	w.appendLog(ctx, job, logStatus, message, detail, took)

	ev := events.Event{
		Type:          events.TypeJobTransition,
		ApplicationID: job.ApplicationID,
		DocumentID:    job.DocumentID,
		JobID:         &job.ID,
		Stage:         job.JobType,
		Status:        d.Status,
		Message:       message,
		At:            now.UTC(),
	}
	if err := w.publish.Publish(ctx, ev); err != nil {
		w.log.Warn("Failed to publish job event", "job_id", job.ID, "error", err)
	}

	if w.onTerminal != nil && (d.Status == types.JobStatusCompleted || d.Status == types.JobStatusFailed) {
		settled := *job
		settled.Status = d.Status
		settled.RetryCount += d.RetryCountDelta
		settled.LastError = d.Reason
		settled.CompletedAt = &now
		w.onTerminal(ctx, &settled)
	}
}

func (w *Worker) appendLog(ctx context.Context, job *types.ProcessingJob, status, message string, detail datatypes.JSON, took time.Duration) {
	entry := &types.ProcessingLog{
		ID:            uuid.New(),
		ApplicationID: job.ApplicationID,
		DocumentID:    job.DocumentID,
		Stage:         job.JobType,
		Status:        status,
		Message:       message,
		ErrorDetail:   detail,
		DurationMS:    took.Milliseconds(),
	}
	if _, err := w.logs.Append(ctx, nil, entry); err != nil {
		w.log.Error("Failed to append processing log", "job_id", job.ID, "error", err)
	}
}

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openlend/docpipe-backend/internal/events"
	"github.com/openlend/docpipe-backend/internal/jobs"
	"github.com/openlend/docpipe-backend/internal/logger"
	"github.com/openlend/docpipe-backend/internal/repos"
	"github.com/openlend/docpipe-backend/internal/types"
)

// Earlier stages drain first; formatting waits its turn behind any
// still-runnable document work.
const (
	PriorityIngestion  = 10
	PriorityExtraction = 20
	PriorityValidation = 30
	PriorityFormatting = 40
)

func stagePriority(jobType string) int {
	switch jobType {
	case types.JobTypeIngestion:
		return PriorityIngestion
	case types.JobTypeExtraction:
		return PriorityExtraction
	case types.JobTypeValidation:
		return PriorityValidation
	case types.JobTypeFormatting:
		return PriorityFormatting
	}
	return 50
}

// PipelineService owns stage progression: enqueueing the next stage,
// cancellation, manual retry, and the formatting barrier trigger.
type PipelineService interface {
	EnqueueStage(ctx context.Context, tx *gorm.DB, applicationID string, documentID *uuid.UUID, jobType string) (*types.ProcessingJob, error)
	CancelJob(ctx context.Context, jobID uuid.UUID) (*types.ProcessingJob, error)
	RetryJob(ctx context.Context, jobID uuid.UUID) (*types.ProcessingJob, error)
	RetryFailedJobs(ctx context.Context, applicationID string) (int, error)
	OnJobTerminal(ctx context.Context, job *types.ProcessingJob)
}

type pipelineService struct {
	db         *gorm.DB
	log        *logger.Logger
	locks      *jobs.AppLocks
	apps       repos.ApplicationRepo
	docs       repos.DocumentRepo
	jobsRepo   repos.ProcessingJobRepo
	logs       repos.ProcessingLogRepo
	publish    events.Publisher
	maxRetries int
}

func NewPipelineService(db *gorm.DB, baseLog *logger.Logger, locks *jobs.AppLocks, apps repos.ApplicationRepo, docs repos.DocumentRepo, jobsRepo repos.ProcessingJobRepo, logs repos.ProcessingLogRepo, publish events.Publisher, maxRetries int) PipelineService {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &pipelineService{
		db:         db,
		log:        baseLog.With("service", "PipelineService"),
		locks:      locks,
		apps:       apps,
		docs:       docs,
		jobsRepo:   jobsRepo,
		logs:       logs,
		publish:    publish,
		maxRetries: maxRetries,
	}
}

func (s *pipelineService) EnqueueStage(ctx context.Context, tx *gorm.DB, applicationID string, documentID *uuid.UUID, jobType string) (*types.ProcessingJob, error) {
	job := &types.ProcessingJob{
		ID:            uuid.New(),
		ApplicationID: applicationID,
		DocumentID:    documentID,
		JobType:       jobType,
		Status:        types.JobStatusPending,
		Priority:      stagePriority(jobType),
		MaxRetries:    s.maxRetries,
	}
	created, err := s.jobsRepo.Create(ctx, tx, []*types.ProcessingJob{job})
	if err != nil {
		return nil, fmt.Errorf("enqueue %s for %s: %w", jobType, applicationID, err)
	}
	return created[0], nil
}

// CancelJob cancels a job between stage boundaries: only pending jobs can be
// cancelled. The job finishes as failed with reason "cancelled" and keeps its
// retry budget untouched.
func (s *pipelineService) CancelJob(ctx context.Context, jobID uuid.UUID) (*types.ProcessingJob, error) {
	job, err := s.jobsRepo.GetByID(ctx, nil, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, fmt.Errorf("job %s not found", jobID)
	}
	if job.Status != types.JobStatusPending {
		return nil, fmt.Errorf("job %s is %s; only pending jobs can be cancelled", jobID, job.Status)
	}
	now := time.Now()
	err = s.jobsRepo.UpdateFields(ctx, nil, jobID, map[string]interface{}{
		"status":       types.JobStatusFailed,
		"last_error":   jobs.CancelledReason,
		"completed_at": now,
	})
	if err != nil {
		return nil, err
	}
	entry := &types.ProcessingLog{
		ID:            uuid.New(),
		ApplicationID: job.ApplicationID,
		DocumentID:    job.DocumentID,
		Stage:         job.JobType,
		Status:        types.LogStatusSkipped,
		Message:       job.JobType + " cancelled",
	}
	if _, err := s.logs.Append(ctx, nil, entry); err != nil {
		s.log.Error("Failed to log cancellation", "job_id", jobID, "error", err)
	}
	job.Status = types.JobStatusFailed
	job.LastError = jobs.CancelledReason
	job.CompletedAt = &now
	s.OnJobTerminal(ctx, job)
	return job, nil
}

// RetryJob puts a failed job back in the queue with a fresh retry budget.
func (s *pipelineService) RetryJob(ctx context.Context, jobID uuid.UUID) (*types.ProcessingJob, error) {
	job, err := s.jobsRepo.GetByID(ctx, nil, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, fmt.Errorf("job %s not found", jobID)
	}
	if job.Status != types.JobStatusFailed {
		return nil, fmt.Errorf("job %s is %s; only failed jobs can be retried", jobID, job.Status)
	}
	err = s.jobsRepo.UpdateFields(ctx, nil, jobID, map[string]interface{}{
		"status":       types.JobStatusPending,
		"retry_count":  0,
		"last_error":   "",
		"not_before":   nil,
		"completed_at": nil,
	})
	if err != nil {
		return nil, err
	}
	// A document marked failed by this job gets another chance too;
	// otherwise the formatting barrier would still treat it as settled.
	if job.DocumentID != nil {
		if err := s.docs.UpdateFields(ctx, nil, *job.DocumentID, map[string]interface{}{
			"status": types.DocumentStatusProcessing,
		}); err != nil {
			s.log.Error("Failed to reset document status", "document_id", job.DocumentID, "error", err)
		}
	}
	return s.jobsRepo.GetByID(ctx, nil, jobID)
}

// RetryFailedJobs requeues every failed job of an application and returns
// how many were requeued. An application stuck in failed goes back to
// processing so the pipeline can finish on the second attempt.
func (s *pipelineService) RetryFailedJobs(ctx context.Context, applicationID string) (int, error) {
	all, err := s.jobsRepo.ListByApplication(ctx, nil, applicationID)
	if err != nil {
		return 0, err
	}
	requeued := 0
	for _, j := range all {
		if j.Status != types.JobStatusFailed {
			continue
		}
		if _, err := s.RetryJob(ctx, j.ID); err != nil {
			return requeued, err
		}
		requeued++
	}
	if requeued == 0 {
		return 0, fmt.Errorf("application %s has no failed jobs", applicationID)
	}
	if err := s.apps.UpdateFields(ctx, nil, applicationID, map[string]interface{}{
		"status":         types.ApplicationStatusProcessing,
		"status_message": "",
	}); err != nil {
		s.log.Error("Failed to reset application status", "application_id", applicationID, "error", err)
	}
	return requeued, nil
}

// OnJobTerminal runs after a job reaches completed or failed. It keeps the
// application's progress current, marks documents that died before
// validation, and opens the formatting barrier when the last document
// settles.
func (s *pipelineService) OnJobTerminal(ctx context.Context, job *types.ProcessingJob) {
	s.updateCompletion(ctx, job.ApplicationID)

	switch job.JobType {
	case types.JobTypeIngestion, types.JobTypeExtraction:
		if job.Status == types.JobStatusFailed && job.DocumentID != nil {
			if err := s.docs.UpdateFields(ctx, nil, *job.DocumentID, map[string]interface{}{
				"status": types.DocumentStatusFailed,
			}); err != nil {
				s.log.Error("Failed to mark document failed", "document_id", job.DocumentID, "error", err)
			}
			s.maybeEnqueueFormatting(ctx, job.ApplicationID)
		}
	case types.JobTypeValidation:
		if job.Status == types.JobStatusFailed && job.DocumentID != nil {
			if err := s.docs.UpdateFields(ctx, nil, *job.DocumentID, map[string]interface{}{
				"status": types.DocumentStatusFailed,
			}); err != nil {
				s.log.Error("Failed to mark document failed", "document_id", job.DocumentID, "error", err)
			}
		}
		s.maybeEnqueueFormatting(ctx, job.ApplicationID)
	case types.JobTypeFormatting:
		if job.Status == types.JobStatusFailed {
			s.failApplication(ctx, job.ApplicationID, job.LastError)
		}
	}
}

// maybeEnqueueFormatting enqueues the formatting stage once per application
// when every document has reached a terminal validation state. The app lock
// makes the existing-job check and the enqueue atomic: two validation jobs
// settling at the same time must not both open the barrier.
func (s *pipelineService) maybeEnqueueFormatting(ctx context.Context, applicationID string) {
	unlock := s.locks.Lock(applicationID)
	defer unlock()

	docs, err := s.docs.ListByApplication(ctx, nil, applicationID)
	if err != nil {
		s.log.Error("Barrier check: list documents failed", "application_id", applicationID, "error", err)
		return
	}
	validationJobs, err := s.jobsRepo.ListByApplicationAndType(ctx, nil, applicationID, types.JobTypeValidation)
	if err != nil {
		s.log.Error("Barrier check: list validation jobs failed", "application_id", applicationID, "error", err)
		return
	}
	if !jobs.FormattingEligible(docs, validationJobs) {
		return
	}
	existing, err := s.jobsRepo.ListByApplicationAndType(ctx, nil, applicationID, types.JobTypeFormatting)
	if err != nil {
		s.log.Error("Barrier check: list formatting jobs failed", "application_id", applicationID, "error", err)
		return
	}
	for _, j := range existing {
		if j.Status != types.JobStatusFailed {
			return
		}
	}
	if _, err := s.EnqueueStage(ctx, nil, applicationID, nil, types.JobTypeFormatting); err != nil {
		s.log.Error("Failed to enqueue formatting", "application_id", applicationID, "error", err)
		return
	}
	s.log.Info("Formatting barrier open", "application_id", applicationID)
}

func (s *pipelineService) updateCompletion(ctx context.Context, applicationID string) {
	counts, err := s.jobsRepo.CountByStatus(ctx, nil, applicationID)
	if err != nil {
		s.log.Error("Failed to count jobs", "application_id", applicationID, "error", err)
		return
	}
	var total, done int64
	for status, n := range counts {
		total += n
		if status == types.JobStatusCompleted || status == types.JobStatusFailed {
			done += n
		}
	}
	if total == 0 {
		return
	}
	pct := float64(done) / float64(total) * 100
	if err := s.apps.UpdateFields(ctx, nil, applicationID, map[string]interface{}{
		"completion_percentage": pct,
	}); err != nil {
		s.log.Error("Failed to update completion", "application_id", applicationID, "error", err)
	}
}

func (s *pipelineService) failApplication(ctx context.Context, applicationID, reason string) {
	if err := s.apps.UpdateFields(ctx, nil, applicationID, map[string]interface{}{
		"status":         types.ApplicationStatusFailed,
		"status_message": reason,
	}); err != nil {
		s.log.Error("Failed to mark application failed", "application_id", applicationID, "error", err)
		return
	}
	ev := events.Event{
		Type:          events.TypeApplicationStatus,
		ApplicationID: applicationID,
		Status:        types.ApplicationStatusFailed,
		Message:       reason,
		At:            time.Now().UTC(),
	}
	if err := s.publish.Publish(ctx, ev); err != nil {
		s.log.Warn("Failed to publish application event", "application_id", applicationID, "error", err)
	}
}

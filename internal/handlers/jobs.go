package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/openlend/docpipe-backend/internal/logger"
	"github.com/openlend/docpipe-backend/internal/services"
)

type JobHandler struct {
	log      *logger.Logger
	pipeline services.PipelineService
	status   services.StatusService
}

func NewJobHandler(baseLog *logger.Logger, pipeline services.PipelineService, status services.StatusService) *JobHandler {
	return &JobHandler{
		log:      baseLog.With("handler", "JobHandler"),
		pipeline: pipeline,
		status:   status,
	}
}

func (h *JobHandler) ListByApplication(c *gin.Context) {
	jobs, err := h.status.Jobs(c.Request.Context(), c.Param("application_id"))
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "list_failed", err)
		return
	}
	RespondOK(c, jobs)
}

// RetryFailed requeues every failed job of an application.
func (h *JobHandler) RetryFailed(c *gin.Context) {
	applicationID := c.Param("application_id")
	requeued, err := h.pipeline.RetryFailedJobs(c.Request.Context(), applicationID)
	if err != nil {
		RespondError(c, http.StatusConflict, "retry_failed", err)
		return
	}
	RespondOK(c, gin.H{"application_id": applicationID, "requeued": requeued})
}

func (h *JobHandler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("job_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_job_id", err)
		return
	}
	job, err := h.pipeline.CancelJob(c.Request.Context(), id)
	if err != nil {
		RespondError(c, http.StatusConflict, "cancel_failed", err)
		return
	}
	RespondOK(c, job)
}

func (h *JobHandler) Retry(c *gin.Context) {
	id, err := uuid.Parse(c.Param("job_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_job_id", err)
		return
	}
	job, err := h.pipeline.RetryJob(c.Request.Context(), id)
	if err != nil {
		RespondError(c, http.StatusConflict, "retry_failed", err)
		return
	}
	RespondOK(c, job)
}

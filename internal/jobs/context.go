package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/openlend/docpipe-backend/internal/logger"
	"github.com/openlend/docpipe-backend/internal/types"
)

// Context is what a handler sees for one claimed job.
type Context struct {
	Ctx context.Context
	DB  *gorm.DB
	Log *logger.Logger
	Job *types.ProcessingJob
}

func NewContext(ctx context.Context, db *gorm.DB, baseLog *logger.Logger, job *types.ProcessingJob) *Context {
	return &Context{
		Ctx: ctx,
		DB:  db,
		Log: baseLog.With("job_id", job.ID, "job_type", job.JobType, "application_id", job.ApplicationID),
		Job: job,
	}
}

// DecodePayload unmarshals the job payload into v.
func (jc *Context) DecodePayload(v any) error {
	if len(jc.Job.Payload) == 0 {
		return fmt.Errorf("job %s has no payload", jc.Job.ID)
	}
	if err := json.Unmarshal(jc.Job.Payload, v); err != nil {
		return fmt.Errorf("decode payload for job %s: %w", jc.Job.ID, err)
	}
	return nil
}

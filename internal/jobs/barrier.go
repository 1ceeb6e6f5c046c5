package jobs

import (
	"github.com/google/uuid"

	"github.com/openlend/docpipe-backend/internal/types"
)

// FormattingEligible reports whether the formatting barrier is open: every
// document of the application has a validation job in a terminal state.
// Failed-exhausted documents open the barrier too; their fields surface as
// missing rather than being dropped silently.
//
// A requeued retry keeps its job row in pending, so a document with a pending
// or processing validation job holds the barrier closed.
func FormattingEligible(docs []*types.Document, validationJobs []*types.ProcessingJob) bool {
	if len(docs) == 0 {
		return false
	}
	latest := make(map[uuid.UUID]*types.ProcessingJob, len(validationJobs))
	for _, j := range validationJobs {
		if j.JobType != types.JobTypeValidation || j.DocumentID == nil {
			continue
		}
		prev, ok := latest[*j.DocumentID]
		if !ok || j.CreatedAt.After(prev.CreatedAt) {
			latest[*j.DocumentID] = j
		}
	}
	for _, d := range docs {
		if d.Status == types.DocumentStatusFailed {
			// Ingestion or extraction exhausted its retries; no validation
			// job will ever exist for this document.
			continue
		}
		j, ok := latest[d.ID]
		if !ok || !j.IsTerminal() {
			return false
		}
	}
	return true
}

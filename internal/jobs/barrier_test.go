package jobs

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/openlend/docpipe-backend/internal/types"
)

func doc(id uuid.UUID) *types.Document {
	return &types.Document{ID: id, ApplicationID: "APP-1", DocumentType: "bank_statement"}
}

func validationJob(docID uuid.UUID, status string, createdAt time.Time) *types.ProcessingJob {
	return &types.ProcessingJob{
		ID:            uuid.New(),
		ApplicationID: "APP-1",
		DocumentID:    &docID,
		JobType:       types.JobTypeValidation,
		Status:        status,
		CreatedAt:     createdAt,
	}
}

func TestFormattingEligibleAllTerminal(t *testing.T) {
	d1, d2 := uuid.New(), uuid.New()
	at := time.Now()
	docs := []*types.Document{doc(d1), doc(d2)}

	// One document validated, one failed-exhausted. Failure still opens the
	// barrier; its fields surface as missing downstream.
	jobsList := []*types.ProcessingJob{
		validationJob(d1, types.JobStatusCompleted, at),
		validationJob(d2, types.JobStatusFailed, at),
	}
	if !FormattingEligible(docs, jobsList) {
		t.Fatalf("all documents terminal, barrier must be open")
	}
}

func TestFormattingBlockedByPendingRetry(t *testing.T) {
	d1, d2 := uuid.New(), uuid.New()
	at := time.Now()
	docs := []*types.Document{doc(d1), doc(d2)}
	jobsList := []*types.ProcessingJob{
		validationJob(d1, types.JobStatusCompleted, at),
		validationJob(d2, types.JobStatusPending, at),
	}
	if FormattingEligible(docs, jobsList) {
		t.Fatalf("pending validation retry must hold the barrier closed")
	}
}

func TestFormattingBlockedByMissingValidationJob(t *testing.T) {
	d1, d2 := uuid.New(), uuid.New()
	docs := []*types.Document{doc(d1), doc(d2)}
	jobsList := []*types.ProcessingJob{
		validationJob(d1, types.JobStatusCompleted, time.Now()),
	}
	if FormattingEligible(docs, jobsList) {
		t.Fatalf("document without a validation job must hold the barrier closed")
	}
}

func TestFormattingUsesLatestJobPerDocument(t *testing.T) {
	d1 := uuid.New()
	at := time.Now()
	docs := []*types.Document{doc(d1)}

	// An older failed run followed by a newer in-flight run: the newer run
	// decides.
	jobsList := []*types.ProcessingJob{
		validationJob(d1, types.JobStatusFailed, at.Add(-time.Hour)),
		validationJob(d1, types.JobStatusProcessing, at),
	}
	if FormattingEligible(docs, jobsList) {
		t.Fatalf("latest validation job is in flight, barrier must stay closed")
	}
}

func TestFormattingIgnoresOtherJobTypes(t *testing.T) {
	d1 := uuid.New()
	at := time.Now()
	docs := []*types.Document{doc(d1)}
	extraction := validationJob(d1, types.JobStatusProcessing, at)
	extraction.JobType = types.JobTypeExtraction
	jobsList := []*types.ProcessingJob{
		extraction,
		validationJob(d1, types.JobStatusCompleted, at),
	}
	if !FormattingEligible(docs, jobsList) {
		t.Fatalf("non-validation jobs must not affect the barrier")
	}
}

func TestFormattingTreatsFailedDocumentAsTerminal(t *testing.T) {
	d1, d2 := uuid.New(), uuid.New()
	failed := doc(d2)
	failed.Status = types.DocumentStatusFailed
	docs := []*types.Document{doc(d1), failed}
	jobsList := []*types.ProcessingJob{
		validationJob(d1, types.JobStatusCompleted, time.Now()),
	}
	if !FormattingEligible(docs, jobsList) {
		t.Fatalf("document that died before validation must not hold the barrier")
	}
}

func TestFormattingRequiresAtLeastOneDocument(t *testing.T) {
	if FormattingEligible(nil, nil) {
		t.Fatalf("application with no documents has nothing to format")
	}
}

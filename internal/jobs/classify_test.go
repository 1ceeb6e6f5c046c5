package jobs

import (
	"errors"
	"testing"
	"time"

	"github.com/openlend/docpipe-backend/internal/types"
)

func TestDecideSuccess(t *testing.T) {
	job := &types.ProcessingJob{JobType: types.JobTypeExtraction, RetryCount: 0, MaxRetries: 3}
	d := Decide(job, nil, time.Second)
	if d.Status != types.JobStatusCompleted {
		t.Fatalf("status=%s, want completed", d.Status)
	}
	if d.Requeue || d.RetryCountDelta != 0 {
		t.Fatalf("successful run must not touch retry state: %+v", d)
	}
}

func TestDecideTransientRetriesThenSucceeds(t *testing.T) {
	// Two transient failures, then success, against max_retries=3. Both
	// failures requeue; the budget is never exhausted.
	job := &types.ProcessingJob{JobType: types.JobTypeExtraction, RetryCount: 0, MaxRetries: 3}
	transient := Transient(errors.New("ocr timeout"))

	for attempt := 0; attempt < 2; attempt++ {
		d := Decide(job, transient, time.Second)
		if d.Status != types.JobStatusPending || !d.Requeue {
			t.Fatalf("attempt %d: decision=%+v, want pending requeue", attempt+1, d)
		}
		if d.RetryCountDelta != 1 {
			t.Fatalf("attempt %d: retry delta=%d, want 1", attempt+1, d.RetryCountDelta)
		}
		job.RetryCount += d.RetryCountDelta
	}

	d := Decide(job, nil, time.Second)
	if d.Status != types.JobStatusCompleted {
		t.Fatalf("third attempt: status=%s, want completed", d.Status)
	}
	if job.RetryCount != 2 {
		t.Fatalf("retry_count=%d, want 2", job.RetryCount)
	}
}

func TestDecideTransientExhaustsBudget(t *testing.T) {
	job := &types.ProcessingJob{JobType: types.JobTypeValidation, RetryCount: 3, MaxRetries: 3}
	d := Decide(job, Transient(errors.New("lock contention")), time.Second)
	if d.Status != types.JobStatusFailed {
		t.Fatalf("status=%s, want failed after budget exhaustion", d.Status)
	}
	if d.Requeue {
		t.Fatalf("exhausted job must not requeue")
	}
}

func TestDecidePermanentFailsImmediately(t *testing.T) {
	job := &types.ProcessingJob{JobType: types.JobTypeValidation, RetryCount: 0, MaxRetries: 3}
	d := Decide(job, errors.New("unknown document type"), time.Second)
	if d.Status != types.JobStatusFailed {
		t.Fatalf("status=%s, want failed", d.Status)
	}
	if d.RetryCountDelta != 0 {
		t.Fatalf("permanent failure must not consume retry budget: %+v", d)
	}
}

func TestDecideCancelledKeepsRetryBudget(t *testing.T) {
	job := &types.ProcessingJob{JobType: types.JobTypeFormatting, RetryCount: 1, MaxRetries: 3}
	d := Decide(job, ErrCancelled, time.Second)
	if d.Status != types.JobStatusFailed {
		t.Fatalf("status=%s, want failed", d.Status)
	}
	if d.Reason != CancelledReason {
		t.Fatalf("reason=%q, want %q", d.Reason, CancelledReason)
	}
	if d.RetryCountDelta != 0 {
		t.Fatalf("cancellation must not consume retry budget")
	}
}

func TestBackoffDoublesAndCaps(t *testing.T) {
	cases := []struct {
		retryCount int
		want       time.Duration
	}{
		{retryCount: 0, want: 5 * time.Second},
		{retryCount: 1, want: 10 * time.Second},
		{retryCount: 2, want: 20 * time.Second},
		{retryCount: 10, want: 10 * time.Minute},
	}
	for _, tc := range cases {
		if got := backoffFor(tc.retryCount, 5*time.Second); got != tc.want {
			t.Fatalf("backoffFor(%d)=%v, want %v", tc.retryCount, got, tc.want)
		}
	}
}

func TestTransientWrapping(t *testing.T) {
	base := errors.New("storage hiccup")
	wrapped := Transient(base)
	if !IsTransient(wrapped) {
		t.Fatalf("Transient(err) must be classified transient")
	}
	if !errors.Is(wrapped, base) {
		t.Fatalf("wrapped error must unwrap to the cause")
	}
	if IsTransient(base) {
		t.Fatalf("plain errors must not be classified transient")
	}
	if Transient(nil) != nil {
		t.Fatalf("Transient(nil) must stay nil")
	}
}

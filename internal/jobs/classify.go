package jobs

import (
	"errors"
	"time"

	"github.com/openlend/docpipe-backend/internal/types"
)

// ErrCancelled marks a job that was cancelled at a stage boundary. Cancelled
// jobs finish as failed with reason "cancelled" and do not consume retry
// budget.
var ErrCancelled = errors.New("job cancelled")

const CancelledReason = "cancelled"

// TransientError wraps failures worth retrying: OCR timeouts, storage
// hiccups, lock contention. Anything else is treated as permanent.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return "transient: " + e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// Decision is the computed transition for a finished job run. Applying it is
// the caller's concern; computing it has no side effects so the retry policy
// can be tested without a database or a clock.
type Decision struct {
	Status          string
	Requeue         bool
	RetryCountDelta int
	Backoff         time.Duration
	Reason          string
}

// Decide maps a handler result onto the job state machine.
//
//	nil            -> completed
//	ErrCancelled   -> failed, reason "cancelled", retry budget untouched
//	transient      -> pending with backoff while budget remains, else failed
//	anything else  -> failed
func Decide(job *types.ProcessingJob, runErr error, baseBackoff time.Duration) Decision {
	if runErr == nil {
		return Decision{Status: types.JobStatusCompleted}
	}
	if errors.Is(runErr, ErrCancelled) {
		return Decision{Status: types.JobStatusFailed, Reason: CancelledReason}
	}
	if IsTransient(runErr) && job.CanRetry() {
		return Decision{
			Status:          types.JobStatusPending,
			Requeue:         true,
			RetryCountDelta: 1,
			Backoff:         backoffFor(job.RetryCount, baseBackoff),
			Reason:          runErr.Error(),
		}
	}
	d := Decision{Status: types.JobStatusFailed, Reason: runErr.Error()}
	if IsTransient(runErr) {
		d.RetryCountDelta = 1
	}
	return d
}

// backoffFor doubles the delay per prior attempt, capped at ten minutes.
func backoffFor(retryCount int, base time.Duration) time.Duration {
	if base <= 0 {
		base = time.Second
	}
	d := base
	for i := 0; i < retryCount; i++ {
		d *= 2
		if d >= 10*time.Minute {
			return 10 * time.Minute
		}
	}
	return d
}

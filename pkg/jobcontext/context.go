package jobcontext

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type contextKey string

var (
	keyJobID        contextKey = "job_id"
	keyWorkerID     contextKey = "worker_id"
	keyRetryAttempt contextKey = "retry_attempt"
	keyMaxAttempts  contextKey = "max_attempts"
	keyJobStartTime contextKey = "job_start_time"
)

// Options configures a job run. Zero values fall back to the defaults
// the analysis pipeline assumes: 3 attempts, 5 minutes per attempt.
type Options struct {
	MaxAttempts    int
	AttemptTimeout time.Duration
	BaseBackoff    time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 3
	}
	if o.AttemptTimeout <= 0 {
		o.AttemptTimeout = 5 * time.Minute
	}
	if o.BaseBackoff <= 0 {
		o.BaseBackoff = 5 * time.Second
	}
	return o
}

// Begin initializes a job context with metadata. The attempt timeout is
// not applied here: Run derives a fresh deadline for every attempt, so
// one hung attempt cannot burn the budget of the ones after it.
func Begin(parentCtx context.Context, jobID uuid.UUID, workerID int, opts Options) (context.Context, context.CancelFunc) {
	opts = opts.withDefaults()

	ctx, cancel := context.WithCancel(parentCtx)
	ctx = context.WithValue(ctx, keyJobID, jobID)
	ctx = context.WithValue(ctx, keyWorkerID, workerID)
	ctx = context.WithValue(ctx, keyRetryAttempt, 0)
	ctx = context.WithValue(ctx, keyMaxAttempts, opts.MaxAttempts)
	ctx = context.WithValue(ctx, keyJobStartTime, time.Now())

	return ctx, cancel
}

// Run executes the job function with panic recovery and retry logic.
// Each retry restarts the job function from scratch under its own
// attempt deadline; no partial state survives an attempt. Returns the
// last error once attempts are exhausted or the first non-retryable
// error.
func Run(ctx context.Context, opts Options, jobFunc func(context.Context) error) error {
	opts = opts.withDefaults()

	var err error
	for attempt := 0; attempt < opts.MaxAttempts; attempt++ {
		ctx = context.WithValue(ctx, keyRetryAttempt, attempt)

		func(ctx context.Context) {
			attemptCtx, cancel := context.WithTimeout(ctx, opts.AttemptTimeout)
			defer cancel()

			defer func() {
				if p := recover(); p != nil {
					err = fmt.Errorf("panic recovered: %v", p)
				}
			}()

			if ctx.Err() != nil {
				err = fmt.Errorf("context cancelled before job execution: %w", ctx.Err())
				return
			}

			err = jobFunc(attemptCtx)
		}(ctx)

		if err == nil {
			return nil
		}

		if !IsRetryableError(err) {
			return fmt.Errorf("non-retryable error: %w", err)
		}

		if attempt+1 >= opts.MaxAttempts {
			break
		}

		if ctx.Err() != nil {
			return fmt.Errorf("context cancelled during retry: %w", ctx.Err())
		}

		time.Sleep(Backoff(attempt+1, opts.BaseBackoff))
	}

	return fmt.Errorf("job failed after %d attempts: %w", opts.MaxAttempts, err)
}

// JobID extracts the job ID from context
func JobID(ctx context.Context) (uuid.UUID, bool) {
	jobID, ok := ctx.Value(keyJobID).(uuid.UUID)
	return jobID, ok
}

// WorkerID extracts the worker ID from context
func WorkerID(ctx context.Context) int {
	workerID, ok := ctx.Value(keyWorkerID).(int)
	if !ok {
		return -1
	}
	return workerID
}

// RetryAttempt extracts the current retry attempt from context
func RetryAttempt(ctx context.Context) int {
	attempt, ok := ctx.Value(keyRetryAttempt).(int)
	if !ok {
		return 0
	}
	return attempt
}

// StartTime extracts the job start time from context
func StartTime(ctx context.Context) (time.Time, bool) {
	startTime, ok := ctx.Value(keyJobStartTime).(time.Time)
	return startTime, ok
}

// Backoff calculates exponential backoff: 2^attempt * base, capped at 60s.
func Backoff(attempt int, base time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	backoff := time.Duration(1<<uint(attempt)) * base
	if max := 60 * time.Second; backoff > max {
		backoff = max
	}
	return backoff
}

// IsRetryableError reports whether an error should trigger a retry.
// Retryable: network failures, timeouts, deadlocks, rate limits, 5xx.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())

	if strings.Contains(errStr, "context deadline exceeded") ||
		strings.Contains(errStr, "context canceled") {
		return true
	}

	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "network unreachable") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "i/o timeout") {
		return true
	}

	// Postgres serialization_failure / deadlock_detected
	if strings.Contains(errStr, "deadlock") ||
		strings.Contains(errStr, "40001") ||
		strings.Contains(errStr, "40p01") {
		return true
	}

	if strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests") ||
		strings.Contains(errStr, "429") {
		return true
	}

	if strings.Contains(errStr, "status 5") ||
		strings.Contains(errStr, "internal server error") ||
		strings.Contains(errStr, "service unavailable") ||
		strings.Contains(errStr, "bad gateway") {
		return true
	}

	if strings.Contains(errStr, "temporary failure") ||
		strings.Contains(errStr, "try again") {
		return true
	}

	return false
}

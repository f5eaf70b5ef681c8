package jobcontext

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestBeginPopulatesContext(t *testing.T) {
	jobID := uuid.New()
	ctx, cancel := Begin(context.Background(), jobID, 3, Options{AttemptTimeout: time.Minute})
	defer cancel()

	got, ok := JobID(ctx)
	if !ok || got != jobID {
		t.Fatalf("JobID = %v, %v", got, ok)
	}
	if WorkerID(ctx) != 3 {
		t.Fatalf("WorkerID = %d, want 3", WorkerID(ctx))
	}
	if _, ok := StartTime(ctx); !ok {
		t.Fatal("start time missing")
	}
	// The attempt timeout belongs to each attempt inside Run, not to
	// the run as a whole.
	if _, deadlineSet := ctx.Deadline(); deadlineSet {
		t.Fatal("run context must not carry the attempt deadline")
	}
}

func TestWorkerIDMissing(t *testing.T) {
	if WorkerID(context.Background()) != -1 {
		t.Fatal("expected -1 for missing worker id")
	}
}

func TestRunSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Run(context.Background(), Options{MaxAttempts: 3, BaseBackoff: time.Millisecond}, func(ctx context.Context) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call got %d", calls)
	}
}

func TestRunRetriesRetryableError(t *testing.T) {
	calls := 0
	err := Run(context.Background(), Options{MaxAttempts: 3, BaseBackoff: time.Millisecond}, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls got %d", calls)
	}
}

func TestRunStopsOnNonRetryableError(t *testing.T) {
	calls := 0
	err := Run(context.Background(), Options{MaxAttempts: 3, BaseBackoff: time.Millisecond}, func(ctx context.Context) error {
		calls++
		return errors.New("invalid audio format")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("expected 1 call got %d", calls)
	}
}

func TestRunExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Run(context.Background(), Options{MaxAttempts: 2, BaseBackoff: time.Millisecond}, func(ctx context.Context) error {
		calls++
		return errors.New("i/o timeout")
	})
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls got %d", calls)
	}
}

func TestRunRetriesAfterAttemptTimeout(t *testing.T) {
	calls := 0
	err := Run(context.Background(), Options{
		MaxAttempts:    3,
		AttemptTimeout: 20 * time.Millisecond,
		BaseBackoff:    time.Millisecond,
	}, func(ctx context.Context) error {
		calls++
		// Hang until the attempt deadline fires.
		<-ctx.Done()
		return ctx.Err()
	})
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, each with a fresh deadline, got %d", calls)
	}
}

func TestRunRecoversPanic(t *testing.T) {
	err := Run(context.Background(), Options{MaxAttempts: 1, BaseBackoff: time.Millisecond}, func(ctx context.Context) error {
		panic("boom")
	})
	if err == nil {
		t.Fatal("expected panic converted to error")
	}
}

func TestRunExposesAttemptNumber(t *testing.T) {
	var attempts []int
	Run(context.Background(), Options{MaxAttempts: 3, BaseBackoff: time.Millisecond}, func(ctx context.Context) error {
		attempts = append(attempts, RetryAttempt(ctx))
		return fmt.Errorf("try again")
	})
	want := []int{0, 1, 2}
	if len(attempts) != len(want) {
		t.Fatalf("attempts %v", attempts)
	}
	for i := range want {
		if attempts[i] != want[i] {
			t.Fatalf("attempts %v, want %v", attempts, want)
		}
	}
}

func TestBackoff(t *testing.T) {
	base := time.Second
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Second},
		{1, 2 * time.Second},
		{3, 8 * time.Second},
		{10, 60 * time.Second}, // capped
	}
	for _, c := range cases {
		if got := Backoff(c.attempt, base); got != c.want {
			t.Fatalf("Backoff(%d) = %v, want %v", c.attempt, got, c.want)
		}
	}
}

func TestIsRetryableError(t *testing.T) {
	retryable := []string{
		"connection refused",
		"context deadline exceeded",
		"deadlock detected",
		"rate limit exceeded",
		"bad gateway",
	}
	for _, msg := range retryable {
		if !IsRetryableError(errors.New(msg)) {
			t.Fatalf("%q should be retryable", msg)
		}
	}

	if IsRetryableError(nil) {
		t.Fatal("nil is not retryable")
	}
	if IsRetryableError(errors.New("unsupported audio codec")) {
		t.Fatal("validation errors are not retryable")
	}
}

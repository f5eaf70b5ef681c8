package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/itqanlabs/itqan-backend/internal/domain/entities"
)

func seedJob(t *testing.T, repo *AnalysisJobRepository) *entities.AnalysisJob {
	t.Helper()
	job := entities.NewAnalysisJob(uuid.New(), uuid.New(), uuid.New())
	if err := repo.Create(context.Background(), job); err != nil {
		t.Fatalf("create job: %v", err)
	}
	return job
}

func TestAnalysisJobClaim(t *testing.T) {
	repo := NewAnalysisJobRepository(newTestDB(t))
	ctx := context.Background()
	job := seedJob(t, repo)

	claimed, err := repo.Claim(ctx, job.ID, "worker-1")
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if !claimed {
		t.Fatal("first claim should win")
	}

	// A second claim must lose: the job is no longer queued.
	claimed, err = repo.Claim(ctx, job.ID, "worker-2")
	if err != nil {
		t.Fatalf("second claim: %v", err)
	}
	if claimed {
		t.Fatal("second claim must lose the race")
	}

	got, err := repo.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != entities.AnalysisJobStatusProcessing {
		t.Fatalf("status %s, want processing", got.Status)
	}
	if got.WorkerID == nil || *got.WorkerID != "worker-1" {
		t.Fatalf("worker %v, want worker-1", got.WorkerID)
	}
	if got.StartedAt == nil {
		t.Fatal("started_at not set")
	}
}

func TestAnalysisJobCompleteClearsError(t *testing.T) {
	repo := NewAnalysisJobRepository(newTestDB(t))
	ctx := context.Background()
	job := seedJob(t, repo)

	if _, err := repo.Claim(ctx, job.ID, "worker-1"); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if err := repo.IncrementRetryCount(ctx, job.ID, "transient stt error"); err != nil {
		t.Fatalf("increment: %v", err)
	}

	result := &entities.AnalysisResult{OverallScore: 87.5, PronunciationScore: 90}
	if err := repo.MarkCompleted(ctx, job.ID, result); err != nil {
		t.Fatalf("complete: %v", err)
	}

	got, _ := repo.GetByID(ctx, job.ID)
	if got.Status != entities.AnalysisJobStatusDone {
		t.Fatalf("status %s, want done", got.Status)
	}
	if got.LastError != nil {
		t.Fatalf("last error should be cleared, got %q", *got.LastError)
	}
	if got.Result == nil || got.Result.OverallScore != 87.5 {
		t.Fatalf("result not persisted: %+v", got.Result)
	}
	if got.CompletedAt == nil {
		t.Fatal("completed_at not set")
	}
	if got.RetryCount != 1 {
		t.Fatalf("retry count %d, want 1", got.RetryCount)
	}
}

func TestAnalysisJobFailClearsResult(t *testing.T) {
	repo := NewAnalysisJobRepository(newTestDB(t))
	ctx := context.Background()
	job := seedJob(t, repo)

	if err := repo.MarkFailed(ctx, job.ID, "audio download failed"); err != nil {
		t.Fatalf("fail: %v", err)
	}

	got, _ := repo.GetByID(ctx, job.ID)
	if got.Status != entities.AnalysisJobStatusFailed {
		t.Fatalf("status %s, want failed", got.Status)
	}
	if got.LastError == nil || *got.LastError != "audio download failed" {
		t.Fatalf("last error %v", got.LastError)
	}
	if got.Result != nil {
		t.Fatalf("result should be nil, got %+v", got.Result)
	}
}

func TestAnalysisJobRequeue(t *testing.T) {
	repo := NewAnalysisJobRepository(newTestDB(t))
	ctx := context.Background()
	job := seedJob(t, repo)

	// Queued jobs cannot be requeued.
	ok, err := repo.Requeue(ctx, job.ID)
	if err != nil {
		t.Fatalf("requeue: %v", err)
	}
	if ok {
		t.Fatal("requeue of a queued job must be a no-op")
	}

	if _, err := repo.Claim(ctx, job.ID, "worker-1"); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if err := repo.IncrementRetryCount(ctx, job.ID, "boom"); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if err := repo.MarkFailed(ctx, job.ID, "boom"); err != nil {
		t.Fatalf("fail: %v", err)
	}

	ok, err = repo.Requeue(ctx, job.ID)
	if err != nil {
		t.Fatalf("requeue failed job: %v", err)
	}
	if !ok {
		t.Fatal("failed job should be requeueable")
	}

	got, _ := repo.GetByID(ctx, job.ID)
	if got.Status != entities.AnalysisJobStatusQueued {
		t.Fatalf("status %s, want queued", got.Status)
	}
	if got.RetryCount != 0 || got.LastError != nil || got.WorkerID != nil || got.StartedAt != nil || got.CompletedAt != nil {
		t.Fatalf("requeue did not reset the job: %+v", got)
	}
}

func TestAnalysisJobRequeueThenSuccess(t *testing.T) {
	repo := NewAnalysisJobRepository(newTestDB(t))
	ctx := context.Background()
	job := seedJob(t, repo)

	if _, err := repo.Claim(ctx, job.ID, "worker-1"); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if err := repo.MarkFailed(ctx, job.ID, "stt outage"); err != nil {
		t.Fatalf("fail: %v", err)
	}
	if ok, err := repo.Requeue(ctx, job.ID); err != nil || !ok {
		t.Fatalf("requeue: ok=%v err=%v", ok, err)
	}

	// A later successful run lands in done with a result and no error.
	if _, err := repo.Claim(ctx, job.ID, "worker-2"); err != nil {
		t.Fatalf("reclaim: %v", err)
	}
	if err := repo.MarkCompleted(ctx, job.ID, &entities.AnalysisResult{OverallScore: 91}); err != nil {
		t.Fatalf("complete: %v", err)
	}

	got, _ := repo.GetByID(ctx, job.ID)
	if got.Status != entities.AnalysisJobStatusDone {
		t.Fatalf("status %s, want done", got.Status)
	}
	if got.Result == nil || got.LastError != nil {
		t.Fatalf("want result set and error nil, got %+v", got)
	}
}

func TestAnalysisJobDeleteFailedByRecitation(t *testing.T) {
	repo := NewAnalysisJobRepository(newTestDB(t))
	ctx := context.Background()
	recitationID := uuid.New()

	failed := entities.NewAnalysisJob(recitationID, uuid.New(), uuid.New())
	done := entities.NewAnalysisJob(recitationID, uuid.New(), uuid.New())
	otherFailed := entities.NewAnalysisJob(uuid.New(), uuid.New(), uuid.New())
	for _, job := range []*entities.AnalysisJob{failed, done, otherFailed} {
		if err := repo.Create(ctx, job); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if err := repo.MarkFailed(ctx, failed.ID, "boom"); err != nil {
		t.Fatalf("fail: %v", err)
	}
	if err := repo.MarkFailed(ctx, otherFailed.ID, "boom"); err != nil {
		t.Fatalf("fail: %v", err)
	}
	if err := repo.MarkCompleted(ctx, done.ID, &entities.AnalysisResult{OverallScore: 90}); err != nil {
		t.Fatalf("complete: %v", err)
	}

	n, err := repo.DeleteFailedByRecitation(ctx, recitationID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n != 1 {
		t.Fatalf("deleted %d, want 1", n)
	}

	if got, _ := repo.GetByID(ctx, failed.ID); got != nil {
		t.Fatal("failed job for the recitation should be gone")
	}
	if got, _ := repo.GetByID(ctx, done.ID); got == nil {
		t.Fatal("done job must survive")
	}
	if got, _ := repo.GetByID(ctx, otherFailed.ID); got == nil {
		t.Fatal("other recitation's failed job must survive")
	}
}

func TestAnalysisJobCountCreatedSince(t *testing.T) {
	repo := NewAnalysisJobRepository(newTestDB(t))
	ctx := context.Background()
	userID := uuid.New()
	orgID := uuid.New()

	for i := 0; i < 3; i++ {
		job := entities.NewAnalysisJob(uuid.New(), userID, orgID)
		if err := repo.Create(ctx, job); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	// Another user's job does not count.
	other := entities.NewAnalysisJob(uuid.New(), uuid.New(), orgID)
	if err := repo.Create(ctx, other); err != nil {
		t.Fatalf("create: %v", err)
	}

	count, err := repo.CountCreatedSince(ctx, userID, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 3 {
		t.Fatalf("count %d, want 3", count)
	}

	count, err = repo.CountCreatedSince(ctx, userID, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("count %d, want 0 for future cutoff", count)
	}
}

func TestAnalysisJobReclaimStale(t *testing.T) {
	db := newTestDB(t)
	repo := NewAnalysisJobRepository(db)
	ctx := context.Background()

	stale := seedJob(t, repo)
	fresh := seedJob(t, repo)
	if _, err := repo.Claim(ctx, stale.ID, "dead-worker"); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if _, err := repo.Claim(ctx, fresh.ID, "live-worker"); err != nil {
		t.Fatalf("claim: %v", err)
	}

	// Age the stale job behind the cutoff.
	old := time.Now().Add(-time.Hour)
	if err := db.Model(&entities.AnalysisJob{}).Where("id = ?", stale.ID).
		Update("updated_at", old).Error; err != nil {
		t.Fatalf("age job: %v", err)
	}

	n, err := repo.ReclaimStale(ctx, time.Now().Add(-10*time.Minute))
	if err != nil {
		t.Fatalf("reclaim: %v", err)
	}
	if n != 1 {
		t.Fatalf("reclaimed %d, want 1", n)
	}

	got, _ := repo.GetByID(ctx, stale.ID)
	if got.Status != entities.AnalysisJobStatusQueued || got.WorkerID != nil {
		t.Fatalf("stale job not reset: %+v", got)
	}
	got, _ = repo.GetByID(ctx, fresh.ID)
	if got.Status != entities.AnalysisJobStatusProcessing {
		t.Fatalf("fresh job touched: %+v", got)
	}
}

func TestAnalysisJobListByStatusOldestFirst(t *testing.T) {
	db := newTestDB(t)
	repo := NewAnalysisJobRepository(db)
	ctx := context.Background()

	first := seedJob(t, repo)
	second := seedJob(t, repo)
	if err := db.Model(&entities.AnalysisJob{}).Where("id = ?", first.ID).
		Update("created_at", time.Now().Add(-time.Minute)).Error; err != nil {
		t.Fatalf("age job: %v", err)
	}

	jobs, err := repo.ListByStatus(ctx, entities.AnalysisJobStatusQueued, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("got %d jobs, want 2", len(jobs))
	}
	if jobs[0].ID != first.ID || jobs[1].ID != second.ID {
		t.Fatal("queue is not oldest first")
	}
}

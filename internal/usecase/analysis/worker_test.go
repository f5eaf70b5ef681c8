package analysis

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/itqanlabs/itqan-backend/internal/adapter/repository"
	"github.com/itqanlabs/itqan-backend/internal/domain/entities"
	"github.com/itqanlabs/itqan-backend/pkg/config"
)

// newJobsTestDB opens an in-memory SQLite database with the recitation
// and job tables. The DDL mirrors the Postgres migrations without the
// server-side defaults.
func newJobsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	ddl := []string{
		`CREATE TABLE recitations (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			org_id TEXT NOT NULL,
			assignment_id TEXT,
			surah_number INTEGER NOT NULL,
			ayah_start INTEGER NOT NULL,
			ayah_end INTEGER NOT NULL,
			target_text TEXT NOT NULL,
			audio_key TEXT,
			audio_size_bytes INTEGER DEFAULT 0,
			duration_seconds REAL DEFAULT 0,
			audio_purged_at DATETIME,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE analysis_jobs (
			id TEXT PRIMARY KEY,
			recitation_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			org_id TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'queued',
			started_at DATETIME,
			completed_at DATETIME,
			retry_count INTEGER DEFAULT 0,
			max_retries INTEGER DEFAULT 3,
			last_error TEXT,
			worker_id TEXT,
			result TEXT,
			created_at DATETIME,
			updated_at DATETIME
		)`,
	}
	for _, stmt := range ddl {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}

	return db
}

func workerTestConfig() *config.Config {
	return &config.Config{
		Analysis: config.AnalysisConfig{
			WorkerCount:    1,
			PollInterval:   time.Second,
			AttemptTimeout: time.Second,
			MaxAttempts:    1,
		},
	}
}

// A claimed job whose recitation row was deleted has nothing to
// process. The worker must leave the job alone instead of marking it
// failed and alarming the user.
func TestRunJobSkipsWhenRecitationMissing(t *testing.T) {
	db := newJobsTestDB(t)
	jobsRepo := repository.NewAnalysisJobRepository(db)
	recRepo := repository.NewRecitationRepository(db)

	job := entities.NewAnalysisJob(uuid.New(), uuid.New(), uuid.New())
	if err := jobsRepo.Create(context.Background(), job); err != nil {
		t.Fatalf("seed job: %v", err)
	}

	pool := NewWorkerPool(jobsRepo, recRepo, nil, nil, nil, nil, nil, workerTestConfig(), zap.NewNop())
	pool.runJob(context.Background(), job, 0)

	fresh, err := jobsRepo.GetByID(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("reload job: %v", err)
	}
	if fresh.Status != entities.AnalysisJobStatusQueued {
		t.Fatalf("job status changed to %s", fresh.Status)
	}
	if fresh.LastError != nil {
		t.Fatalf("unexpected error recorded: %s", *fresh.LastError)
	}
}

func TestReprocessRequiresAdmin(t *testing.T) {
	db := newJobsTestDB(t)
	jobsRepo := repository.NewAnalysisJobRepository(db)
	svc := &Service{jobs: jobsRepo, logger: zap.NewNop()}

	orgID := uuid.New()
	student := entities.NewUser(orgID, "student@itqan.app", "Student")
	job := entities.NewAnalysisJob(uuid.New(), student.ID, orgID)
	if err := jobsRepo.Create(context.Background(), job); err != nil {
		t.Fatalf("seed job: %v", err)
	}
	if err := jobsRepo.MarkFailed(context.Background(), job.ID, "transcription failed"); err != nil {
		t.Fatalf("mark failed: %v", err)
	}

	// The job's own submitter cannot requeue it.
	if _, err := svc.Reprocess(context.Background(), job.ID, student); err == nil {
		t.Fatal("expected permission error for student")
	}
	fresh, err := jobsRepo.GetByID(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("reload job: %v", err)
	}
	if fresh.Status != entities.AnalysisJobStatusFailed {
		t.Fatalf("student reprocess changed status to %s", fresh.Status)
	}

	admin := entities.NewUser(orgID, "admin@itqan.app", "Admin")
	admin.Role = entities.RoleAdmin

	requeued, err := svc.Reprocess(context.Background(), job.ID, admin)
	if err != nil {
		t.Fatalf("admin reprocess: %v", err)
	}
	if requeued.Status != entities.AnalysisJobStatusQueued {
		t.Fatalf("expected queued got %s", requeued.Status)
	}
}

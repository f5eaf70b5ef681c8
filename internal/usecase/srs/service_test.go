package srs

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/itqanlabs/itqan-backend/internal/adapter/repository"
	"github.com/itqanlabs/itqan-backend/internal/domain/entities"
)

// newSrsTestDB opens an in-memory SQLite database with the plan and
// item tables. The DDL mirrors the Postgres migrations without the
// server-side defaults.
func newSrsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	ddl := []string{
		`CREATE TABLE memorization_plans (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			org_id TEXT NOT NULL,
			title TEXT NOT NULL,
			surah_number INTEGER NOT NULL,
			ayah_start INTEGER NOT NULL,
			ayah_end INTEGER NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE srs_items (
			id TEXT PRIMARY KEY,
			plan_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			surah_number INTEGER NOT NULL,
			ayah_number INTEGER NOT NULL,
			interval_days INTEGER NOT NULL DEFAULT 1,
			ease_factor REAL NOT NULL DEFAULT 2.5,
			repetitions INTEGER NOT NULL DEFAULT 0,
			due_at DATETIME NOT NULL,
			last_reviewed DATETIME,
			last_score REAL,
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

type scoreCall struct {
	orgID  uuid.UUID
	userID uuid.UUID
	score  float64
}

// recordingScores captures leaderboard awards for assertions.
type recordingScores struct {
	calls []scoreCall
	err   error
}

func (r *recordingScores) RecordScore(_ context.Context, orgID, userID uuid.UUID, score float64) error {
	r.calls = append(r.calls, scoreCall{orgID: orgID, userID: userID, score: score})
	return r.err
}

func seedPlanWithItem(t *testing.T, repo *repository.SrsRepository, user *entities.User) *entities.SrsItem {
	t.Helper()

	plan := entities.NewMemorizationPlan(user.ID, user.OrgID, "Al-Fatiha", 1, 1, 1)
	item := entities.NewSrsItem(plan.ID, user.ID, 1, 1)
	if err := repo.CreatePlan(context.Background(), plan, []entities.SrsItem{*item}); err != nil {
		t.Fatalf("seed plan: %v", err)
	}
	return item
}

func TestSubmitReviewFeedsLeaderboard(t *testing.T) {
	repo := repository.NewSrsRepository(newSrsTestDB(t))
	scores := &recordingScores{}
	svc := NewService(repo, scores, zap.NewNop())

	user := entities.NewUser(uuid.New(), "student@example.com", "Student")
	item := seedPlanWithItem(t, repo, user)

	if _, err := svc.SubmitReview(context.Background(), item.ID, 0.8, user); err != nil {
		t.Fatalf("SubmitReview: %v", err)
	}

	if len(scores.calls) != 1 {
		t.Fatalf("expected 1 score award, got %d", len(scores.calls))
	}
	call := scores.calls[0]
	if call.orgID != user.OrgID || call.userID != user.ID {
		t.Fatalf("award attributed to org %s user %s", call.orgID, call.userID)
	}
	if math.Abs(call.score-8) > 1e-9 {
		t.Fatalf("expected award of 8 points, got %v", call.score)
	}
}

func TestSubmitReviewSurvivesScoreRecorderFailure(t *testing.T) {
	repo := repository.NewSrsRepository(newSrsTestDB(t))
	scores := &recordingScores{err: errors.New("redis down")}
	svc := NewService(repo, scores, zap.NewNop())

	user := entities.NewUser(uuid.New(), "student@example.com", "Student")
	item := seedPlanWithItem(t, repo, user)

	updated, err := svc.SubmitReview(context.Background(), item.ID, 1.0, user)
	if err != nil {
		t.Fatalf("SubmitReview: %v", err)
	}
	if updated.Repetitions != 1 {
		t.Fatalf("review not applied: repetitions = %d", updated.Repetitions)
	}
}

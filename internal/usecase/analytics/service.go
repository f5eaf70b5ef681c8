// Package analytics builds per-user progress aggregates. Live queries
// serve the dashboard; a nightly cron writes one snapshot row per
// active user so historical charts stay cheap.
package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "github.com/itqanlabs/itqan-backend/errors"
	"github.com/itqanlabs/itqan-backend/internal/adapter/repository"
	"github.com/itqanlabs/itqan-backend/internal/domain/entities"
)

// UserStats is the live dashboard aggregate.
type UserStats struct {
	UserID               uuid.UUID `json:"user_id"`
	RecitationsSubmitted int64     `json:"recitations_submitted"`
	AnalysesCompleted    int64     `json:"analyses_completed"`
	AnalysesFailed       int64     `json:"analyses_failed"`
	AverageScore         float64   `json:"average_score"`
	BestScore            float64   `json:"best_score"`
	ReviewsDue           int64     `json:"reviews_due"`
}

// Service computes aggregates and writes nightly snapshots.
type Service struct {
	db        *gorm.DB
	snapshots *repository.SnapshotRepository
	users     *repository.UserRepository
	srs       *repository.SrsRepository
	logger    *zap.Logger
}

// NewService creates the analytics service
func NewService(
	db *gorm.DB,
	snapshots *repository.SnapshotRepository,
	users *repository.UserRepository,
	srs *repository.SrsRepository,
	logger *zap.Logger,
) *Service {
	return &Service{db: db, snapshots: snapshots, users: users, srs: srs, logger: logger}
}

// scoreRow carries the score aggregate scan target.
type scoreRow struct {
	Avg  float64
	Best float64
}

// UserStats computes the live aggregate for one user since a cutoff.
// A zero cutoff means all time.
func (s *Service) UserStats(ctx context.Context, userID uuid.UUID, since time.Time) (*UserStats, error) {
	stats := &UserStats{UserID: userID}

	q := s.db.WithContext(ctx).Model(&entities.Recitation{}).Where("user_id = ?", userID)
	if !since.IsZero() {
		q = q.Where("created_at >= ?", since)
	}
	if err := q.Count(&stats.RecitationsSubmitted).Error; err != nil {
		return nil, apperrors.ErrDBQueryFailed("count recitations", err)
	}

	jobQuery := func(status entities.AnalysisJobStatus) *gorm.DB {
		q := s.db.WithContext(ctx).Model(&entities.AnalysisJob{}).
			Where("user_id = ? AND status = ?", userID, status)
		if !since.IsZero() {
			q = q.Where("created_at >= ?", since)
		}
		return q
	}
	if err := jobQuery(entities.AnalysisJobStatusDone).Count(&stats.AnalysesCompleted).Error; err != nil {
		return nil, apperrors.ErrDBQueryFailed("count completed jobs", err)
	}
	if err := jobQuery(entities.AnalysisJobStatusFailed).Count(&stats.AnalysesFailed).Error; err != nil {
		return nil, apperrors.ErrDBQueryFailed("count failed jobs", err)
	}

	// Scores live inside the jsonb result column.
	var row scoreRow
	scoreQ := s.db.WithContext(ctx).Model(&entities.AnalysisJob{}).
		Select("COALESCE(AVG((result->>'overall_score')::float), 0) AS avg, COALESCE(MAX((result->>'overall_score')::float), 0) AS best").
		Where("user_id = ? AND status = ?", userID, entities.AnalysisJobStatusDone)
	if !since.IsZero() {
		scoreQ = scoreQ.Where("created_at >= ?", since)
	}
	if err := scoreQ.Scan(&row).Error; err != nil {
		return nil, apperrors.ErrDBQueryFailed("aggregate scores", err)
	}
	stats.AverageScore = row.Avg
	stats.BestScore = row.Best

	due, err := s.srs.CountDueItems(ctx, userID, time.Now())
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("count due items", err)
	}
	stats.ReviewsDue = due

	return stats, nil
}

// History returns a user's snapshot rows for the last n days.
func (s *Service) History(ctx context.Context, userID uuid.UUID, days int) ([]entities.AnalyticsSnapshot, error) {
	if days <= 0 {
		days = 30
	}
	to := time.Now()
	from := to.AddDate(0, 0, -days)
	snapshots, err := s.snapshots.ListByUserRange(ctx, userID, from, to)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("list snapshots", err)
	}
	return snapshots, nil
}

// Run is the nightly cron entry point: it snapshots the previous day
// for every active user.
func (s *Service) Run(ctx context.Context) {
	if err := s.SnapshotDay(ctx, time.Now().AddDate(0, 0, -1)); err != nil {
		s.logger.Error("analytics snapshot failed", zap.Error(err))
	}
}

// SnapshotDay writes one snapshot per active user covering the given
// calendar day. Rerunning for the same day overwrites cleanly.
func (s *Service) SnapshotDay(ctx context.Context, day time.Time) error {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var orgIDs []uuid.UUID
	if err := s.db.WithContext(ctx).Model(&entities.User{}).
		Distinct("org_id").Pluck("org_id", &orgIDs).Error; err != nil {
		return err
	}

	written := 0
	for _, orgID := range orgIDs {
		users, err := s.users.ListByOrg(ctx, orgID)
		if err != nil {
			s.logger.Warn("failed to list users for snapshot",
				zap.String("org_id", orgID.String()),
				zap.Error(err),
			)
			continue
		}
		for _, user := range users {
			snapshot, err := s.buildSnapshot(ctx, &user, dayStart, dayEnd)
			if err != nil {
				s.logger.Warn("failed to build snapshot",
					zap.String("user_id", user.ID.String()),
					zap.Error(err),
				)
				continue
			}
			if err := s.snapshots.Upsert(ctx, snapshot); err != nil {
				s.logger.Warn("failed to write snapshot",
					zap.String("user_id", user.ID.String()),
					zap.Error(err),
				)
				continue
			}
			written++
		}
	}

	s.logger.Info("analytics snapshots written",
		zap.Time("day", dayStart),
		zap.Int("count", written),
	)
	return nil
}

func (s *Service) buildSnapshot(ctx context.Context, user *entities.User, dayStart, dayEnd time.Time) (*entities.AnalyticsSnapshot, error) {
	snapshot := &entities.AnalyticsSnapshot{
		ID:     uuid.New(),
		UserID: user.ID,
		OrgID:  user.OrgID,
		Day:    dayStart,
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&entities.Recitation{}).
		Where("user_id = ? AND created_at >= ? AND created_at < ?", user.ID, dayStart, dayEnd).
		Count(&count).Error; err != nil {
		return nil, err
	}
	snapshot.RecitationsSubmitted = int(count)

	if err := s.db.WithContext(ctx).Model(&entities.AnalysisJob{}).
		Where("user_id = ? AND status = ? AND completed_at >= ? AND completed_at < ?",
			user.ID, entities.AnalysisJobStatusDone, dayStart, dayEnd).
		Count(&count).Error; err != nil {
		return nil, err
	}
	snapshot.AnalysesCompleted = int(count)

	if err := s.db.WithContext(ctx).Model(&entities.AnalysisJob{}).
		Where("user_id = ? AND status = ? AND completed_at >= ? AND completed_at < ?",
			user.ID, entities.AnalysisJobStatusFailed, dayStart, dayEnd).
		Count(&count).Error; err != nil {
		return nil, err
	}
	snapshot.AnalysesFailed = int(count)

	var row scoreRow
	if err := s.db.WithContext(ctx).Model(&entities.AnalysisJob{}).
		Select("COALESCE(AVG((result->>'overall_score')::float), 0) AS avg, COALESCE(MAX((result->>'overall_score')::float), 0) AS best").
		Where("user_id = ? AND status = ? AND completed_at >= ? AND completed_at < ?",
			user.ID, entities.AnalysisJobStatusDone, dayStart, dayEnd).
		Scan(&row).Error; err != nil {
		return nil, err
	}
	snapshot.AverageScore = row.Avg
	snapshot.BestScore = row.Best

	if err := s.db.WithContext(ctx).Model(&entities.SrsItem{}).
		Where("user_id = ? AND last_reviewed >= ? AND last_reviewed < ?", user.ID, dayStart, dayEnd).
		Count(&count).Error; err != nil {
		return nil, err
	}
	snapshot.ReviewsDone = int(count)

	return snapshot, nil
}

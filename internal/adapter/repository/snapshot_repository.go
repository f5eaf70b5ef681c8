package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/itqanlabs/itqan-backend/internal/domain/entities"
)

// SnapshotRepository handles analytics snapshot data operations
type SnapshotRepository struct {
	db *gorm.DB
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(db *gorm.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Upsert writes a snapshot, replacing any existing row for the same
// user and day. Rerunning the nightly job is safe.
func (r *SnapshotRepository) Upsert(ctx context.Context, snapshot *entities.AnalyticsSnapshot) error {
	if snapshot == nil {
		return errors.New("snapshot cannot be nil")
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "day"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"recitations_submitted",
				"analyses_completed",
				"analyses_failed",
				"average_score",
				"best_score",
				"reviews_done",
			}),
		}).
		Create(snapshot).Error
}

// ListByUserRange retrieves a user's snapshots between two days inclusive
func (r *SnapshotRepository) ListByUserRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]entities.AnalyticsSnapshot, error) {
	var snapshots []entities.AnalyticsSnapshot
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND day >= ? AND day <= ?", userID, from, to).
		Order("day ASC").
		Find(&snapshots).Error; err != nil {
		return nil, err
	}
	return snapshots, nil
}

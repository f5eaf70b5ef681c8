package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/itqanlabs/itqan-backend/internal/domain/entities"
)

// AnalysisJobRepository handles analysis job data operations
type AnalysisJobRepository struct {
	db *gorm.DB
}

// NewAnalysisJobRepository creates a new analysis job repository
func NewAnalysisJobRepository(db *gorm.DB) *AnalysisJobRepository {
	return &AnalysisJobRepository{db: db}
}

// Create inserts a new analysis job. The partial unique index on
// (recitation_id) for non-terminal statuses makes a duplicate active job
// fail here.
func (r *AnalysisJobRepository) Create(ctx context.Context, job *entities.AnalysisJob) error {
	if job == nil {
		return errors.New("job cannot be nil")
	}
	return r.db.WithContext(ctx).Create(job).Error
}

// CreateTx inserts a job inside an existing transaction.
func (r *AnalysisJobRepository) CreateTx(tx *gorm.DB, job *entities.AnalysisJob) error {
	if job == nil {
		return errors.New("job cannot be nil")
	}
	return tx.Create(job).Error
}

// GetByID retrieves an analysis job by ID
func (r *AnalysisJobRepository) GetByID(ctx context.Context, jobID uuid.UUID) (*entities.AnalysisJob, error) {
	var job entities.AnalysisJob
	if err := r.db.WithContext(ctx).Where("id = ?", jobID).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

// GetLatestByRecitationID retrieves the most recent job for a recitation
func (r *AnalysisJobRepository) GetLatestByRecitationID(ctx context.Context, recitationID uuid.UUID) (*entities.AnalysisJob, error) {
	var job entities.AnalysisJob
	if err := r.db.WithContext(ctx).
		Where("recitation_id = ?", recitationID).
		Order("created_at DESC").
		First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

// GetActiveByRecitationID retrieves the queued or processing job for a
// recitation, if any.
func (r *AnalysisJobRepository) GetActiveByRecitationID(ctx context.Context, recitationID uuid.UUID) (*entities.AnalysisJob, error) {
	var job entities.AnalysisJob
	if err := r.db.WithContext(ctx).
		Where("recitation_id = ? AND status IN ?", recitationID,
			[]entities.AnalysisJobStatus{entities.AnalysisJobStatusQueued, entities.AnalysisJobStatusProcessing}).
		First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

// ListByUser retrieves a page of a user's jobs, newest first
func (r *AnalysisJobRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entities.AnalysisJob, error) {
	var jobs []entities.AnalysisJob
	if limit == 0 {
		limit = 20
	}
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// DeleteFailedByRecitation removes failed jobs left behind for a
// recitation, typically when its audio ages out of the retention
// window. Queued, processing, and done jobs are never touched.
func (r *AnalysisJobRepository) DeleteFailedByRecitation(ctx context.Context, recitationID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("recitation_id = ? AND status = ?", recitationID, entities.AnalysisJobStatusFailed).
		Delete(&entities.AnalysisJob{})
	return res.RowsAffected, res.Error
}

// ListByOrg retrieves an organization's analysis jobs, newest first
func (r *AnalysisJobRepository) ListByOrg(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]entities.AnalysisJob, error) {
	var jobs []entities.AnalysisJob
	if limit == 0 {
		limit = 20
	}
	if err := r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// ListByStatus retrieves jobs with a specific status, oldest first
func (r *AnalysisJobRepository) ListByStatus(ctx context.Context, status entities.AnalysisJobStatus, limit int) ([]entities.AnalysisJob, error) {
	var jobs []entities.AnalysisJob
	if limit == 0 {
		limit = 100
	}
	if err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC").
		Limit(limit).
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// Claim atomically moves a queued job to processing for one worker. It
// returns false when another worker won the race.
func (r *AnalysisJobRepository) Claim(ctx context.Context, jobID uuid.UUID, workerID string) (bool, error) {
	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&entities.AnalysisJob{}).
		Where("id = ? AND status = ?", jobID, entities.AnalysisJobStatusQueued).
		Updates(map[string]interface{}{
			"status":     entities.AnalysisJobStatusProcessing,
			"worker_id":  workerID,
			"started_at": now,
			"updated_at": now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// MarkCompleted stores the result and clears the error column
func (r *AnalysisJobRepository) MarkCompleted(ctx context.Context, jobID uuid.UUID, result *entities.AnalysisResult) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&entities.AnalysisJob{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":       entities.AnalysisJobStatusDone,
			"result":       result,
			"last_error":   nil,
			"completed_at": now,
			"updated_at":   now,
		}).Error
}

// MarkFailed records the terminal error and clears any partial result
func (r *AnalysisJobRepository) MarkFailed(ctx context.Context, jobID uuid.UUID, errMsg string) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&entities.AnalysisJob{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":       entities.AnalysisJobStatusFailed,
			"last_error":   errMsg,
			"result":       nil,
			"completed_at": now,
			"updated_at":   now,
		}).Error
}

// IncrementRetryCount increments the retry count
func (r *AnalysisJobRepository) IncrementRetryCount(ctx context.Context, jobID uuid.UUID, errMsg string) error {
	return r.db.WithContext(ctx).
		Model(&entities.AnalysisJob{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"retry_count": gorm.Expr("retry_count + 1"),
			"last_error":  errMsg,
			"updated_at":  time.Now(),
		}).Error
}

// Requeue atomically resets a failed job to queued. Returns false when
// the job is not in the failed state.
func (r *AnalysisJobRepository) Requeue(ctx context.Context, jobID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&entities.AnalysisJob{}).
		Where("id = ? AND status = ?", jobID, entities.AnalysisJobStatusFailed).
		Updates(map[string]interface{}{
			"status":       entities.AnalysisJobStatusQueued,
			"retry_count":  0,
			"last_error":   nil,
			"result":       nil,
			"worker_id":    nil,
			"started_at":   nil,
			"completed_at": nil,
			"updated_at":   time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CountCreatedSince counts a user's jobs created at or after since. Used
// by the submission gate's daily quota check.
func (r *AnalysisJobRepository) CountCreatedSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.AnalysisJob{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountCreatedSinceTx is CountCreatedSince inside a transaction, so the
// quota check and the insert see the same snapshot.
func (r *AnalysisJobRepository) CountCreatedSinceTx(tx *gorm.DB, userID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	if err := tx.
		Model(&entities.AnalysisJob{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ReclaimStale requeues processing jobs whose worker has not touched
// them since the cutoff. Covers workers that died mid-job.
func (r *AnalysisJobRepository) ReclaimStale(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&entities.AnalysisJob{}).
		Where("status = ? AND updated_at < ?", entities.AnalysisJobStatusProcessing, cutoff).
		Updates(map[string]interface{}{
			"status":     entities.AnalysisJobStatusQueued,
			"worker_id":  nil,
			"updated_at": time.Now(),
		})
	return res.RowsAffected, res.Error
}

package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/itqanlabs/itqan-backend/internal/domain/entities"
)

// RecitationRepository handles recitation data operations
type RecitationRepository struct {
	db *gorm.DB
}

// NewRecitationRepository creates a new recitation repository
func NewRecitationRepository(db *gorm.DB) *RecitationRepository {
	return &RecitationRepository{db: db}
}

// Create inserts a new recitation
func (r *RecitationRepository) Create(ctx context.Context, rec *entities.Recitation) error {
	if rec == nil {
		return errors.New("recitation cannot be nil")
	}
	return r.db.WithContext(ctx).Create(rec).Error
}

// CreateTx inserts a recitation inside an existing transaction.
func (r *RecitationRepository) CreateTx(tx *gorm.DB, rec *entities.Recitation) error {
	if rec == nil {
		return errors.New("recitation cannot be nil")
	}
	return tx.Create(rec).Error
}

// GetByID retrieves a recitation by ID
func (r *RecitationRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Recitation, error) {
	var rec entities.Recitation
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// ListByUser retrieves a page of a user's recitations, newest first
func (r *RecitationRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entities.Recitation, error) {
	var recs []entities.Recitation
	if limit == 0 {
		limit = 20
	}
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

// ListByAssignment retrieves recitations submitted against an assignment
func (r *RecitationRepository) ListByAssignment(ctx context.Context, assignmentID uuid.UUID) ([]entities.Recitation, error) {
	var recs []entities.Recitation
	if err := r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Order("created_at DESC").
		Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

// ListPurgeCandidates retrieves recitations older than the cutoff whose
// audio is still in storage. When keepUnanalyzed is set, only those with
// a completed analysis qualify.
func (r *RecitationRepository) ListPurgeCandidates(ctx context.Context, orgID uuid.UUID, cutoff time.Time, keepUnanalyzed bool, limit int) ([]entities.Recitation, error) {
	var recs []entities.Recitation
	if limit == 0 {
		limit = 200
	}
	query := r.db.WithContext(ctx).
		Where("org_id = ? AND created_at < ? AND audio_key IS NOT NULL", orgID, cutoff)
	if keepUnanalyzed {
		query = query.Where(
			"EXISTS (SELECT 1 FROM analysis_jobs j WHERE j.recitation_id = recitations.id AND j.status = ?)",
			entities.AnalysisJobStatusDone)
	}
	if err := query.Order("created_at ASC").Limit(limit).Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

// MarkAudioPurged clears the storage reference after the object is gone
func (r *RecitationRepository) MarkAudioPurged(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&entities.Recitation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"audio_key":       nil,
			"audio_purged_at": now,
			"updated_at":      now,
		}).Error
}

// CountByUserSince counts recitations a user created at or after since
func (r *RecitationRepository) CountByUserSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.Recitation{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

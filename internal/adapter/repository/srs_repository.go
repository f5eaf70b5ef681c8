package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/itqanlabs/itqan-backend/internal/domain/entities"
)

// SrsRepository handles memorization plan and review item data operations
type SrsRepository struct {
	db *gorm.DB
}

// NewSrsRepository creates a new SRS repository
func NewSrsRepository(db *gorm.DB) *SrsRepository {
	return &SrsRepository{db: db}
}

// CreatePlan inserts a plan and its seeded items in one transaction
func (r *SrsRepository) CreatePlan(ctx context.Context, plan *entities.MemorizationPlan, items []entities.SrsItem) error {
	if plan == nil {
		return errors.New("plan cannot be nil")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(plan).Error; err != nil {
			return err
		}
		if len(items) > 0 {
			if err := tx.CreateInBatches(items, 100).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GetPlanByID retrieves a plan by ID
func (r *SrsRepository) GetPlanByID(ctx context.Context, planID uuid.UUID) (*entities.MemorizationPlan, error) {
	var plan entities.MemorizationPlan
	if err := r.db.WithContext(ctx).Where("id = ?", planID).First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &plan, nil
}

// ListPlansByUser retrieves a user's plans, newest first
func (r *SrsRepository) ListPlansByUser(ctx context.Context, userID uuid.UUID) ([]entities.MemorizationPlan, error) {
	var plans []entities.MemorizationPlan
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

// GetItemByID retrieves a review item by ID
func (r *SrsRepository) GetItemByID(ctx context.Context, itemID uuid.UUID) (*entities.SrsItem, error) {
	var item entities.SrsItem
	if err := r.db.WithContext(ctx).Where("id = ?", itemID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// ListItemsByPlan retrieves all items of a plan in ayah order
func (r *SrsRepository) ListItemsByPlan(ctx context.Context, planID uuid.UUID) ([]entities.SrsItem, error) {
	var items []entities.SrsItem
	if err := r.db.WithContext(ctx).
		Where("plan_id = ?", planID).
		Order("surah_number ASC, ayah_number ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ListDueItems retrieves a user's items due at or before now, most
// overdue first.
func (r *SrsRepository) ListDueItems(ctx context.Context, userID uuid.UUID, now time.Time, limit int) ([]entities.SrsItem, error) {
	var items []entities.SrsItem
	if limit == 0 {
		limit = 50
	}
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND due_at <= ?", userID, now).
		Order("due_at ASC").
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// CountDueItems counts a user's currently due items
func (r *SrsRepository) CountDueItems(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.SrsItem{}).
		Where("user_id = ? AND due_at <= ?", userID, now).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// UpdateItem saves the full review item row
func (r *SrsRepository) UpdateItem(ctx context.Context, item *entities.SrsItem) error {
	if item == nil {
		return errors.New("item cannot be nil")
	}
	return r.db.WithContext(ctx).Save(item).Error
}

// CountReviewsSince counts items a user reviewed at or after since
func (r *SrsRepository) CountReviewsSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.SrsItem{}).
		Where("user_id = ? AND last_reviewed >= ?", userID, since).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// DeactivatePlan marks a plan inactive
func (r *SrsRepository) DeactivatePlan(ctx context.Context, planID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&entities.MemorizationPlan{}).
		Where("id = ?", planID).
		Updates(map[string]interface{}{
			"is_active":  false,
			"updated_at": time.Now(),
		}).Error
}

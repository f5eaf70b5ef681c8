package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/itqanlabs/itqan-backend/internal/domain/entities"
)

// AssignmentRepository handles assignment data operations
type AssignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository creates a new assignment repository
func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Create inserts a new assignment
func (r *AssignmentRepository) Create(ctx context.Context, a *entities.Assignment) error {
	if a == nil {
		return errors.New("assignment cannot be nil")
	}
	return r.db.WithContext(ctx).Create(a).Error
}

// GetByID retrieves an assignment by ID
func (r *AssignmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Assignment, error) {
	var a entities.Assignment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// ListByStudent retrieves a student's assignments, newest first
func (r *AssignmentRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]entities.Assignment, error) {
	var assignments []entities.Assignment
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

// ListByTeacher retrieves assignments created by a teacher, newest first
func (r *AssignmentRepository) ListByTeacher(ctx context.Context, teacherID uuid.UUID) ([]entities.Assignment, error) {
	var assignments []entities.Assignment
	if err := r.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Order("created_at DESC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

// MarkCompleted records completion time on an assignment
func (r *AssignmentRepository) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&entities.Assignment{}).
		Where("id = ? AND completed_at IS NULL", id).
		Updates(map[string]interface{}{
			"completed_at": now,
			"updated_at":   now,
		}).Error
}

package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/itqanlabs/itqan-backend/internal/domain/entities"
)

// SettingRepository handles organization settings data operations
type SettingRepository struct {
	db *gorm.DB
}

// NewSettingRepository creates a new setting repository
func NewSettingRepository(db *gorm.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

// GetByOrgID retrieves the settings row for an organization
func (r *SettingRepository) GetByOrgID(ctx context.Context, orgID uuid.UUID) (*entities.OrgSetting, error) {
	var setting entities.OrgSetting
	if err := r.db.WithContext(ctx).Where("org_id = ?", orgID).First(&setting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &setting, nil
}

// GetOrDefault retrieves the settings row, falling back to defaults when
// the organization has never saved settings.
func (r *SettingRepository) GetOrDefault(ctx context.Context, orgID uuid.UUID) (*entities.OrgSetting, error) {
	setting, err := r.GetByOrgID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if setting == nil {
		return entities.NewOrgSetting(orgID), nil
	}
	return setting, nil
}

// Upsert creates or updates the settings row for an organization
func (r *SettingRepository) Upsert(ctx context.Context, setting *entities.OrgSetting) error {
	if setting == nil {
		return errors.New("setting cannot be nil")
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "org_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"tajweed_enabled",
				"daily_analysis_limit",
				"max_duration_seconds",
				"retention_window_days",
				"keep_unanalyzed_audio",
				"updated_at",
			}),
		}).
		Create(setting).Error
}

// ListAll retrieves every settings row. The retention sweep iterates
// organizations through this.
func (r *SettingRepository) ListAll(ctx context.Context) ([]entities.OrgSetting, error) {
	var settings []entities.OrgSetting
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}

package entities

import (
	"time"

	"github.com/google/uuid"
)

// OrgSetting holds the per-organization knobs that gate recitation
// submission and control how long raw audio is retained.
type OrgSetting struct {
	ID    uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OrgID uuid.UUID `json:"org_id" gorm:"type:uuid;uniqueIndex;not null"`

	// Tajweed analysis gate
	TajweedEnabled      bool `json:"tajweed_enabled" gorm:"default:true;not null"`
	DailyAnalysisLimit  int  `json:"daily_analysis_limit" gorm:"default:20;not null"`
	MaxDurationSeconds  int  `json:"max_duration_seconds" gorm:"default:300;not null"`
	RetentionWindowDays int  `json:"retention_window_days" gorm:"default:90;not null"`

	// When true the retention sweep only removes audio for recitations
	// that already have a completed analysis.
	KeepUnanalyzedAudio bool `json:"keep_unanalyzed_audio" gorm:"default:true;not null"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// NewOrgSetting creates settings with the defaults applied.
func NewOrgSetting(orgID uuid.UUID) *OrgSetting {
	now := time.Now()
	return &OrgSetting{
		ID:                  uuid.New(),
		OrgID:               orgID,
		TajweedEnabled:      true,
		DailyAnalysisLimit:  20,
		MaxDurationSeconds:  300,
		RetentionWindowDays: 90,
		KeepUnanalyzedAudio: true,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// AnalysisEnabledFor resolves the effective Tajweed switch for a user:
// the user-level override wins when set, otherwise the org default.
func (s *OrgSetting) AnalysisEnabledFor(u *User) bool {
	if u != nil && u.TajweedEnabled != nil {
		return *u.TajweedEnabled
	}
	return s.TajweedEnabled
}

// RetentionWindow returns the configured window as a duration.
func (s *OrgSetting) RetentionWindow() time.Duration {
	return time.Duration(s.RetentionWindowDays) * 24 * time.Hour
}

// TableName specifies the table name for GORM
func (OrgSetting) TableName() string {
	return "org_settings"
}

package entities

import (
	"time"

	"github.com/google/uuid"
)

// AnalyticsSnapshot is one nightly per-user aggregate row. The cron job
// writes one snapshot per active user per day so progress dashboards can
// query a small table instead of scanning jobs.
type AnalyticsSnapshot struct {
	ID     uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index:idx_snapshot_user_day,unique"`
	OrgID  uuid.UUID `json:"org_id" gorm:"type:uuid;not null;index"`
	Day    time.Time `json:"day" gorm:"type:date;not null;index:idx_snapshot_user_day,unique"`

	RecitationsSubmitted int     `json:"recitations_submitted" gorm:"type:integer;default:0;not null"`
	AnalysesCompleted    int     `json:"analyses_completed" gorm:"type:integer;default:0;not null"`
	AnalysesFailed       int     `json:"analyses_failed" gorm:"type:integer;default:0;not null"`
	AverageScore         float64 `json:"average_score" gorm:"type:double precision;default:0;not null"`
	BestScore            float64 `json:"best_score" gorm:"type:double precision;default:0;not null"`
	ReviewsDone          int     `json:"reviews_done" gorm:"type:integer;default:0;not null"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (AnalyticsSnapshot) TableName() string {
	return "analytics_snapshots"
}

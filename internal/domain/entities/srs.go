package entities

import (
	"time"

	"github.com/google/uuid"
)

// MemorizationPlan is a student's plan to memorize a passage. Creating a
// plan seeds one SrsItem per ayah in the range.
type MemorizationPlan struct {
	ID     uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	OrgID  uuid.UUID `json:"org_id" gorm:"type:uuid;not null;index"`

	Title       string `json:"title" gorm:"type:varchar(255);not null"`
	SurahNumber int    `json:"surah_number" gorm:"type:integer;not null"`
	AyahStart   int    `json:"ayah_start" gorm:"type:integer;not null"`
	AyahEnd     int    `json:"ayah_end" gorm:"type:integer;not null"`

	IsActive bool `json:"is_active" gorm:"default:true;not null"`

	Items []SrsItem `json:"items,omitempty" gorm:"foreignKey:PlanID"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// NewMemorizationPlan creates an active plan for an ayah range.
func NewMemorizationPlan(userID, orgID uuid.UUID, title string, surah, ayahStart, ayahEnd int) *MemorizationPlan {
	now := time.Now()
	return &MemorizationPlan{
		ID:          uuid.New(),
		UserID:      userID,
		OrgID:       orgID,
		Title:       title,
		SurahNumber: surah,
		AyahStart:   ayahStart,
		AyahEnd:     ayahEnd,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// AyahCount returns how many ayat the plan covers.
func (p *MemorizationPlan) AyahCount() int {
	return p.AyahEnd - p.AyahStart + 1
}

// TableName specifies the table name for GORM
func (MemorizationPlan) TableName() string {
	return "memorization_plans"
}

// SrsItem is one ayah inside a plan with its spaced repetition state.
// New items start at interval 1 day and ease 2.5.
type SrsItem struct {
	ID     uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	PlanID uuid.UUID `json:"plan_id" gorm:"type:uuid;not null;index"`
	UserID uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`

	SurahNumber int `json:"surah_number" gorm:"type:integer;not null"`
	AyahNumber  int `json:"ayah_number" gorm:"type:integer;not null"`

	IntervalDays int     `json:"interval_days" gorm:"type:integer;default:1;not null"`
	EaseFactor   float64 `json:"ease_factor" gorm:"type:double precision;default:2.5;not null"`
	Repetitions  int     `json:"repetitions" gorm:"type:integer;default:0;not null"`

	DueAt        time.Time  `json:"due_at" gorm:"type:timestamp;not null;index"`
	LastReviewed *time.Time `json:"last_reviewed,omitempty" gorm:"type:timestamp"`
	LastScore    *float64   `json:"last_score,omitempty" gorm:"type:double precision"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// NewSrsItem seeds a review item due immediately.
func NewSrsItem(planID, userID uuid.UUID, surah, ayah int) *SrsItem {
	now := time.Now()
	return &SrsItem{
		ID:           uuid.New(),
		PlanID:       planID,
		UserID:       userID,
		SurahNumber:  surah,
		AyahNumber:   ayah,
		IntervalDays: 1,
		EaseFactor:   2.5,
		Repetitions:  0,
		DueAt:        now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// IsDue reports whether the item should be reviewed at t.
func (i *SrsItem) IsDue(t time.Time) bool {
	return !i.DueAt.After(t)
}

// TableName specifies the table name for GORM
func (SrsItem) TableName() string {
	return "srs_items"
}

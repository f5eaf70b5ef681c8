package entities

import (
	"time"

	"github.com/google/uuid"
)

// Recitation is one recorded recitation attempt: a student, the passage
// they recited, and the uploaded audio object.
type Recitation struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID       uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	OrgID        uuid.UUID  `json:"org_id" gorm:"type:uuid;not null;index"`
	AssignmentID *uuid.UUID `json:"assignment_id,omitempty" gorm:"type:uuid;index"`

	// Passage reference
	SurahNumber int `json:"surah_number" gorm:"type:integer;not null"`
	AyahStart   int `json:"ayah_start" gorm:"type:integer;not null"`
	AyahEnd     int `json:"ayah_end" gorm:"type:integer;not null"`

	// The expected text of the passage, stored at submission time so the
	// analysis does not depend on a mushaf lookup later.
	TargetText string `json:"target_text" gorm:"type:text;not null"`

	// Audio object in storage. AudioKey is cleared when the retention
	// sweep removes the object.
	AudioKey        *string `json:"audio_key,omitempty" gorm:"type:varchar(500)"`
	AudioSizeBytes  int64   `json:"audio_size_bytes" gorm:"type:bigint;default:0"`
	DurationSeconds float64 `json:"duration_seconds" gorm:"type:double precision;default:0"`

	AudioPurgedAt *time.Time `json:"audio_purged_at,omitempty" gorm:"type:timestamp"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// NewRecitation creates a recitation record for an uploaded recording.
func NewRecitation(userID, orgID uuid.UUID, surah, ayahStart, ayahEnd int, targetText, audioKey string) *Recitation {
	now := time.Now()
	return &Recitation{
		ID:          uuid.New(),
		UserID:      userID,
		OrgID:       orgID,
		SurahNumber: surah,
		AyahStart:   ayahStart,
		AyahEnd:     ayahEnd,
		TargetText:  targetText,
		AudioKey:    &audioKey,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// HasAudio reports whether the raw recording is still in storage.
func (r *Recitation) HasAudio() bool {
	return r.AudioKey != nil && *r.AudioKey != ""
}

// MarkAudioPurged clears the storage reference after the object is gone.
func (r *Recitation) MarkAudioPurged() {
	now := time.Now()
	r.AudioKey = nil
	r.AudioPurgedAt = &now
	r.UpdatedAt = now
}

// TableName specifies the table name for GORM
func (Recitation) TableName() string {
	return "recitations"
}

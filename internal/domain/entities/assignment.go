package entities

import (
	"time"

	"github.com/google/uuid"
)

// Assignment is a passage a teacher assigns to a student. When AutoAI is
// set, each recitation submitted against the assignment is queued for
// Tajweed analysis automatically (still subject to the submission gate).
type Assignment struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OrgID     uuid.UUID `json:"org_id" gorm:"type:uuid;not null;index"`
	TeacherID uuid.UUID `json:"teacher_id" gorm:"type:uuid;not null;index"`
	StudentID uuid.UUID `json:"student_id" gorm:"type:uuid;not null;index"`

	Title       string `json:"title" gorm:"type:varchar(255);not null"`
	SurahNumber int    `json:"surah_number" gorm:"type:integer;not null"`
	AyahStart   int    `json:"ayah_start" gorm:"type:integer;not null"`
	AyahEnd     int    `json:"ayah_end" gorm:"type:integer;not null"`

	AutoAI bool       `json:"auto_ai" gorm:"default:true;not null"`
	DueAt  *time.Time `json:"due_at,omitempty" gorm:"type:timestamp"`

	CompletedAt *time.Time `json:"completed_at,omitempty" gorm:"type:timestamp"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// NewAssignment creates an open assignment.
func NewAssignment(orgID, teacherID, studentID uuid.UUID, title string, surah, ayahStart, ayahEnd int) *Assignment {
	now := time.Now()
	return &Assignment{
		ID:          uuid.New(),
		OrgID:       orgID,
		TeacherID:   teacherID,
		StudentID:   studentID,
		Title:       title,
		SurahNumber: surah,
		AyahStart:   ayahStart,
		AyahEnd:     ayahEnd,
		AutoAI:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// IsCompleted reports whether the assignment has been marked done.
func (a *Assignment) IsCompleted() bool {
	return a.CompletedAt != nil
}

// MarkCompleted records completion time.
func (a *Assignment) MarkCompleted() {
	now := time.Now()
	a.CompletedAt = &now
	a.UpdatedAt = now
}

// TableName specifies the table name for GORM
func (Assignment) TableName() string {
	return "assignments"
}

// Package dto holds the HTTP request and response shapes.
package dto

import "github.com/google/uuid"

// UploadURLRequest asks for a presigned audio upload URL.
type UploadURLRequest struct {
	Extension string `json:"extension" validate:"omitempty,oneof=wav mp3 m4a ogg webm"`
}

// UploadURLResponse carries the presigned URL and the object key the
// client must echo back on submission.
type UploadURLResponse struct {
	AudioKey  string `json:"audio_key"`
	UploadURL string `json:"upload_url"`
}

// SubmitRecitationRequest queues an uploaded recitation for analysis.
type SubmitRecitationRequest struct {
	AssignmentID    *uuid.UUID `json:"assignment_id,omitempty"`
	SurahNumber     int        `json:"surah_number" validate:"required,min=1,max=114"`
	AyahStart       int        `json:"ayah_start" validate:"required,min=1"`
	AyahEnd         int        `json:"ayah_end" validate:"required,min=1,gtefield=AyahStart"`
	TargetText      string     `json:"target_text" validate:"required"`
	AudioKey        string     `json:"audio_key" validate:"required"`
	DurationSeconds float64    `json:"duration_seconds" validate:"omitempty,min=0"`
}

// SubmitRecitationResponse returns the created recitation and job IDs.
type SubmitRecitationResponse struct {
	RecitationID uuid.UUID `json:"recitation_id"`
	JobID        uuid.UUID `json:"job_id"`
	Status       string    `json:"status"`
}

// SubmissionRejectedResponse reports a policy gate refusal. The request
// itself succeeded, so it ships with a 200 and no job is created.
type SubmissionRejectedResponse struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

// CreatePlanRequest starts a memorization plan.
type CreatePlanRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	SurahNumber int    `json:"surah_number" validate:"required,min=1,max=114"`
	AyahStart   int    `json:"ayah_start" validate:"required,min=1"`
	AyahEnd     int    `json:"ayah_end" validate:"required,min=1,gtefield=AyahStart"`
}

// SubmitReviewRequest applies a review score to an item.
type SubmitReviewRequest struct {
	Score float64 `json:"score" validate:"min=0,max=1"`
}

// UpdateSettingsRequest updates organization settings.
type UpdateSettingsRequest struct {
	TajweedEnabled      *bool `json:"tajweed_enabled"`
	DailyAnalysisLimit  *int  `json:"daily_analysis_limit" validate:"omitempty,min=0"`
	MaxDurationSeconds  *int  `json:"max_duration_seconds" validate:"omitempty,min=0"`
	RetentionWindowDays *int  `json:"retention_window_days" validate:"omitempty,min=0"`
	KeepUnanalyzedAudio *bool `json:"keep_unanalyzed_audio"`
}

// TajweedOverrideRequest sets or clears a user's analysis override.
type TajweedOverrideRequest struct {
	Enabled *bool `json:"enabled"`
}

// CreateAssignmentRequest creates an assignment for a student.
type CreateAssignmentRequest struct {
	StudentID   uuid.UUID `json:"student_id" validate:"required"`
	Title       string    `json:"title" validate:"required,max=255"`
	SurahNumber int       `json:"surah_number" validate:"required,min=1,max=114"`
	AyahStart   int       `json:"ayah_start" validate:"required,min=1"`
	AyahEnd     int       `json:"ayah_end" validate:"required,min=1,gtefield=AyahStart"`
	AutoAI      *bool     `json:"auto_ai"`
}

// RefreshRequest exchanges a refresh token for a new pair. The token
// may also arrive via the refresh_token cookie.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RetentionSweepRequest triggers a manual sweep.
type RetentionSweepRequest struct {
	DryRun bool `json:"dry_run"`
}

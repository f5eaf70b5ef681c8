package entities

import (
	"time"

	"github.com/google/uuid"
)

// AnalysisJobStatus represents the lifecycle state of an analysis job
type AnalysisJobStatus string

const (
	AnalysisJobStatusQueued     AnalysisJobStatus = "queued"     // Waiting for a worker
	AnalysisJobStatusProcessing AnalysisJobStatus = "processing" // Claimed by a worker
	AnalysisJobStatusDone       AnalysisJobStatus = "done"       // Result persisted
	AnalysisJobStatusFailed     AnalysisJobStatus = "failed"     // All attempts exhausted
)

// IsTerminal reports whether the status admits no further transitions
// except an explicit requeue of a failed job.
func (s AnalysisJobStatus) IsTerminal() bool {
	return s == AnalysisJobStatusDone || s == AnalysisJobStatusFailed
}

// AnalysisJob is one queued Tajweed analysis run over a recitation.
// At most one non-terminal job may exist per recitation; the database
// enforces this with a partial unique index.
type AnalysisJob struct {
	ID           uuid.UUID         `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	RecitationID uuid.UUID         `json:"recitation_id" gorm:"type:uuid;not null;index"`
	UserID       uuid.UUID         `json:"user_id" gorm:"type:uuid;not null;index"`
	OrgID        uuid.UUID         `json:"org_id" gorm:"type:uuid;not null;index"`
	Status       AnalysisJobStatus `json:"status" gorm:"type:varchar(50);not null;index;default:'queued'"`

	// Processing details
	StartedAt   *time.Time `json:"started_at,omitempty" gorm:"type:timestamp"`
	CompletedAt *time.Time `json:"completed_at,omitempty" gorm:"type:timestamp"`
	RetryCount  int        `json:"retry_count" gorm:"type:integer;default:0"`
	MaxRetries  int        `json:"max_retries" gorm:"type:integer;default:3"`
	LastError   *string    `json:"last_error,omitempty" gorm:"type:text"`
	WorkerID    *string    `json:"worker_id,omitempty" gorm:"type:varchar(100)"`

	// Result is set exactly when Status is done; LastError exactly when
	// Status is failed. Complete and Fail keep that in sync.
	Result *AnalysisResult `json:"result,omitempty" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// NewAnalysisJob creates a queued job for a recitation.
func NewAnalysisJob(recitationID, userID, orgID uuid.UUID) *AnalysisJob {
	now := time.Now()
	return &AnalysisJob{
		ID:           uuid.New(),
		RecitationID: recitationID,
		UserID:       userID,
		OrgID:        orgID,
		Status:       AnalysisJobStatusQueued,
		RetryCount:   0,
		MaxRetries:   3,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// MarkProcessing records the claiming worker and start time.
func (j *AnalysisJob) MarkProcessing(workerID string) {
	now := time.Now()
	j.Status = AnalysisJobStatusProcessing
	j.WorkerID = &workerID
	j.StartedAt = &now
	j.UpdatedAt = now
}

// Complete stores the result and clears any previous error.
func (j *AnalysisJob) Complete(result *AnalysisResult) {
	now := time.Now()
	j.Status = AnalysisJobStatusDone
	j.Result = result
	j.LastError = nil
	j.CompletedAt = &now
	j.UpdatedAt = now
}

// Fail records the terminal error and clears any partial result.
func (j *AnalysisJob) Fail(errMsg string) {
	now := time.Now()
	j.Status = AnalysisJobStatusFailed
	j.LastError = &errMsg
	j.Result = nil
	j.CompletedAt = &now
	j.UpdatedAt = now
}

// IncrementRetry bumps the attempt counter inside a processing run.
func (j *AnalysisJob) IncrementRetry(errMsg string) {
	j.RetryCount++
	j.LastError = &errMsg
	j.UpdatedAt = time.Now()
}

// CanRequeue reports whether the job may return to the queue. Failed is
// the only state with a way back.
func (j *AnalysisJob) CanRequeue() bool {
	return j.Status == AnalysisJobStatusFailed
}

// Requeue resets a failed job so workers pick it up again.
func (j *AnalysisJob) Requeue() {
	j.Status = AnalysisJobStatusQueued
	j.RetryCount = 0
	j.LastError = nil
	j.Result = nil
	j.WorkerID = nil
	j.StartedAt = nil
	j.CompletedAt = nil
	j.UpdatedAt = time.Now()
}

// TableName specifies the table name for GORM
func (AnalysisJob) TableName() string {
	return "analysis_jobs"
}

package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "github.com/itqanlabs/itqan-backend/errors"
	"github.com/itqanlabs/itqan-backend/internal/adapter/repository"
	"github.com/itqanlabs/itqan-backend/internal/domain/entities"
	"github.com/itqanlabs/itqan-backend/internal/infrastructure/metrics"
	"github.com/itqanlabs/itqan-backend/internal/infrastructure/storage"
	"github.com/itqanlabs/itqan-backend/pkg/config"
)

// Notifier delivers user-facing notifications about job outcomes.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, typ entities.NotificationType, title, body string)
}

// ScoreRecorder feeds completed scores into the leaderboard.
type ScoreRecorder interface {
	RecordScore(ctx context.Context, orgID, userID uuid.UUID, score float64) error
}

// Service owns the recitation submission flow and job queries. The
// worker pool that drains the queue lives in worker.go.
type Service struct {
	db          *gorm.DB
	recitations *repository.RecitationRepository
	jobs        *repository.AnalysisJobRepository
	settings    *repository.SettingRepository
	users       *repository.UserRepository
	assignments *repository.AssignmentRepository
	storage     *storage.MinIOClient
	progress    *ProgressPublisher
	notifier    Notifier
	scores      ScoreRecorder
	cfg         *config.Config
	logger      *zap.Logger
}

// NewService creates the analysis service
func NewService(
	db *gorm.DB,
	recitations *repository.RecitationRepository,
	jobs *repository.AnalysisJobRepository,
	settings *repository.SettingRepository,
	users *repository.UserRepository,
	assignments *repository.AssignmentRepository,
	storageClient *storage.MinIOClient,
	progress *ProgressPublisher,
	notifier Notifier,
	scores ScoreRecorder,
	cfg *config.Config,
	logger *zap.Logger,
) *Service {
	return &Service{
		db:          db,
		recitations: recitations,
		jobs:        jobs,
		settings:    settings,
		users:       users,
		assignments: assignments,
		storage:     storageClient,
		progress:    progress,
		notifier:    notifier,
		scores:      scores,
		cfg:         cfg,
		logger:      logger,
	}
}

// SubmitInput is the payload for queueing a recitation for analysis.
type SubmitInput struct {
	UserID          uuid.UUID
	AssignmentID    *uuid.UUID
	SurahNumber     int
	AyahStart       int
	AyahEnd         int
	TargetText      string
	AudioKey        string
	DurationSeconds float64
}

// SubmitOutcome is the result of a submission attempt. A gate refusal
// is reported through Rejection with Recitation and Job left nil; it is
// not an error and nothing is persisted.
type SubmitOutcome struct {
	Rejection  *GateRejection        `json:"rejection,omitempty"`
	Recitation *entities.Recitation  `json:"recitation,omitempty"`
	Job        *entities.AnalysisJob `json:"job,omitempty"`
}

// errGateRejected aborts the submission transaction without treating
// the rollback as a failure.
var errGateRejected = errors.New("submission gate rejected")

// Submit runs the submission gate and, if it passes, creates the
// recitation and its queued job in one transaction. The quota count
// runs inside the same transaction as the insert so two racing
// submissions cannot both slip under the daily limit.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*SubmitOutcome, error) {
	user, err := s.users.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("get user", err)
	}
	if user == nil {
		return nil, apperrors.ErrUserNotFound()
	}

	setting, err := s.settings.GetOrDefault(ctx, user.OrgID)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("get org settings", err)
	}

	// Recitations submitted outside an assignment are always eligible
	// for auto analysis; assignment submissions honor the teacher's flag.
	autoAI := true
	if in.AssignmentID != nil {
		assignment, err := s.assignments.GetByID(ctx, *in.AssignmentID)
		if err != nil {
			return nil, apperrors.ErrDBQueryFailed("get assignment", err)
		}
		if assignment == nil || assignment.StudentID != user.ID {
			return nil, apperrors.ErrAssignmentNotFound(in.AssignmentID.String())
		}
		autoAI = assignment.AutoAI
	}

	// Record the true object size; also verifies the upload happened.
	info, err := s.storage.StatObject(ctx, in.AudioKey)
	if err != nil {
		return nil, apperrors.ErrStorageFailed("stat audio object", err)
	}

	rec := entities.NewRecitation(user.ID, user.OrgID, in.SurahNumber, in.AyahStart, in.AyahEnd, in.TargetText, in.AudioKey)
	rec.AssignmentID = in.AssignmentID
	rec.AudioSizeBytes = info.Size
	rec.DurationSeconds = in.DurationSeconds

	job := entities.NewAnalysisJob(rec.ID, user.ID, user.OrgID)
	job.MaxRetries = s.cfg.Analysis.MaxAttempts

	var rejection *GateRejection
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		jobsToday, err := s.jobs.CountCreatedSinceTx(tx, user.ID, startOfDay(time.Now()))
		if err != nil {
			return apperrors.ErrDBQueryFailed("count jobs today", err)
		}
		if rejection = CheckSubmissionGate(setting, user, autoAI, in.DurationSeconds, jobsToday); rejection != nil {
			return errGateRejected
		}
		if err := s.recitations.CreateTx(tx, rec); err != nil {
			return apperrors.ErrDBQueryFailed("create recitation", err)
		}
		if err := s.jobs.CreateTx(tx, job); err != nil {
			return apperrors.ErrDBQueryFailed("create analysis job", err)
		}
		return nil
	})
	if errors.Is(err, errGateRejected) {
		s.logger.Info("submission rejected by gate",
			zap.String("user_id", user.ID.String()),
			zap.String("reason", rejection.Reason),
		)
		return &SubmitOutcome{Rejection: rejection}, nil
	}
	if err != nil {
		return nil, err
	}

	metrics.Analysis().IncJobQueued()
	s.logger.Info("analysis job queued",
		zap.String("job_id", job.ID.String()),
		zap.String("recitation_id", rec.ID.String()),
		zap.String("user_id", user.ID.String()),
	)

	return &SubmitOutcome{Recitation: rec, Job: job}, nil
}

// RequestUploadURL returns a presigned PUT URL for a new audio object.
// The key encodes the user so uploads stay namespaced.
func (s *Service) RequestUploadURL(ctx context.Context, userID uuid.UUID, extension string) (key string, url string, err error) {
	if extension == "" {
		extension = "wav"
	}
	key = fmt.Sprintf("recitations/%s/%s.%s", userID, uuid.New(), extension)
	url, err = s.storage.PresignedPutURL(ctx, key, 15*time.Minute)
	if err != nil {
		return "", "", apperrors.ErrStorageFailed("presign upload", err)
	}
	return key, url, nil
}

// GetJob returns a job after checking the requester may see it.
// Teachers and admins can inspect any job in their organization.
func (s *Service) GetJob(ctx context.Context, jobID uuid.UUID, requester *entities.User) (*entities.AnalysisJob, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("get job", err)
	}
	if job == nil {
		return nil, apperrors.ErrAnalysisJobNotFound(jobID.String())
	}
	if job.UserID != requester.ID && !(requester.CanTeach() && job.OrgID == requester.OrgID) {
		return nil, apperrors.ErrPermissionDenied("view analysis job")
	}
	return job, nil
}

// ListHistory returns a page of the user's jobs, newest first.
func (s *Service) ListHistory(ctx context.Context, requester *entities.User, limit, offset int) ([]entities.AnalysisJob, error) {
	var (
		jobs []entities.AnalysisJob
		err  error
	)
	// Students see their own history; teachers and admins see the whole
	// organization's.
	if requester.CanTeach() {
		jobs, err = s.jobs.ListByOrg(ctx, requester.OrgID, limit, offset)
	} else {
		jobs, err = s.jobs.ListByUser(ctx, requester.ID, limit, offset)
	}
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("list jobs", err)
	}
	return jobs, nil
}

// Reprocess puts a failed job back on the queue. Operators only: the
// route is admin-gated and the role is re-checked here. Any other
// status is rejected: done results are immutable and active jobs are
// already owned by a worker.
func (s *Service) Reprocess(ctx context.Context, jobID uuid.UUID, requester *entities.User) (*entities.AnalysisJob, error) {
	if !requester.IsAdmin() {
		return nil, apperrors.ErrPermissionDenied("reprocess analysis job")
	}

	job, err := s.GetJob(ctx, jobID, requester)
	if err != nil {
		return nil, err
	}
	if !job.CanRequeue() {
		return nil, apperrors.ErrAnalysisNotReprocessable(jobID.String(), string(job.Status))
	}

	ok, err := s.jobs.Requeue(ctx, jobID)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("requeue job", err)
	}
	if !ok {
		// Status changed between the read and the update.
		fresh, ferr := s.jobs.GetByID(ctx, jobID)
		status := "unknown"
		if ferr == nil && fresh != nil {
			status = string(fresh.Status)
		}
		return nil, apperrors.ErrAnalysisNotReprocessable(jobID.String(), status)
	}

	metrics.Analysis().IncJobRequeued()
	s.logger.Info("analysis job requeued", zap.String("job_id", jobID.String()))

	return s.jobs.GetByID(ctx, jobID)
}

// AudioURL returns a presigned playback URL for a recitation the
// requester owns or supervises.
func (s *Service) AudioURL(ctx context.Context, recitationID uuid.UUID, requester *entities.User) (string, error) {
	rec, err := s.recitations.GetByID(ctx, recitationID)
	if err != nil {
		return "", apperrors.ErrDBQueryFailed("get recitation", err)
	}
	if rec == nil {
		return "", apperrors.ErrRecitationNotFound(recitationID.String())
	}
	if rec.UserID != requester.ID && !(requester.CanTeach() && rec.OrgID == requester.OrgID) {
		return "", apperrors.ErrPermissionDenied("access recording")
	}
	if !rec.HasAudio() {
		return "", apperrors.ErrNotFound("Recording audio")
	}
	url, err := s.storage.PresignedGetURL(ctx, *rec.AudioKey, time.Hour)
	if err != nil {
		return "", apperrors.ErrStorageFailed("presign playback", err)
	}
	return url, nil
}

// Progress exposes the publisher so the HTTP layer can subscribe.
func (s *Service) Progress() *ProgressPublisher {
	return s.progress
}

// startOfDay returns local midnight for t. The daily quota resets on
// this boundary.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

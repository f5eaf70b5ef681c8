package analysis

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/itqanlabs/itqan-backend/internal/adapter/repository"
	"github.com/itqanlabs/itqan-backend/internal/domain/entities"
	"github.com/itqanlabs/itqan-backend/internal/infrastructure/metrics"
	"github.com/itqanlabs/itqan-backend/internal/infrastructure/storage"
	"github.com/itqanlabs/itqan-backend/pkg/config"
	"github.com/itqanlabs/itqan-backend/pkg/jobcontext"
	"github.com/itqanlabs/itqan-backend/pkg/stt"
)

// WorkerPool drains the analysis job queue. Each worker polls for
// queued jobs on a ticker, claims one atomically, and runs the pipeline:
// download audio, transcribe, align, score, persist. A separate routine
// reclaims jobs stranded by dead workers.
type WorkerPool struct {
	jobs        *repository.AnalysisJobRepository
	recitations *repository.RecitationRepository
	storage     *storage.MinIOClient
	transcriber stt.Transcriber
	checkers    []RuleChecker
	progress    *ProgressPublisher
	notifier    Notifier
	scores      ScoreRecorder
	cfg         *config.Config
	logger      *zap.Logger

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewWorkerPool creates the worker pool
func NewWorkerPool(
	jobs *repository.AnalysisJobRepository,
	recitations *repository.RecitationRepository,
	storageClient *storage.MinIOClient,
	transcriber stt.Transcriber,
	progress *ProgressPublisher,
	notifier Notifier,
	scores ScoreRecorder,
	cfg *config.Config,
	logger *zap.Logger,
) *WorkerPool {
	return &WorkerPool{
		jobs:        jobs,
		recitations: recitations,
		storage:     storageClient,
		transcriber: transcriber,
		checkers:    DefaultRuleCheckers(),
		progress:    progress,
		notifier:    notifier,
		scores:      scores,
		cfg:         cfg,
		logger:      logger,
	}
}

// Start launches the worker goroutines and the stale job reaper
func (p *WorkerPool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return fmt.Errorf("worker pool already running")
	}
	p.running = true
	p.stopChan = make(chan struct{})

	p.logger.Info("🚀 Starting analysis worker pool",
		zap.Int("worker_count", p.cfg.Analysis.WorkerCount),
	)

	for i := 0; i < p.cfg.Analysis.WorkerCount; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}

	p.wg.Add(1)
	go p.staleJobReaper(ctx)

	return nil
}

// Stop gracefully stops all worker goroutines
func (p *WorkerPool) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return fmt.Errorf("worker pool not running")
	}

	p.logger.Info("🛑 Stopping analysis worker pool...")
	close(p.stopChan)
	p.wg.Wait()
	p.running = false
	p.logger.Info("✅ Analysis worker pool stopped")

	return nil
}

// worker polls for queued jobs and processes one at a time
func (p *WorkerPool) worker(parentCtx context.Context, workerID int) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.Analysis.PollInterval)
	defer ticker.Stop()

	workerName := fmt.Sprintf("analysis-worker-%d", workerID)
	p.logger.Info("👷 Worker started", zap.String("worker", workerName))

	for {
		select {
		case <-p.stopChan:
			p.logger.Info("👷 Worker stopping", zap.String("worker", workerName))
			return

		case <-ticker.C:
			jobs, err := p.jobs.ListByStatus(parentCtx, entities.AnalysisJobStatusQueued, 5)
			if err != nil {
				p.logger.Error("❌ Failed to poll jobs",
					zap.String("worker", workerName),
					zap.Error(err),
				)
				continue
			}
			if len(jobs) == 0 {
				continue
			}

			job := jobs[0]

			// Only one worker wins the claim; losers move on.
			claimed, err := p.jobs.Claim(parentCtx, job.ID, workerName)
			if err != nil {
				p.logger.Error("❌ Failed to claim job",
					zap.String("job_id", job.ID.String()),
					zap.Error(err),
				)
				continue
			}
			if !claimed {
				metrics.Analysis().IncClaimRace()
				continue
			}

			p.logger.Info("👷 Worker claimed job",
				zap.String("worker", workerName),
				zap.String("job_id", job.ID.String()),
				zap.String("recitation_id", job.RecitationID.String()),
			)

			p.runJob(parentCtx, &job, workerID)
		}
	}
}

// runJob executes the pipeline with retries and records the terminal
// state. The whole run shares one attempt timeout per try.
func (p *WorkerPool) runJob(parentCtx context.Context, job *entities.AnalysisJob, workerID int) {
	start := time.Now()
	opts := jobcontext.Options{
		MaxAttempts:    p.cfg.Analysis.MaxAttempts,
		AttemptTimeout: p.cfg.Analysis.AttemptTimeout,
	}

	// A job whose recitation vanished has nothing to process. That is a
	// warning, not a job failure: the row was deleted out from under
	// the queue, so log and walk away without touching the job.
	rec, err := p.recitations.GetByID(parentCtx, job.RecitationID)
	if err == nil && rec == nil {
		p.logger.Warn("recitation missing for claimed job, skipping",
			zap.String("job_id", job.ID.String()),
			zap.String("recitation_id", job.RecitationID.String()),
		)
		return
	}

	p.progress.Publish(parentCtx, job.ID, "initializing", ProgressInitializing)

	jobCtx, cancel := jobcontext.Begin(parentCtx, job.ID, workerID, opts)
	defer cancel()

	var result *entities.AnalysisResult
	err = jobcontext.Run(jobCtx, opts, func(ctx context.Context) error {
		var runErr error
		result, runErr = p.process(ctx, job)
		return runErr
	})

	metrics.Analysis().ObserveJobDuration(time.Since(start))

	if err != nil {
		p.logger.Error("❌ Job failed after retries",
			zap.String("job_id", job.ID.String()),
			zap.Error(err),
		)
		if dbErr := p.jobs.MarkFailed(parentCtx, job.ID, err.Error()); dbErr != nil {
			p.logger.Error("failed to persist job failure",
				zap.String("job_id", job.ID.String()),
				zap.Error(dbErr),
			)
		}
		metrics.Analysis().IncJobFailed()
		p.progress.PublishError(parentCtx, job.ID, err.Error())
		if p.notifier != nil {
			p.notifier.Notify(parentCtx, job.UserID, entities.NotificationAnalysisFailed,
				"Tajweed analysis failed",
				"Your recitation could not be analyzed. You can request reprocessing from the history page.")
		}
		return
	}

	if dbErr := p.jobs.MarkCompleted(parentCtx, job.ID, result); dbErr != nil {
		p.logger.Error("failed to persist job result",
			zap.String("job_id", job.ID.String()),
			zap.Error(dbErr),
		)
		return
	}

	metrics.Analysis().IncJobCompleted()
	p.progress.Publish(parentCtx, job.ID, "done", ProgressDone)

	p.logger.Info("✅ Job completed successfully",
		zap.String("job_id", job.ID.String()),
		zap.Float64("overall_score", result.OverallScore),
	)

	if p.scores != nil {
		if err := p.scores.RecordScore(parentCtx, job.OrgID, job.UserID, result.OverallScore); err != nil {
			p.logger.Warn("failed to record leaderboard score",
				zap.String("job_id", job.ID.String()),
				zap.Error(err),
			)
		}
	}
	if p.notifier != nil {
		p.notifier.Notify(parentCtx, job.UserID, entities.NotificationAnalysisCompleted,
			"Tajweed analysis ready",
			fmt.Sprintf("Your recitation scored %.0f out of 100.", result.OverallScore))
	}
}

// process is one pipeline attempt: download, transcribe, align, score.
func (p *WorkerPool) process(ctx context.Context, job *entities.AnalysisJob) (*entities.AnalysisResult, error) {
	started := time.Now()

	rec, err := p.recitations.GetByID(ctx, job.RecitationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load recitation: %w", err)
	}
	if rec == nil {
		return nil, fmt.Errorf("recitation %s not found", job.RecitationID)
	}
	if !rec.HasAudio() {
		return nil, fmt.Errorf("recitation %s has no audio object", rec.ID)
	}

	scratchPath := filepath.Join(p.cfg.Analysis.ScratchDir, job.ID.String()+filepath.Ext(*rec.AudioKey))
	defer os.Remove(scratchPath)

	// Storage hiccups are common enough to deserve their own short
	// retry loop before the attempt-level retry kicks in.
	p.progress.Publish(ctx, job.ID, "downloading", ProgressDownloading)
	downloadFn := func() error {
		return p.storage.DownloadToFile(ctx, *rec.AudioKey, scratchPath)
	}
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 2 * time.Second
	bo.MaxInterval = 10 * time.Second
	bo.MaxElapsedTime = 30 * time.Second
	if err := backoff.Retry(downloadFn, backoff.WithContext(bo, ctx)); err != nil {
		return nil, fmt.Errorf("failed to download audio: %w", err)
	}

	p.progress.Publish(ctx, job.ID, "transcribing", ProgressTranscribing)
	sttStart := time.Now()
	transcript, err := p.transcriber.Transcribe(ctx, scratchPath, p.cfg.STT.Language)
	metrics.Analysis().ObserveSTTCall(p.cfg.STT.Provider, time.Since(sttStart), err)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	p.progress.Publish(ctx, job.ID, "aligning", ProgressAligning)
	alignment := Align(rec.TargetText, transcript.Words)

	duration := rec.DurationSeconds
	if duration <= 0 {
		duration = transcript.Duration
	}

	p.progress.Publish(ctx, job.ID, "analyzing", ProgressAnalyzing)
	violations := RunRuleCheckers(p.checkers, alignment)

	p.progress.Publish(ctx, job.ID, "scoring", ProgressScoring)
	pronunciation, fluency, timing, overall, detail := Score(alignment, duration)

	matched := 0
	for _, e := range alignment {
		if e.Matched {
			matched++
		}
	}

	return &entities.AnalysisResult{
		TranscribedText:    transcript.Text,
		Provider:           transcript.Provider,
		Alignment:          alignment,
		Violations:         violations,
		PronunciationScore: pronunciation,
		FluencyScore:       fluency,
		TimingConsistency:  timing,
		OverallScore:       overall,
		Fluency:            detail,
		ExpectedWordCount:  len(alignment),
		MatchedWordCount:   matched,
		DurationSeconds:    duration,
		ProcessingTimeMs:   time.Since(started).Milliseconds(),
	}, nil
}

// staleJobReaper requeues processing jobs whose worker died. A job is
// stale when it has not been touched for twice the attempt timeout.
func (p *WorkerPool) staleJobReaper(parentCtx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopChan:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-2 * p.cfg.Analysis.AttemptTimeout)
			n, err := p.jobs.ReclaimStale(parentCtx, cutoff)
			if err != nil {
				p.logger.Error("failed to reclaim stale jobs", zap.Error(err))
				continue
			}
			if n > 0 {
				p.logger.Warn("reclaimed stale analysis jobs", zap.Int64("count", n))
			}
		}
	}
}

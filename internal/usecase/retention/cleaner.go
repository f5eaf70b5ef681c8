// Package retention removes raw recitation audio that has aged past the
// organization's retention window. Analysis results stay; only the
// storage objects and their references go.
package retention

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/itqanlabs/itqan-backend/internal/adapter/repository"
	"github.com/itqanlabs/itqan-backend/internal/domain/entities"
	"github.com/itqanlabs/itqan-backend/internal/infrastructure/metrics"
	"github.com/itqanlabs/itqan-backend/internal/infrastructure/storage"
)

// Summary reports one sweep.
type Summary struct {
	Scanned        int   `json:"scanned"`
	Cleaned        int   `json:"cleaned"`
	BytesReclaimed int64 `json:"bytes_reclaimed"`
	Failures       int   `json:"failures"`
	DryRun         bool  `json:"dry_run"`
}

// Cleaner sweeps expired audio per organization. One bad object never
// aborts the sweep; failures are counted and retried next run.
type Cleaner struct {
	recitations *repository.RecitationRepository
	jobs        *repository.AnalysisJobRepository
	settings    *repository.SettingRepository
	storage     *storage.MinIOClient
	logger      *zap.Logger

	batchSize int
}

// NewCleaner creates the retention cleaner
func NewCleaner(
	recitations *repository.RecitationRepository,
	jobs *repository.AnalysisJobRepository,
	settings *repository.SettingRepository,
	storageClient *storage.MinIOClient,
	logger *zap.Logger,
) *Cleaner {
	return &Cleaner{
		recitations: recitations,
		jobs:        jobs,
		settings:    settings,
		storage:     storageClient,
		logger:      logger,
		batchSize:   200,
	}
}

// Run executes the scheduled sweep across all organizations.
func (c *Cleaner) Run(ctx context.Context) {
	summary, err := c.SweepAll(ctx, false)
	if err != nil {
		c.logger.Error("retention sweep failed", zap.Error(err))
		return
	}
	c.logger.Info("retention sweep finished",
		zap.Int("scanned", summary.Scanned),
		zap.Int("cleaned", summary.Cleaned),
		zap.Int64("bytes_reclaimed", summary.BytesReclaimed),
		zap.Int("failures", summary.Failures),
	)
}

// SweepAll sweeps every organization and merges the summaries.
func (c *Cleaner) SweepAll(ctx context.Context, dryRun bool) (*Summary, error) {
	settings, err := c.settings.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	total := &Summary{DryRun: dryRun}
	for _, setting := range settings {
		s, err := c.SweepOrg(ctx, &setting, dryRun)
		if err != nil {
			c.logger.Error("org sweep failed",
				zap.String("org_id", setting.OrgID.String()),
				zap.Error(err),
			)
			continue
		}
		total.Scanned += s.Scanned
		total.Cleaned += s.Cleaned
		total.BytesReclaimed += s.BytesReclaimed
		total.Failures += s.Failures
	}
	return total, nil
}

// SweepOrg sweeps one organization in batches until no candidates
// remain. dryRun reports what would be removed without touching
// anything.
func (c *Cleaner) SweepOrg(ctx context.Context, setting *entities.OrgSetting, dryRun bool) (*Summary, error) {
	summary := &Summary{DryRun: dryRun}
	if setting.RetentionWindowDays <= 0 {
		return summary, nil
	}
	cutoff := time.Now().Add(-setting.RetentionWindow())

	for {
		candidates, err := c.recitations.ListPurgeCandidates(ctx, setting.OrgID, cutoff, setting.KeepUnanalyzedAudio, c.batchSize)
		if err != nil {
			return summary, err
		}
		if len(candidates) == 0 {
			return summary, nil
		}

		progressed := false
		for _, rec := range candidates {
			summary.Scanned++
			if dryRun {
				summary.Cleaned++
				summary.BytesReclaimed += rec.AudioSizeBytes
				progressed = true
				continue
			}

			if err := c.storage.RemoveObject(ctx, *rec.AudioKey); err != nil {
				summary.Failures++
				metrics.Analysis().IncRetentionError()
				c.logger.Warn("failed to remove audio object",
					zap.String("recitation_id", rec.ID.String()),
					zap.Error(err),
				)
				continue
			}
			if err := c.recitations.MarkAudioPurged(ctx, rec.ID); err != nil {
				summary.Failures++
				metrics.Analysis().IncRetentionError()
				c.logger.Warn("failed to clear audio reference",
					zap.String("recitation_id", rec.ID.String()),
					zap.Error(err),
				)
				continue
			}
			// Failed jobs for a purged recitation can never be
			// reprocessed, so drop them too.
			if _, err := c.jobs.DeleteFailedByRecitation(ctx, rec.ID); err != nil {
				metrics.Analysis().IncRetentionError()
				c.logger.Warn("failed to delete stale failed jobs",
					zap.String("recitation_id", rec.ID.String()),
					zap.Error(err),
				)
			}
			summary.Cleaned++
			summary.BytesReclaimed += rec.AudioSizeBytes
			metrics.Analysis().AddRetentionRemoved(1, rec.AudioSizeBytes)
			progressed = true
		}

		// Every candidate in the batch failed or dry run already saw
		// the full set; stop instead of spinning on the same rows.
		if !progressed || dryRun {
			return summary, nil
		}
	}
}

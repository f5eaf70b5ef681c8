package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Progress checkpoints published over Redis while a job runs. Clients
// subscribe to the job's channel to drive progress bars.
const (
	ProgressInitializing = 10
	ProgressDownloading  = 20
	ProgressTranscribing = 40
	ProgressAligning     = 60
	ProgressAnalyzing    = 80
	ProgressScoring      = 90
	ProgressDone         = 100
)

// ProgressEvent is the payload published on each checkpoint.
type ProgressEvent struct {
	JobID     uuid.UUID `json:"job_id"`
	Stage     string    `json:"stage"`
	Percent   int       `json:"percent"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ProgressPublisher pushes job progress to Redis pub/sub. Publishing is
// best effort: a Redis failure never fails the job.
type ProgressPublisher struct {
	client *redis.Client
	logger *zap.Logger
}

// NewProgressPublisher creates a progress publisher
func NewProgressPublisher(client *redis.Client, logger *zap.Logger) *ProgressPublisher {
	return &ProgressPublisher{client: client, logger: logger}
}

// ChannelFor returns the pub/sub channel name for a job
func ChannelFor(jobID uuid.UUID) string {
	return fmt.Sprintf("analysis:progress:%s", jobID)
}

// Publish sends one checkpoint event
func (p *ProgressPublisher) Publish(ctx context.Context, jobID uuid.UUID, stage string, percent int) {
	p.publish(ctx, ProgressEvent{
		JobID:     jobID,
		Stage:     stage,
		Percent:   percent,
		Timestamp: time.Now(),
	})
}

// PublishError sends a terminal failure event
func (p *ProgressPublisher) PublishError(ctx context.Context, jobID uuid.UUID, errMsg string) {
	p.publish(ctx, ProgressEvent{
		JobID:     jobID,
		Stage:     "failed",
		Percent:   100,
		Error:     errMsg,
		Timestamp: time.Now(),
	})
}

func (p *ProgressPublisher) publish(ctx context.Context, event ProgressEvent) {
	if p == nil || p.client == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := p.client.Publish(ctx, ChannelFor(event.JobID), payload).Err(); err != nil {
		p.logger.Warn("failed to publish progress event",
			zap.String("job_id", event.JobID.String()),
			zap.String("stage", event.Stage),
			zap.Error(err))
	}
}

// Subscribe returns a pub/sub subscription for a job's progress channel.
// The HTTP layer streams its messages to clients.
func (p *ProgressPublisher) Subscribe(ctx context.Context, jobID uuid.UUID) *redis.PubSub {
	return p.client.Subscribe(ctx, ChannelFor(jobID))
}

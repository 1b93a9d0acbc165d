package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/storepulse/backend/internal/feed"
	"github.com/wonny/storepulse/backend/pkg/logger"
)

// FeedIngestJob pulls new submissions from the external feed into the raw
// store. Windows overlap by design; the store is append-only and the report
// pipeline deduplicates through fingerprinting.
type FeedIngestJob struct {
	client *feed.Client
	repo   *feed.Repository
	logger *logger.Logger
}

// NewFeedIngestJob creates a new feed ingest job
func NewFeedIngestJob(client *feed.Client, repo *feed.Repository, log *logger.Logger) *FeedIngestJob {
	return &FeedIngestJob{
		client: client,
		repo:   repo,
		logger: log,
	}
}

// Name returns the job name
func (j *FeedIngestJob) Name() string {
	return "feed_ingest"
}

// Schedule returns the cron schedule (hourly, 10 minutes past)
func (j *FeedIngestJob) Schedule() string {
	return "0 10 * * * *"
}

// Run fetches the last two hours of submissions and stores them
func (j *FeedIngestJob) Run(ctx context.Context) error {
	until := time.Now().UTC()
	since := until.Add(-2 * time.Hour)

	records, err := j.client.FetchSubmissions(ctx, since, until)
	if err != nil {
		return fmt.Errorf("fetch submissions: %w", err)
	}

	if err := j.repo.SaveBatch(ctx, records); err != nil {
		return fmt.Errorf("store submissions: %w", err)
	}

	j.logger.WithField("count", len(records)).Info("Feed ingest completed")
	return nil
}

package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/storepulse/backend/internal/contracts"
	"github.com/wonny/storepulse/backend/internal/feed"
	"github.com/wonny/storepulse/backend/internal/report"
	"github.com/wonny/storepulse/backend/pkg/logger"
	"github.com/wonny/storepulse/backend/pkg/redis"
)

// trendLookback is how far back the nightly refresh recomputes. Six months
// covers every bucket the dashboard renders.
const trendLookback = 183 * 24 * time.Hour

// TrendRefreshJob recomputes monthly trend buckets from stored submissions
// and warms the per-store cache so the first dashboard load of the day is a
// hit.
type TrendRefreshJob struct {
	repo     *feed.Repository
	service  *report.Service
	cache    *redis.Cache
	schedule string
	cacheTTL time.Duration
	logger   *logger.Logger
}

// NewTrendRefreshJob creates a new trend refresh job
func NewTrendRefreshJob(repo *feed.Repository, service *report.Service, cache *redis.Cache, schedule string, cacheTTL time.Duration, log *logger.Logger) *TrendRefreshJob {
	return &TrendRefreshJob{
		repo:     repo,
		service:  service,
		cache:    cache,
		schedule: schedule,
		cacheTTL: cacheTTL,
		logger:   log,
	}
}

// Name returns the job name
func (j *TrendRefreshJob) Name() string {
	return "trend_refresh"
}

// Schedule returns the configured cron schedule
func (j *TrendRefreshJob) Schedule() string {
	return j.schedule
}

// Run recomputes and caches trend buckets for every store
func (j *TrendRefreshJob) Run(ctx context.Context) error {
	now := time.Now().UTC()

	records, err := j.repo.ListByRange(ctx, now.Add(-trendLookback), now)
	if err != nil {
		return fmt.Errorf("list submissions: %w", err)
	}
	if len(records) == 0 {
		j.logger.Info("No submissions to refresh")
		return nil
	}

	rep, err := j.service.BuildReport(ctx, records, now)
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}

	byStore := make(map[string][]contracts.MonthlyBucket)
	for _, b := range rep.Buckets {
		byStore[b.StoreID] = append(byStore[b.StoreID], b)
	}

	warmed := 0
	for storeID, buckets := range byStore {
		key := redis.TrendKey(j.service.RubricHash(), storeID)
		if err := j.cache.Set(ctx, key, buckets, j.cacheTTL); err != nil {
			j.logger.WithError(err).WithField("store", storeID).Warn("Trend cache write failed")
			continue
		}
		warmed++
	}

	j.logger.WithFields(map[string]interface{}{
		"submissions": len(records),
		"stores":      warmed,
		"rejected":    rep.RejectedCount,
	}).Info("Trend refresh completed")

	return nil
}

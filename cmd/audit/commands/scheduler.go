package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/storepulse/backend/internal/feed"
	"github.com/wonny/storepulse/backend/internal/report"
	"github.com/wonny/storepulse/backend/internal/rubricconfig"
	"github.com/wonny/storepulse/backend/internal/scheduler"
	"github.com/wonny/storepulse/backend/internal/scheduler/jobs"
	"github.com/wonny/storepulse/backend/pkg/config"
	"github.com/wonny/storepulse/backend/pkg/database"
	"github.com/wonny/storepulse/backend/pkg/logger"
	"github.com/wonny/storepulse/backend/pkg/redis"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 시작",
	Long: `예약 작업 스케줄러를 시작합니다.

Jobs:
  feed_ingest    - 매시간 피드에서 신규 제출 수집
  trend_refresh  - 매일 새벽 트렌드 버킷 재계산 및 캐시 워밍

Example:
  go run ./cmd/audit scheduler`,
	RunE: runScheduler,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== StorePulse Scheduler ===")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	redisClient, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()

	cache := redis.NewCache(redisClient, "storepulse")

	doc, _, err := rubricconfig.Load(cfg.Rubric.Path)
	if err != nil {
		return fmt.Errorf("load rubric: %w", err)
	}

	reportService, err := report.NewService(doc, cache, log)
	if err != nil {
		return fmt.Errorf("create report service: %w", err)
	}

	feedClient := feed.NewClient(cfg, log)
	feedRepo := feed.NewRepository(db.Pool)

	sched := scheduler.New(log)

	if err := sched.AddJob(jobs.NewFeedIngestJob(feedClient, feedRepo, log)); err != nil {
		return fmt.Errorf("add ingest job: %w", err)
	}
	if err := sched.AddJob(jobs.NewTrendRefreshJob(
		feedRepo, reportService, cache,
		cfg.Scheduler.TrendRefreshSchedule, cfg.Scheduler.CacheTTL, log,
	)); err != nil {
		return fmt.Errorf("add trend refresh job: %w", err)
	}

	sched.Start()

	fmt.Println("\n✅ Scheduler running")
	for _, name := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", name)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	sched.Stop()
	return nil
}

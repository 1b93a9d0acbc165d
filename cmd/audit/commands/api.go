package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/storepulse/backend/internal/api"
	"github.com/wonny/storepulse/backend/internal/api/handlers"
	"github.com/wonny/storepulse/backend/internal/feed"
	"github.com/wonny/storepulse/backend/internal/report"
	"github.com/wonny/storepulse/backend/internal/rubricconfig"
	"github.com/wonny/storepulse/backend/pkg/config"
	"github.com/wonny/storepulse/backend/pkg/database"
	"github.com/wonny/storepulse/backend/pkg/logger"
	"github.com/wonny/storepulse/backend/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

이 명령어는:
- HTTP API 서버 시작
- 채점/트렌드/무버 엔드포인트 제공
- 피드 수집 트리거 제공

Endpoints:
  GET  /health        - Health check
  POST /api/score     - 제출 배치 채점
  POST /api/trends    - 월별 트렌드 집계
  POST /api/movers    - 상승/하락 매장 랭킹
  GET  /api/rubric    - 활성 루브릭 버전
  POST /api/ingest    - 피드 수집 트리거

Example:
  go run ./cmd/audit api
  go run ./cmd/audit api --port 8084`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== StorePulse Audit API Server ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Override port if flag is set
	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// 3. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	log.Info("Connected to database")

	// 4. Connect to Redis (optional, cache only)
	redisClient, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()

	cache := redis.NewCache(redisClient, "storepulse")

	// 5. Load the rubric document
	doc, _, err := rubricconfig.Load(cfg.Rubric.Path)
	if err != nil {
		return fmt.Errorf("load rubric: %w", err)
	}

	// 6. Create the report pipeline
	reportService, err := report.NewService(doc, cache, log)
	if err != nil {
		return fmt.Errorf("create report service: %w", err)
	}

	log.WithField("rubric_hash", reportService.RubricHash()).Info("Rubric loaded")

	// 7. Create feed client and repository
	feedClient := feed.NewClient(cfg, log)
	feedRepo := feed.NewRepository(db.Pool)

	// 8. Create handlers
	reportHandler := handlers.NewReportHandler(reportService, log)
	ingestHandler := handlers.NewIngestHandler(feedClient, feedRepo, log)

	// 9. Create router
	router := api.NewRouter(reportHandler, ingestHandler, log)

	// 10. Create server
	server := api.New(cfg, log, router)

	// 11. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  POST /api/score")
	fmt.Println("  POST /api/trends")
	fmt.Println("  POST /api/movers")
	fmt.Println("  GET  /api/rubric")
	fmt.Println("  POST /api/ingest")
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}

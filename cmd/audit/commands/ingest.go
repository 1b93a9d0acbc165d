package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/storepulse/backend/internal/feed"
	"github.com/wonny/storepulse/backend/pkg/config"
	"github.com/wonny/storepulse/backend/pkg/database"
	"github.com/wonny/storepulse/backend/pkg/logger"
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "제출 피드 수집",
	Long: `외부 제출 피드에서 원본 레코드를 가져와 DB에 저장합니다.

레거시 대시보드의 HTML 내보내기 파일도 --html 플래그로 가져올 수 있습니다.

Example:
  go run ./cmd/audit ingest --since 2025-05-01T00:00:00Z --until 2025-06-01T00:00:00Z
  go run ./cmd/audit ingest --html export_2025-05.html`,
	RunE: runIngest,
}

var (
	ingestSince string
	ingestUntil string
	ingestHTML  string
)

func init() {
	rootCmd.AddCommand(ingestCmd)

	// Flags
	ingestCmd.Flags().StringVar(&ingestSince, "since", "", "수집 시작 시각 (RFC3339, default 24h ago)")
	ingestCmd.Flags().StringVar(&ingestUntil, "until", "", "수집 종료 시각 (RFC3339, default now)")
	ingestCmd.Flags().StringVar(&ingestHTML, "html", "", "레거시 HTML 내보내기 파일 경로")
}

func runIngest(cmd *cobra.Command, args []string) error {
	fmt.Println("=== StorePulse Feed Ingest ===")

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

	repo := feed.NewRepository(db.Pool)
	ctx := context.Background()

	// Legacy HTML import path
	if ingestHTML != "" {
		f, err := os.Open(ingestHTML)
		if err != nil {
			return fmt.Errorf("open html export: %w", err)
		}
		defer f.Close()

		records, err := feed.ParseLegacyExport(f)
		if err != nil {
			return fmt.Errorf("parse html export: %w", err)
		}

		if err := repo.SaveBatch(ctx, records); err != nil {
			return fmt.Errorf("store records: %w", err)
		}

		fmt.Printf("✅ Imported %d records from %s\n", len(records), ingestHTML)
		return nil
	}

	// Feed API path
	until := time.Now().UTC()
	since := until.AddDate(0, 0, -1)

	if ingestSince != "" {
		since, err = time.Parse(time.RFC3339, ingestSince)
		if err != nil {
			return fmt.Errorf("parse since: %w", err)
		}
	}
	if ingestUntil != "" {
		until, err = time.Parse(time.RFC3339, ingestUntil)
		if err != nil {
			return fmt.Errorf("parse until: %w", err)
		}
	}
	if !since.Before(until) {
		return fmt.Errorf("since must be before until")
	}

	client := feed.NewClient(cfg, log)

	records, err := client.FetchSubmissions(ctx, since, until)
	if err != nil {
		return fmt.Errorf("fetch submissions: %w", err)
	}

	if err := repo.SaveBatch(ctx, records); err != nil {
		return fmt.Errorf("store records: %w", err)
	}

	fmt.Printf("✅ Ingested %d records (%s ~ %s)\n",
		len(records), since.Format(time.RFC3339), until.Format(time.RFC3339))
	return nil
}

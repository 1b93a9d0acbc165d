package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/storepulse/backend/internal/contracts"
	"github.com/wonny/storepulse/backend/internal/delta"
	"github.com/wonny/storepulse/backend/internal/report"
	"github.com/wonny/storepulse/backend/internal/rubricconfig"
	"github.com/wonny/storepulse/backend/pkg/config"
	"github.com/wonny/storepulse/backend/pkg/logger"
)

// scoreCmd represents the score command
var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "제출 배치 채점",
	Long: `JSON 파일의 제출 배치를 채점하고 리포트를 출력합니다.

Input format:
  {"records": [{"fields": {"store_id": "...", "submitted_at": "...", ...}}, ...]}

Example:
  go run ./cmd/audit score --input batch.json
  go run ./cmd/audit score --input batch.json --cutoff 2025-05-31T23:59:59Z --top 5`,
	RunE: runScore,
}

var (
	scoreInput  string
	scoreCutoff string
	scoreTop    int
)

func init() {
	rootCmd.AddCommand(scoreCmd)

	// Flags
	scoreCmd.Flags().StringVar(&scoreInput, "input", "", "JSON 배치 파일 경로 (required)")
	scoreCmd.Flags().StringVar(&scoreCutoff, "cutoff", "", "as-of 기준 시각 (RFC3339, default now)")
	scoreCmd.Flags().IntVar(&scoreTop, "top", 10, "상위 무버 개수")
	scoreCmd.MarkFlagRequired("input")
}

func runScore(cmd *cobra.Command, args []string) error {
	fmt.Println("=== StorePulse Batch Scoring ===")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	// Load input batch
	data, err := os.ReadFile(scoreInput)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	var batch struct {
		Records []contracts.RawRecord `json:"records"`
	}
	if err := json.Unmarshal(data, &batch); err != nil {
		return fmt.Errorf("parse input: %w", err)
	}
	if len(batch.Records) == 0 {
		return fmt.Errorf("input has no records")
	}

	cutoff := time.Now().UTC()
	if scoreCutoff != "" {
		cutoff, err = time.Parse(time.RFC3339, scoreCutoff)
		if err != nil {
			return fmt.Errorf("parse cutoff: %w", err)
		}
	}

	// Load rubric and build the pipeline (no cache for one-shot runs)
	doc, _, err := rubricconfig.Load(cfg.Rubric.Path)
	if err != nil {
		return fmt.Errorf("load rubric: %w", err)
	}

	service, err := report.NewService(doc, nil, log)
	if err != nil {
		return fmt.Errorf("create report service: %w", err)
	}

	rep, err := service.BuildReport(context.Background(), batch.Records, cutoff)
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}

	// Summary
	fmt.Printf("\nRubric: %s\n", service.RubricHash()[:12])
	fmt.Printf("Scored: %d  Rejected: %d\n", rep.ProcessedCount, rep.RejectedCount)
	if msg := rep.RejectionMessage(); msg != "" {
		fmt.Printf("⚠️  %s\n", msg)
		for _, rj := range rep.Rejected {
			fmt.Printf("   record %d: %s\n", rj.Index, rj.Reason)
		}
	}

	fmt.Println("\nScores:")
	for _, sc := range rep.Scored {
		mark := ""
		if sc.AllNA {
			mark = " (all N/A)"
		}
		fmt.Printf("  %-12s %s  %3d%%  (%.1f / %.1f)%s\n",
			sc.StoreID, sc.SubmittedAt.Format("2006-01-02"),
			sc.Overall.Percentage, sc.Overall.Earned, sc.Overall.Max, mark)
	}

	fmt.Println("\nMonthly trend:")
	for _, b := range rep.Buckets {
		fmt.Printf("  %s  %-12s avg %.2f%%  (%d submissions)\n",
			b.Period, b.StoreID, b.AvgPercentage, b.SubmissionCount)
	}

	movers := delta.TopN(rep.Movers, scoreTop)
	fmt.Printf("\nTop movers (as of %s):\n", cutoff.Format("2006-01-02"))
	for _, g := range movers.Gainers {
		fmt.Printf("  ▲ %-12s %+.2f%%  (%.1f → %.1f)\n", g.StoreID, g.DeltaPct, g.PreviousValue, g.CurrentValue)
	}
	for _, d := range movers.Decliners {
		fmt.Printf("  ▼ %-12s %+.2f%%  (%.1f → %.1f)\n", d.StoreID, d.DeltaPct, d.PreviousValue, d.CurrentValue)
	}

	return nil
}

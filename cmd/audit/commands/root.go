package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "audit",
	Short: "StorePulse - 매장 점검 채점/트렌드 엔진",
	Long: `StorePulse Audit CLI

체크리스트 제출을 채점하고 월별 트렌드와 상승/하락 매장을 계산합니다.

Usage:
  go run ./cmd/audit [command]

Examples:
  go run ./cmd/audit api
  go run ./cmd/audit score --input batch.json
  go run ./cmd/audit ingest --since 2025-05-01T00:00:00Z
  go run ./cmd/audit scheduler`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

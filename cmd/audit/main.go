package main

import (
	"os"

	"github.com/wonny/storepulse/backend/cmd/audit/commands"
)

// main is the entry point for the StorePulse audit CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/audit [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

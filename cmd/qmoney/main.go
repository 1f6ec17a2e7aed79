package main

import (
	"os"

	"github.com/wonny/qmoney/cmd/qmoney/commands"
)

// main is the entry point for the qmoney CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/qmoney [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

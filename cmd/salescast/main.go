package main

import (
	"os"

	_ "go.uber.org/automaxprocs"

	"github.com/wonny/salescast/cmd/salescast/commands"
)

// main is the entry point for the salescast CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/salescast [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

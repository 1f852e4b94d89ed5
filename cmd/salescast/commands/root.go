package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	sourceKind string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "salescast",
	Short: "salescast - 월별 매출 SARIMA 예측",
	Long: `salescast Unified CLI

월별 매출 시계열의 SARIMA 모델 수명주기 관리.
정제 → 정상성 검정 → 차수 탐색 → 학습 → 평가 → 예측.

Usage:
  go run ./cmd/salescast [command]

Examples:
  go run ./cmd/salescast clean
  go run ./cmd/salescast tune --config-yaml config/search/default.yaml
  go run ./cmd/salescast pipeline
  go run ./cmd/salescast forecast --horizon 6 --with-bounds`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
// Ctrl+C / SIGTERM cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		PrintError(err.Error())
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "env file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&sourceKind, "source", "csv", "record source (csv|db)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

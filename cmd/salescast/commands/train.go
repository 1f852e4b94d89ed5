package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/salescast/internal/report"
)

// trainCmd represents the train command
var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "운영 모델 학습 및 저장",
	Long: `설정된 차수(FORECAST_ORDER, FORECAST_SEASONAL_ORDER)로 전체 시계열을 학습하고
모델과 메타데이터를 저장합니다. 최소 24개월이 필요합니다.

Example:
  go run ./cmd/salescast train
  go run ./cmd/salescast train --if-stale`,
	RunE: runTrain,
}

var trainIfStale bool

func init() {
	rootCmd.AddCommand(trainCmd)

	trainCmd.Flags().BoolVar(&trainIfStale, "if-stale", false, "reuse the stored model when it matches the data")
}

func runTrain(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	return withApp(ctx, func(a *app) error {
		m, err := a.manager()
		if err != nil {
			return err
		}
		series, _, err := m.LoadSeries(ctx)
		if err != nil {
			return err
		}

		trained := true
		if trainIfStale {
			_, _, trained, err = m.EnsureModel(ctx, series)
		} else {
			_, _, err = m.Retrain(ctx, series)
		}
		if err != nil {
			return err
		}

		PrintHeader("Training")
		report.ModelInfo(os.Stdout, a.store.Info(ctx))
		if trained {
			PrintSuccess(fmt.Sprintf("model trained on %d months", series.Len()))
		} else {
			PrintSuccess("stored model is current, not retrained")
		}
		return nil
	})
}

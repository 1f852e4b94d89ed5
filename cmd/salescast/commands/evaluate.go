package commands

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/salescast/internal/contracts"
	"github.com/wonny/salescast/internal/report"
)

// evaluateCmd represents the evaluate command
var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "홀드아웃 평가 (MAE, RMSE, MAPE)",
	Long: `마지막 FORECAST_TEST_SIZE개월을 제외하고 학습한 뒤 해당 기간을 예측하여
MAE, RMSE, MAPE를 계산합니다. 실제값이 0인 월이 있으면 MAPE는 정의되지 않습니다.

Example:
  go run ./cmd/salescast evaluate --periods`,
	RunE: runEvaluate,
}

var evaluatePeriods bool

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().BoolVar(&evaluatePeriods, "periods", false, "print actual vs predicted per month")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
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

		metrics, err := m.Evaluate(ctx, series)
		if err != nil && !errors.Is(err, contracts.ErrDivisionByZero) {
			return err
		}

		PrintHeader("Holdout Evaluation")
		report.Evaluation(os.Stdout, metrics)
		if evaluatePeriods {
			PrintSeparator()
			report.Periods(os.Stdout, metrics)
		}
		if err != nil {
			PrintWarning(err.Error())
		}
		return nil
	})
}

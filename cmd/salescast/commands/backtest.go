package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/wonny/salescast/internal/backtest"
	"github.com/wonny/salescast/internal/lifecycle"
	"github.com/wonny/salescast/internal/report"
	"github.com/wonny/salescast/internal/training"
)

// backtestCmd represents the backtest command
var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "롤링 원점 백테스트",
	Long: `운영 차수로 여러 예측 원점(origin)에서 홀드아웃 평가를 반복합니다.

가장 최근 원점은 마지막 --horizon 개월을 평가하고, 이전 원점은 --step 개월씩 앞당겨집니다.
단일 evaluate 보다 차수의 안정성을 확인하는 데 사용합니다.

Example:
  go run ./cmd/salescast backtest
  go run ./cmd/salescast backtest --origins 6 --horizon 3 --step 1`,
	RunE: runBacktest,
}

var (
	backtestOrigins int
	backtestHorizon int
	backtestStep    int
	backtestJSON    bool
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().IntVar(&backtestOrigins, "origins", 3, "number of forecast origins")
	backtestCmd.Flags().IntVar(&backtestHorizon, "horizon", 0, "months scored per origin (default FORECAST_TEST_SIZE)")
	backtestCmd.Flags().IntVar(&backtestStep, "step", 0, "months between origins (default horizon)")
	backtestCmd.Flags().BoolVar(&backtestJSON, "json", false, "print the result as JSON")
}

func runBacktest(cmd *cobra.Command, args []string) error {
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

		horizon := backtestHorizon
		if horizon == 0 {
			horizon = a.cfg.Forecast.TestSize
		}
		workers := a.cfg.Forecast.SearchWorkers
		if workers == 0 {
			workers = runtime.NumCPU()
		}

		ev := training.NewEvaluator(a.engine, lifecycle.FitOptionsFromConfig(a.cfg.Forecast), a.log)
		res, err := backtest.NewEngine(ev, a.log).Run(ctx, series, lifecycle.OrderFromConfig(a.cfg.Forecast), backtest.Config{
			Origins: backtestOrigins,
			Horizon: horizon,
			Step:    backtestStep,
			Workers: workers,
		})
		if err != nil {
			return err
		}

		if backtestJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}

		PrintHeader(fmt.Sprintf("Backtest %s (%d months per origin)", res.Order, res.Horizon))
		report.Backtest(os.Stdout, res)
		if !res.MAPEDefined() {
			PrintWarning("MAPE undefined for at least one origin (zero actual)")
		}
		return nil
	})
}

package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/salescast/internal/report"
)

// forecastCmd represents the forecast command
var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "저장된 모델로 미래 예측",
	Long: `저장된 모델을 로드하여 horizon개월을 예측하고 CSV(date,forecast_sales)로 저장합니다.
모델과 메타데이터가 일치하지 않으면 실패합니다 (train으로 재학습).

Example:
  go run ./cmd/salescast forecast
  go run ./cmd/salescast forecast --horizon 6 --with-bounds`,
	RunE: runForecast,
}

var (
	forecastHorizon    int
	forecastOutput     string
	forecastWithBounds bool
)

func init() {
	rootCmd.AddCommand(forecastCmd)

	forecastCmd.Flags().IntVar(&forecastHorizon, "horizon", 0, "months to forecast (default FORECAST_HORIZON)")
	forecastCmd.Flags().StringVar(&forecastOutput, "output", "", "forecast CSV (default FORECAST_CSV)")
	forecastCmd.Flags().BoolVar(&forecastWithBounds, "with-bounds", false, "add lower,upper columns")
}

func runForecast(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	return withApp(ctx, func(a *app) error {
		m, err := a.manager()
		if err != nil {
			return err
		}

		res, err := m.Forecast(ctx, forecastHorizon)
		if err != nil {
			return err
		}

		PrintHeader("Forecast " + res.Order.String())
		report.Forecast(os.Stdout, res)

		out := orDefault(forecastOutput, a.cfg.Paths.ForecastCSV)
		err = report.WriteFile(out, func(w io.Writer) error {
			return report.WriteForecastCSV(w, res, forecastWithBounds)
		})
		if err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		PrintSuccess(fmt.Sprintf("%d months written to %s", res.Len(), out))
		return nil
	})
}

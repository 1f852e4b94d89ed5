package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/salescast/internal/report"
	"github.com/wonny/salescast/internal/stationarity"
)

// stationarityCmd represents the stationarity command
var stationarityCmd = &cobra.Command{
	Use:   "stationarity",
	Short: "ADF 정상성 검정",
	Long: `월별 매출 시계열과 1차 차분 시계열에 ADF 검정을 수행하고
권장 차분 차수 d를 출력합니다.

Example:
  go run ./cmd/salescast stationarity`,
	RunE: runStationarity,
}

func init() {
	rootCmd.AddCommand(stationarityCmd)
}

func runStationarity(cmd *cobra.Command, args []string) error {
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

		rep, err := stationarity.NewAnalyzer(a.engine, a.log).Analyze(series)
		if err != nil {
			return err
		}

		PrintHeader("Stationarity (ADF)")
		report.Stationarity(os.Stdout, rep)
		if rep.Warning != "" {
			PrintWarning(rep.Warning)
		}
		return nil
	})
}

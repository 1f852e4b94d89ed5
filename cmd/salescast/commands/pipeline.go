package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/salescast/internal/lifecycle"
	"github.com/wonny/salescast/internal/report"
)

// pipelineCmd represents the pipeline command
var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "전체 라이프사이클 실행",
	Long: `data → stationarity → model → evaluate → forecast → output 단계를 순서대로 실행합니다.

저장된 모델이 현재 데이터와 일치하면 재사용하고, 없거나 오래되었으면 재학습합니다.

Example:
  go run ./cmd/salescast pipeline
  go run ./cmd/salescast pipeline --force-retrain --skip-evaluate
  go run ./cmd/salescast pipeline --json`,
	RunE: runPipeline,
}

var (
	pipelineForce      bool
	pipelineSkipEval   bool
	pipelineHorizon    int
	pipelineWithBounds bool
	pipelineJSON       bool
)

func init() {
	rootCmd.AddCommand(pipelineCmd)

	pipelineCmd.Flags().BoolVar(&pipelineForce, "force-retrain", false, "retrain even when the stored model is current")
	pipelineCmd.Flags().BoolVar(&pipelineSkipEval, "skip-evaluate", false, "skip the holdout evaluation")
	pipelineCmd.Flags().IntVar(&pipelineHorizon, "horizon", 0, "months to forecast (default FORECAST_HORIZON)")
	pipelineCmd.Flags().BoolVar(&pipelineWithBounds, "with-bounds", false, "add lower,upper columns to the CSV")
	pipelineCmd.Flags().BoolVar(&pipelineJSON, "json", false, "print the run result as JSON")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	return withApp(ctx, func(a *app) error {
		m, err := a.manager()
		if err != nil {
			return err
		}

		res, runErr := m.Run(ctx, lifecycle.RunConfig{
			ForceRetrain: pipelineForce,
			SkipEvaluate: pipelineSkipEval,
			Horizon:      pipelineHorizon,
			OutputPath:   a.cfg.Paths.ForecastCSV,
			WithBounds:   pipelineWithBounds,
		})

		if pipelineJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(res); err != nil {
				return err
			}
			return runErr
		}

		PrintDoubleSeparator()
		fmt.Printf("Run %s\n", res.RunID)
		PrintKeyValue("Stages", strings.Join(res.CompletedStages, " → "), 14)
		PrintKeyValue("Observations", fmt.Sprint(res.Observations), 14)
		PrintKeyValue("Model state", string(res.ModelState.State), 14)
		PrintKeyValue("Retrained", fmt.Sprint(res.Trained), 14)
		PrintKeyValue("Duration", res.Duration.String(), 14)
		if runErr != nil {
			return runErr
		}

		if res.Stationarity != nil {
			PrintSeparator()
			report.Stationarity(os.Stdout, res.Stationarity)
		}
		if res.Evaluation != nil {
			PrintSeparator()
			report.Evaluation(os.Stdout, res.Evaluation)
		}
		PrintSeparator()
		report.Forecast(os.Stdout, res.Forecast)
		PrintDoubleSeparator()
		PrintSuccess("forecast written to " + a.cfg.Paths.ForecastCSV)
		return nil
	})
}

package commands

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/wonny/salescast/internal/report"
	"github.com/wonny/salescast/internal/search"
	"github.com/wonny/salescast/internal/searchconfig"
)

// tuneCmd represents the tune command
var tuneCmd = &cobra.Command{
	Use:   "tune",
	Short: "SARIMA 차수 그리드 탐색",
	Long: `YAML 탐색 공간의 모든 (p,d,q)x(P,D,Q,m) 조합을 AIC 기준으로 순위화합니다.

이 명령어는:
- 후보 모델 병렬 적합 (수렴 실패 후보는 제외)
- 상위 N개 후보 테이블 출력
- 운영(baseline) 모델 대비 AIC 차이 출력 (> 2 의미 있음)
- 결과 CSV 저장 (p,d,q,P,D,Q,AIC,BIC,order,seasonal_order)

Example:
  go run ./cmd/salescast tune
  go run ./cmd/salescast tune --config-yaml config/search/narrow.yaml --output output/grid.csv`,
	RunE: runTune,
}

var (
	tuneYAML   string
	tuneOutput string
)

func init() {
	rootCmd.AddCommand(tuneCmd)

	tuneCmd.Flags().StringVar(&tuneYAML, "config-yaml", "", "search space YAML (default SEARCH_YAML)")
	tuneCmd.Flags().StringVar(&tuneOutput, "output", "", "grid CSV (default GRID_CSV)")
}

func runTune(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	return withApp(ctx, func(a *app) error {
		path := orDefault(tuneYAML, a.cfg.Paths.SearchYAML)
		sc, _, err := searchconfig.Load(path)
		if err != nil {
			return fmt.Errorf("search config %s: %w", path, err)
		}
		for _, w := range searchconfig.Warnings(sc) {
			PrintWarning(w.Code + ": " + w.Message)
		}
		hash, err := searchconfig.Hash(sc)
		if err != nil {
			return err
		}

		m, err := a.manager()
		if err != nil {
			return err
		}
		series, _, err := m.LoadSeries(ctx)
		if err != nil {
			return err
		}

		ranges := sc.Ranges()
		PrintHeader("Order Search")
		PrintKeyValue("Config", fmt.Sprintf("%s v%s (%s)", sc.Meta.ID, sc.Meta.Version, hash[:12]), 12)
		PrintKeyValue("Candidates", fmt.Sprint(ranges.Size()), 12)
		PrintKeyValue("Months", fmt.Sprint(series.Len()), 12)
		PrintSeparator()

		bar := progressbar.NewOptions(ranges.Size(),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("fitting"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
		opts := sc.Options()
		if opts.Workers == 0 {
			opts.Workers = a.cfg.Forecast.SearchWorkers
		}
		opts.OnProgress = func(done, total int) { _ = bar.Set(done) }

		res, err := search.NewGridSearcher(a.engine, a.log).Search(ctx, series, ranges, opts)
		_ = bar.Finish()
		if err != nil {
			return err
		}

		report.Top(os.Stdout, res, sc.Report.TopN)
		PrintSeparator()
		report.SearchSummary(os.Stdout, res)

		out := orDefault(tuneOutput, a.cfg.Paths.GridCSV)
		if err := report.WriteFile(out, func(w io.Writer) error { return report.WriteGridCSV(w, res) }); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}

		if best, ok := res.Best(); ok {
			if res.GapSignificant() {
				PrintWarning(fmt.Sprintf("best %s beats baseline by %.2f AIC", best.Order, res.BaselineGap))
			}
		} else {
			PrintWarning("no candidate converged")
		}
		PrintSuccess(fmt.Sprintf("%d results written to %s", len(res.Entries), out))
		return nil
	})
}

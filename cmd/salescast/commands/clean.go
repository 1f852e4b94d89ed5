package commands

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/salescast/internal/report"
	"github.com/wonny/salescast/internal/s0_data"
	"github.com/wonny/salescast/internal/s0_data/quality"
	"github.com/wonny/salescast/pkg/httputil"
)

// cleanCmd represents the clean command
var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "원본 CSV 정제",
	Long: `원본 매출 CSV를 정제하여 cleaned CSV를 생성합니다.

이 명령어는:
- 컬럼명 snake_case 변환
- 날짜 파싱 (실패 시 결측)
- sales/profit/shipping_cost 숫자 정제 ($ , 제거)
- sales <= 0, 주문일 결측 행 제거
- (order_id, product_id) 중복 제거
- 품질 리포트 출력 (DB 설정 시 저장)

--input 이 http(s) URL이면 재시도하며 다운로드합니다.

Example:
  go run ./cmd/salescast clean
  go run ./cmd/salescast clean --input data/raw/sales.csv --output data/processed/cleaned_sales.csv`,
	RunE: runClean,
}

var (
	cleanInput  string
	cleanOutput string
)

func init() {
	rootCmd.AddCommand(cleanCmd)

	cleanCmd.Flags().StringVar(&cleanInput, "input", "", "raw CSV (default RAW_CSV)")
	cleanCmd.Flags().StringVar(&cleanOutput, "output", "", "cleaned CSV (default CLEANED_CSV)")
}

func runClean(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	return withApp(ctx, func(a *app) error {
		in := orDefault(cleanInput, a.cfg.Paths.RawCSV)
		out := orDefault(cleanOutput, a.cfg.Paths.CleanedCSV)

		PrintHeader("Data Cleaning")
		PrintKeyValue("Input", in, 8)
		PrintKeyValue("Output", out, 8)

		table, err := a.readRaw(ctx, in)
		if err != nil {
			return fmt.Errorf("read %s: %w", in, err)
		}
		cleaner := s0_data.NewCleaner(a.log)
		parsed, err := cleaner.Parse(table)
		if err != nil {
			return err
		}

		gate := quality.NewQualityGate(quality.DefaultConfig(), a.log)
		rep := gate.Validate(parsed)
		cleaned, summary := cleaner.Clean(parsed)

		if err := s0_data.WriteCSVFile(out, cleaned); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}

		PrintSeparator()
		report.Cleaning(os.Stdout, summary, rep)
		if rep.SuspiciousMinDate {
			PrintWarning(fmt.Sprintf("earliest order date %s is before 2000", rep.MinDate.Format("2006-01-02")))
		}

		if a.db != nil {
			if err := quality.NewRepository(a.db.Pool).SaveReport(ctx, "csv-raw:"+in, rep); err != nil {
				PrintWarning("quality report not stored: " + err.Error())
			}
		}

		PrintSuccess(fmt.Sprintf("%d rows written to %s", summary.RowsAfter, out))
		return nil
	})
}

// readRaw reads a local raw CSV or downloads it when in is a URL.
func (a *app) readRaw(ctx context.Context, in string) (*s0_data.RawTable, error) {
	if !httputil.IsURL(in) {
		return s0_data.ReadCSVFile(in)
	}
	body, err := httputil.New(a.logger).Fetch(ctx, in)
	if err != nil {
		return nil, err
	}
	return s0_data.ReadCSV(bytes.NewReader(body))
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

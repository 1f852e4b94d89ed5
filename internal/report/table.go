package report

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/wonny/salescast/internal/backtest"
	"github.com/wonny/salescast/internal/contracts"
	"github.com/wonny/salescast/internal/modelstore"
	"github.com/wonny/salescast/internal/s0_data"
	"github.com/wonny/salescast/internal/s0_data/quality"
	"github.com/wonny/salescast/internal/stationarity"
)

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetColumnSeparator(" ")
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	return table
}

func keyValue(w io.Writer, rows [][]string) {
	table := newTable(w, []string{"Metric", "Value"})
	table.AppendBulk(rows)
	table.Render()
}

// Top renders the n best candidates.
func Top(w io.Writer, res *contracts.GridSearchResult, n int) {
	table := newTable(w, []string{"Rank", "Order", "Seasonal", "AIC", "BIC"})
	for i, e := range res.Top(n) {
		table.Append([]string{
			strconv.Itoa(i + 1),
			e.Order.OrderString(),
			e.Order.SeasonalOrderString(),
			fmt.Sprintf("%.2f", e.AIC),
			fmt.Sprintf("%.2f", e.BIC),
		})
	}
	table.Render()
}

// SearchSummary candidates, failures and baseline comparison.
func SearchSummary(w io.Writer, res *contracts.GridSearchResult) {
	rows := [][]string{
		{"Candidates", strconv.Itoa(res.Candidates)},
		{"Converged", strconv.Itoa(len(res.Entries))},
		{"Failed", strconv.Itoa(len(res.Failed))},
	}
	if best, ok := res.Best(); ok {
		rows = append(rows, []string{"Best", best.Order.String()}, []string{"Best AIC", fmt.Sprintf("%.2f", best.AIC)})
	}
	if res.Baseline != nil {
		rank := "not converged"
		if res.BaselineRank > 0 {
			rank = strconv.Itoa(res.BaselineRank)
		}
		rows = append(rows,
			[]string{"Baseline", res.Baseline.String()},
			[]string{"Baseline rank", rank},
		)
		if res.BaselineRank > 0 {
			gap := fmt.Sprintf("%.2f", res.BaselineGap)
			if res.GapSignificant() {
				gap += " (significant)"
			}
			rows = append(rows, []string{"AIC gap", gap})
		}
	}
	keyValue(w, rows)
}

// Evaluation renders holdout metrics.
func Evaluation(w io.Writer, m *contracts.EvaluationMetrics) {
	mape := "undefined (zero actual)"
	if m.MAPEDefined() {
		mape = fmt.Sprintf("%.2f%%", m.MAPE)
	}
	keyValue(w, [][]string{
		{"Order", m.Order.String()},
		{"Train size", strconv.Itoa(m.TrainSize)},
		{"Test size", strconv.Itoa(m.TestSize)},
		{"MAE", fmt.Sprintf("%.2f", m.MAE)},
		{"RMSE", fmt.Sprintf("%.2f", m.RMSE)},
		{"MAPE", mape},
	})
}

// Periods renders actual vs predicted per holdout month.
func Periods(w io.Writer, m *contracts.EvaluationMetrics) {
	table := newTable(w, []string{"Date", "Actual", "Predicted", "Error"})
	for _, p := range m.Periods {
		table.Append([]string{
			p.Date.Format(contracts.DateLayout),
			fmt.Sprintf("%.2f", p.Actual),
			fmt.Sprintf("%.2f", p.Predicted),
			fmt.Sprintf("%.2f", p.Actual-p.Predicted),
		})
	}
	table.Render()
}

// Backtest renders one row per origin and the mean.
func Backtest(w io.Writer, res *backtest.Result) {
	table := newTable(w, []string{"Origin", "Train", "MAE", "RMSE", "MAPE"})
	for _, f := range res.Folds {
		table.Append([]string{
			f.Origin.Format(contracts.DateLayout),
			strconv.Itoa(f.TrainSize),
			fmt.Sprintf("%.2f", f.MAE),
			fmt.Sprintf("%.2f", f.RMSE),
			percent(f.MAPE),
		})
	}
	table.SetFooter([]string{"Mean", "", fmt.Sprintf("%.2f", res.MeanMAE), fmt.Sprintf("%.2f", res.MeanRMSE), percent(res.MeanMAPE)})
	table.Render()
}

func percent(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.2f%%", v)
}

// Forecast renders the forecast with its interval.
func Forecast(w io.Writer, res *contracts.ForecastResult) {
	level := fmt.Sprintf("%.0f%%", (1-res.Alpha)*100)
	table := newTable(w, []string{"Date", "Forecast", "Lower " + level, "Upper " + level})
	for _, p := range res.Points {
		table.Append([]string{
			p.Date.Format(contracts.DateLayout),
			fmt.Sprintf("%.2f", p.Forecast),
			fmt.Sprintf("%.2f", p.Lower),
			fmt.Sprintf("%.2f", p.Upper),
		})
	}
	table.Render()
}

// Stationarity renders the raw and differenced ADF tests.
func Stationarity(w io.Writer, r *stationarity.Report) {
	table := newTable(w, []string{"Series", "ADF", "p-value", "Lag", "Stationary"})
	for _, row := range []struct {
		name string
		res  *contracts.StationarityResult
	}{{"raw", r.Raw}, {"diff(1)", r.Differenced}} {
		if row.res == nil {
			continue
		}
		table.Append([]string{
			row.name,
			fmt.Sprintf("%.4f", row.res.Statistic),
			fmt.Sprintf("%.4f", row.res.PValue),
			strconv.Itoa(row.res.UsedLag),
			strconv.FormatBool(row.res.Stationary()),
		})
	}
	table.Render()
	fmt.Fprintf(w, "recommended d = %d\n", r.RecommendedD)
}

// Cleaning renders the cleaning summary and quality report.
func Cleaning(w io.Writer, s s0_data.CleaningSummary, q *quality.Report) {
	rows := [][]string{
		{"Rows before", strconv.Itoa(s.RowsBefore)},
		{"Rows after", strconv.Itoa(s.RowsAfter)},
		{"Removed", strconv.Itoa(s.Removed())},
		{"  sales <= 0", strconv.Itoa(s.NonPositiveSales)},
		{"  missing order date", strconv.Itoa(s.MissingOrderDate)},
		{"  duplicates", strconv.Itoa(s.Duplicates)},
	}
	if q != nil {
		rows = append(rows,
			[]string{"Negative quantity", strconv.Itoa(q.NegativeQuantity)},
			[]string{"Future dates", strconv.Itoa(q.FutureDates)},
			[]string{"Duplicate order IDs", strconv.Itoa(q.DuplicateOrderIDs)},
			[]string{"Outliers (>3σ)", strconv.Itoa(q.Outliers)},
			[]string{"Total issues", strconv.Itoa(q.TotalIssues())},
		)
		if !q.MinDate.IsZero() {
			rows = append(rows, []string{"Date range",
				q.MinDate.Format(contracts.DateLayout) + " .. " + q.MaxDate.Format(contracts.DateLayout)})
		}
	}
	keyValue(w, rows)
}

// ModelInfo renders the store summary.
func ModelInfo(w io.Writer, info modelstore.Info) {
	rows := [][]string{
		{"Exists", strconv.FormatBool(info.Exists)},
		{"Path", info.Path},
	}
	if info.Exists {
		rows = append(rows, []string{"Size", fmt.Sprintf("%d bytes", info.Size)})
		if info.ModifiedTime != nil {
			rows = append(rows, []string{"Modified", info.ModifiedTime.Format("2006-01-02 15:04:05")})
		}
	}
	if m := info.Metadata; m != nil {
		rows = append(rows,
			[]string{"Order", m.ModelOrder().String()},
			[]string{"Observations", strconv.Itoa(m.NObservations)},
			[]string{"Date range", m.DateRange.Start + " .. " + m.DateRange.End},
			[]string{"AIC", fmt.Sprintf("%.2f", m.AIC)},
			[]string{"BIC", fmt.Sprintf("%.2f", m.BIC)},
			[]string{"Saved at", m.SavedAt},
		)
	}
	keyValue(w, rows)
}

package report

import (
	"bytes"
	"encoding/csv"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/salescast/internal/backtest"
	"github.com/wonny/salescast/internal/contracts"
	"github.com/wonny/salescast/internal/modelstore"
	"github.com/wonny/salescast/internal/s0_data"
	"github.com/wonny/salescast/internal/s0_data/quality"
)

func sampleForecast() *contracts.ForecastResult {
	return &contracts.ForecastResult{
		Order: contracts.DefaultModelOrder(),
		Alpha: 0.05,
		Points: []contracts.ForecastPoint{
			{Date: time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), Forecast: 1200.5, Lower: 1000, Upper: 1401},
			{Date: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), Forecast: 1250, Lower: 990.25, Upper: 1509.75},
		},
	}
}

func sampleGrid() *contracts.GridSearchResult {
	best := contracts.NewModelOrder(0, 1, 1, 0, 1, 1)
	baseline := contracts.DefaultModelOrder()
	return &contracts.GridSearchResult{
		Entries: []contracts.SearchEntry{
			{Order: best, AIC: 410.2, BIC: 415.9},
			{Order: baseline, AIC: 414.7, BIC: 424.1},
		},
		Failed:       []contracts.FailedFit{{Order: contracts.NewModelOrder(2, 2, 2, 2, 2, 2), Reason: "not converged"}},
		Candidates:   3,
		Baseline:     &baseline,
		BaselineRank: 2,
		BaselineGap:  4.5,
	}
}

func readAll(t *testing.T, data string) [][]string {
	t.Helper()
	rows, err := csv.NewReader(strings.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteForecastCSV(t *testing.T) {
	tests := []struct {
		name       string
		withBounds bool
		want       [][]string
	}{
		{
			name: "point forecast",
			want: [][]string{
				{"date", "forecast_sales"},
				{"2024-01-31", "1200.5"},
				{"2024-02-29", "1250"},
			},
		},
		{
			name:       "with bounds",
			withBounds: true,
			want: [][]string{
				{"date", "forecast_sales", "lower", "upper"},
				{"2024-01-31", "1200.5", "1000", "1401"},
				{"2024-02-29", "1250", "990.25", "1509.75"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteForecastCSV(&buf, sampleForecast(), tt.withBounds))
			assert.Equal(t, tt.want, readAll(t, buf.String()))
		})
	}
}

func TestWriteGridCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteGridCSV(&buf, sampleGrid()))

	rows := readAll(t, buf.String())
	require.Len(t, rows, 3, "failed fits are not written")
	assert.Equal(t, []string{"p", "d", "q", "P", "D", "Q", "AIC", "BIC", "order", "seasonal_order"}, rows[0])
	assert.Equal(t, []string{"0", "1", "1", "0", "1", "1", "410.2", "415.9", "(0, 1, 1)", "(0, 1, 1, 12)"}, rows[1])
	assert.Equal(t, "(1, 1, 1)", rows[2][8])
}

func TestWriteFile_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output", "nested", "forecast.csv")
	err := WriteFile(path, func(w io.Writer) error {
		return WriteForecastCSV(w, sampleForecast(), false)
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "date,forecast_sales\n"))
}

func TestTables(t *testing.T) {
	var buf bytes.Buffer

	Top(&buf, sampleGrid(), 10)
	assert.Contains(t, buf.String(), "(0, 1, 1, 12)")
	assert.Contains(t, buf.String(), "410.20")

	buf.Reset()
	SearchSummary(&buf, sampleGrid())
	assert.Contains(t, buf.String(), "4.50 (significant)")

	buf.Reset()
	Evaluation(&buf, &contracts.EvaluationMetrics{MAE: 10, RMSE: 12, MAPE: math.NaN(), Order: contracts.DefaultModelOrder()})
	assert.Contains(t, buf.String(), "undefined")

	buf.Reset()
	Forecast(&buf, sampleForecast())
	assert.Contains(t, buf.String(), "Lower 95%")

	buf.Reset()
	Cleaning(&buf, s0_data.CleaningSummary{RowsBefore: 10, RowsAfter: 7, Duplicates: 3}, &quality.Report{FutureDates: 1})
	assert.Contains(t, buf.String(), "Removed")

	buf.Reset()
	ModelInfo(&buf, modelstore.Info{Path: "models/sarima_model.bin"})
	assert.Contains(t, buf.String(), "false")
}

func TestBacktestTable(t *testing.T) {
	res := &backtest.Result{
		Order:   contracts.DefaultModelOrder(),
		Horizon: 6,
		Folds: []backtest.Fold{
			{Origin: time.Date(2018, 6, 30, 0, 0, 0, 0, time.UTC), TrainSize: 42, MAE: 10, RMSE: 12, MAPE: 3.5},
			{Origin: time.Date(2018, 12, 31, 0, 0, 0, 0, time.UTC), TrainSize: 48, MAE: 20, RMSE: 24, MAPE: math.NaN()},
		},
		MeanMAE:  15,
		MeanRMSE: 18,
		MeanMAPE: math.NaN(),
	}

	var buf bytes.Buffer
	Backtest(&buf, res)
	out := buf.String()
	assert.Contains(t, out, "2018-06-30")
	assert.Contains(t, out, "3.50%")
	assert.Contains(t, out, "15.00")
	assert.NotContains(t, out, "NaN")
}

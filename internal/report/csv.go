// Package report writes forecast and search results as CSV files and
// terminal tables.
package report

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/wonny/salescast/internal/contracts"
)

var forecastHeader = []string{"date", "forecast_sales"}

var gridHeader = []string{"p", "d", "q", "P", "D", "Q", "AIC", "BIC", "order", "seasonal_order"}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteForecastCSV writes date,forecast_sales rows in date order.
// withBounds appends lower,upper columns.
func WriteForecastCSV(w io.Writer, res *contracts.ForecastResult, withBounds bool) error {
	cw := csv.NewWriter(w)

	header := forecastHeader
	if withBounds {
		header = append(append([]string{}, forecastHeader...), "lower", "upper")
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, p := range res.Points {
		row := []string{p.Date.Format(contracts.DateLayout), formatFloat(p.Forecast)}
		if withBounds {
			row = append(row, formatFloat(p.Lower), formatFloat(p.Upper))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteGridCSV writes converged candidates in result order (AIC ascending).
func WriteGridCSV(w io.Writer, res *contracts.GridSearchResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(gridHeader); err != nil {
		return err
	}

	for _, e := range res.Entries {
		o := e.Order
		row := []string{
			strconv.Itoa(o.P), strconv.Itoa(o.D), strconv.Itoa(o.Q),
			strconv.Itoa(o.SP), strconv.Itoa(o.SD), strconv.Itoa(o.SQ),
			formatFloat(e.AIC), formatFloat(e.BIC),
			o.OrderString(), o.SeasonalOrderString(),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile creates the parent directory of path and hands the file to fn.
func WriteFile(path string, fn func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

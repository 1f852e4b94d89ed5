package quality

import (
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/salescast/internal/contracts"
	"github.com/wonny/salescast/internal/timeseries"
)

func newTestGate() *QualityGate {
	g := NewQualityGate(DefaultConfig(), zerolog.Nop())
	g.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
	return g
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestQualityGate_Validate(t *testing.T) {
	records := []contracts.SalesRecord{
		{OrderID: "A", OrderDate: day(2020, 1, 5), Sales: 10, Quantity: 1},
		{OrderID: "A", OrderDate: day(2020, 1, 6), Sales: 12, Quantity: 1},
		{OrderID: "B", OrderDate: day(2020, 2, 1), Sales: -3, Quantity: -1},
		{OrderID: "C", Sales: 5, Quantity: 2},
		{OrderID: "D", OrderDate: day(2025, 1, 1), Sales: 8, Quantity: 1},
		{OrderID: "E", OrderDate: day(2021, 3, 1), Sales: math.NaN(), Quantity: math.NaN()},
	}

	report := newTestGate().Validate(records)

	assert.Equal(t, 6, report.Rows)
	assert.Equal(t, 1, report.NegativeQuantity)
	assert.Equal(t, 1, report.NonPositiveSales)
	assert.Equal(t, 1, report.MissingOrderDates)
	assert.Equal(t, 1, report.DuplicateOrderIDs)
	assert.Equal(t, 1, report.FutureDates)
	assert.Equal(t, day(2020, 1, 5), report.MinDate)
	assert.Equal(t, day(2025, 1, 1), report.MaxDate)
	assert.False(t, report.SuspiciousMinDate)
	assert.Equal(t, 4, report.TotalIssues())
}

func TestQualityGate_Validate_Clean(t *testing.T) {
	records := []contracts.SalesRecord{
		{OrderID: "A", OrderDate: day(2020, 1, 5), Sales: 10, Quantity: 1},
		{OrderID: "B", OrderDate: day(2020, 2, 5), Sales: 11, Quantity: 2},
	}

	report := newTestGate().Validate(records)

	assert.Zero(t, report.TotalIssues())
	assert.Zero(t, report.Outliers)
	assert.Zero(t, report.DuplicateOrderIDs)
}

func TestQualityGate_Validate_SuspiciousMinDate(t *testing.T) {
	records := []contracts.SalesRecord{
		{OrderID: "A", OrderDate: day(1970, 1, 1), Sales: 10},
	}

	report := newTestGate().Validate(records)
	assert.True(t, report.SuspiciousMinDate)
}

func TestQualityGate_Validate_Outliers(t *testing.T) {
	records := make([]contracts.SalesRecord, 0, 51)
	for i := 0; i < 50; i++ {
		records = append(records, contracts.SalesRecord{OrderDate: day(2020, 1, 1), Sales: 100 + float64(i%3)})
	}
	records = append(records, contracts.SalesRecord{OrderDate: day(2020, 1, 1), Sales: 10000})

	report := newTestGate().Validate(records)
	assert.Equal(t, 1, report.Outliers)
}

func TestQualityGate_CheckSeries(t *testing.T) {
	start := timeseries.MonthEnd(day(2018, 1, 1))
	full := timeseries.Monthly(start, make([]float64, 36))
	short := timeseries.Monthly(start, make([]float64, 12))

	// 30 months over a 36 month span
	times := full.Times()
	gappy, err := timeseries.New(append(times[:10:10], times[16:]...), make([]float64, 30))
	require.NoError(t, err)

	tests := []struct {
		name     string
		series   *timeseries.Series
		passed   bool
		span     int
		coverage float64
		reasons  []string
	}{
		{name: "complete", series: full, passed: true, span: 36, coverage: 1.0},
		{name: "too short", series: short, passed: false, span: 12, coverage: 1.0, reasons: []string{"too few months"}},
		{name: "missing months", series: gappy, passed: false, span: 36, coverage: 30.0 / 36.0, reasons: []string{"missing months"}},
	}

	gate := newTestGate()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := gate.CheckSeries(tt.series)
			assert.Equal(t, tt.passed, check.Passed)
			assert.Equal(t, tt.span, check.SpanMonths)
			assert.InDelta(t, tt.coverage, check.MonthCoverage, 1e-12)
			assert.Equal(t, tt.reasons, check.Reasons)
		})
	}
}

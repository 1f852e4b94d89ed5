// Package quality reports data quality issues of parsed sales records
// before cleaning and gates the cleaned monthly series.
package quality

import (
	"math"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/wonny/salescast/internal/contracts"
	"github.com/wonny/salescast/internal/timeseries"
)

// Config holds quality gate thresholds
type Config struct {
	MinMonths        int     `yaml:"min_months"`         // 24 (2 seasonal cycles)
	MinMonthCoverage float64 `yaml:"min_month_coverage"` // 1.0 (no missing months)
	OutlierSigma     float64 `yaml:"outlier_sigma"`      // 3
	OldestYear       int     `yaml:"oldest_year"`        // 2000
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		MinMonths:        24,
		MinMonthCoverage: 1.0,
		OutlierSigma:     3,
		OldestYear:       2000,
	}
}

// Report 검증 리포트 (클리닝 이전 데이터 기준)
type Report struct {
	Rows              int       `json:"rows"`
	NegativeQuantity  int       `json:"negative_quantity"`
	NonPositiveSales  int       `json:"non_positive_sales"`
	MissingOrderDates int       `json:"missing_order_dates"`
	DuplicateOrderIDs int       `json:"duplicate_order_ids"`
	FutureDates       int       `json:"future_dates"`
	Outliers          int       `json:"outliers"`
	MinDate           time.Time `json:"min_date"`
	MaxDate           time.Time `json:"max_date"`
	SuspiciousMinDate bool      `json:"suspicious_min_date"`
}

// TotalIssues counts critical issues (outliers and duplicate IDs are informational).
func (r *Report) TotalIssues() int {
	return r.NegativeQuantity + r.NonPositiveSales + r.MissingOrderDates + r.FutureDates
}

// SeriesCheck 월별 시계열 품질
type SeriesCheck struct {
	Months        int      `json:"months"`
	SpanMonths    int      `json:"span_months"`
	MonthCoverage float64  `json:"month_coverage"`
	Passed        bool     `json:"passed"`
	Reasons       []string `json:"reasons,omitempty"`
}

// QualityGate validates records and series
type QualityGate struct {
	config Config
	now    func() time.Time
	log    zerolog.Logger
}

// NewQualityGate creates a new QualityGate instance
func NewQualityGate(config Config, log zerolog.Logger) *QualityGate {
	return &QualityGate{
		config: config,
		now:    time.Now,
		log:    log.With().Str("component", "quality.gate").Logger(),
	}
}

// Validate inspects parsed (not yet cleaned) records.
func (g *QualityGate) Validate(records []contracts.SalesRecord) *Report {
	report := &Report{Rows: len(records)}
	now := g.now()

	orderIDs := make(map[string]int, len(records))
	sales := make([]float64, 0, len(records))
	for _, r := range records {
		if r.Quantity < 0 {
			report.NegativeQuantity++
		}
		if !math.IsNaN(r.Sales) {
			if r.Sales <= 0 {
				report.NonPositiveSales++
			}
			sales = append(sales, r.Sales)
		}
		if r.OrderID != "" {
			orderIDs[r.OrderID]++
		}

		if !r.HasOrderDate() {
			report.MissingOrderDates++
			continue
		}
		if r.OrderDate.After(now) {
			report.FutureDates++
		}
		if report.MinDate.IsZero() || r.OrderDate.Before(report.MinDate) {
			report.MinDate = r.OrderDate
		}
		if r.OrderDate.After(report.MaxDate) {
			report.MaxDate = r.OrderDate
		}
	}

	for _, n := range orderIDs {
		if n > 1 {
			report.DuplicateOrderIDs += n - 1
		}
	}
	if !report.MinDate.IsZero() && report.MinDate.Year() < g.config.OldestYear {
		report.SuspiciousMinDate = true
	}

	if len(sales) > 1 {
		mean, std := stat.MeanStdDev(sales, nil)
		for _, v := range sales {
			if math.Abs(v-mean) > g.config.OutlierSigma*std {
				report.Outliers++
			}
		}
	}

	event := g.log.Info()
	if report.TotalIssues() > 0 {
		event = g.log.Warn()
	}
	event.
		Int("rows", report.Rows).
		Int("negative_quantity", report.NegativeQuantity).
		Int("non_positive_sales", report.NonPositiveSales).
		Int("missing_order_dates", report.MissingOrderDates).
		Int("duplicate_order_ids", report.DuplicateOrderIDs).
		Int("future_dates", report.FutureDates).
		Int("outliers", report.Outliers).
		Bool("suspicious_min_date", report.SuspiciousMinDate).
		Int("total_issues", report.TotalIssues()).
		Msg("validation report")

	return report
}

// CheckSeries gates a monthly series on length and month coverage.
func (g *QualityGate) CheckSeries(s *timeseries.Series) *SeriesCheck {
	check := &SeriesCheck{Months: s.Len()}
	if s.Len() > 0 {
		start, end := s.Start(), s.End()
		check.SpanMonths = (end.Year()-start.Year())*12 + int(end.Month()-start.Month()) + 1
		check.MonthCoverage = float64(s.Len()) / float64(check.SpanMonths)
	}

	if check.Months < g.config.MinMonths {
		check.Reasons = append(check.Reasons, "too few months")
	}
	if check.MonthCoverage < g.config.MinMonthCoverage {
		check.Reasons = append(check.Reasons, "missing months")
	}
	check.Passed = len(check.Reasons) == 0

	if !check.Passed {
		g.log.Warn().
			Int("months", check.Months).
			Int("span_months", check.SpanMonths).
			Float64("month_coverage", check.MonthCoverage).
			Strs("reasons", check.Reasons).
			Msg("series quality gate failed")
	}
	return check
}

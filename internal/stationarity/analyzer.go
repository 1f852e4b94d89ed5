// Package stationarity checks whether a monthly series needs differencing
// before modeling. Its recommendation is advisory.
package stationarity

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/wonny/salescast/internal/contracts"
	"github.com/wonny/salescast/internal/timeseries"
)

// Report 원본/1차 차분 ADF 결과
type Report struct {
	Raw              *contracts.StationarityResult `json:"raw"`
	Differenced      *contracts.StationarityResult `json:"differenced"`
	RecommendedD     int                           `json:"recommended_d"`
	RawStationary    bool                          `json:"raw_stationary"`
	DiffedStationary bool                          `json:"differenced_stationary"`
	Warning          string                        `json:"warning,omitempty"`
}

// Analyzer wraps a unit root tester.
type Analyzer struct {
	tester contracts.UnitRootTester
	log    zerolog.Logger
}

// NewAnalyzer creates a new analyzer
func NewAnalyzer(tester contracts.UnitRootTester, log zerolog.Logger) *Analyzer {
	return &Analyzer{
		tester: tester,
		log:    log.With().Str("component", "stationarity.analyzer").Logger(),
	}
}

// Difference returns the first difference; the first observation is
// dropped and each value keeps the later timestamp.
func (a *Analyzer) Difference(s *timeseries.Series) *timeseries.Series {
	if s.Len() < 2 {
		out, _ := timeseries.New(nil, nil)
		return out
	}
	values := s.Values()
	diffs := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		diffs[i-1] = values[i] - values[i-1]
	}
	out, _ := timeseries.New(s.Times()[1:], diffs)
	return out
}

// TestStationarity runs the ADF test; the series is not modified.
func (a *Analyzer) TestStationarity(s *timeseries.Series) (*contracts.StationarityResult, error) {
	if s.Len() == 0 {
		return nil, fmt.Errorf("stationarity test: %w", contracts.ErrEmptyInput)
	}
	return a.tester.ADF(s.Values())
}

// Analyze tests the raw series and, separately, its first difference.
func (a *Analyzer) Analyze(s *timeseries.Series) (*Report, error) {
	raw, err := a.TestStationarity(s)
	if err != nil {
		return nil, fmt.Errorf("raw series: %w", err)
	}
	diffed, err := a.TestStationarity(a.Difference(s))
	if err != nil {
		return nil, fmt.Errorf("differenced series: %w", err)
	}

	report := &Report{
		Raw:              raw,
		Differenced:      diffed,
		RawStationary:    raw.Stationary(),
		DiffedStationary: diffed.Stationary(),
	}
	switch {
	case report.RawStationary:
		report.RecommendedD = 0
	case report.DiffedStationary:
		report.RecommendedD = 1
	default:
		report.RecommendedD = 1
		report.Warning = "series is not stationary after one difference; consider d=2 or a transform"
	}

	event := a.log.Info()
	if report.Warning != "" {
		event = a.log.Warn().Str("warning", report.Warning)
	}
	event.
		Float64("raw_statistic", raw.Statistic).
		Float64("raw_p_value", raw.PValue).
		Float64("diff_statistic", diffed.Statistic).
		Float64("diff_p_value", diffed.PValue).
		Int("recommended_d", report.RecommendedD).
		Msg("stationarity analysis")

	return report, nil
}

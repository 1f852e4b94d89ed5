package stationarity

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/salescast/internal/contracts"
	"github.com/wonny/salescast/internal/sarima"
	"github.com/wonny/salescast/internal/timeseries"
)

var start = time.Date(2016, 1, 31, 0, 0, 0, 0, time.UTC)

// fakeTester returns scripted p-values and records the inputs it saw.
type fakeTester struct {
	pValues []float64
	calls   [][]float64
	err     error
}

func (f *fakeTester) ADF(values []float64) (*contracts.StationarityResult, error) {
	f.calls = append(f.calls, append([]float64(nil), values...))
	if f.err != nil {
		return nil, f.err
	}
	p := f.pValues[len(f.calls)-1]
	return &contracts.StationarityResult{PValue: p, NObs: len(values)}, nil
}

func TestAnalyzer_Difference(t *testing.T) {
	s := timeseries.Monthly(start, []float64{10, 13, 11, 20})
	a := NewAnalyzer(&fakeTester{}, zerolog.Nop())

	d := a.Difference(s)

	require.Equal(t, s.Len()-1, d.Len())
	assert.Equal(t, []float64{3, -2, 9}, d.Values())
	assert.Equal(t, s.Times()[1:], d.Times())
	// input untouched
	assert.Equal(t, []float64{10, 13, 11, 20}, s.Values())
}

func TestAnalyzer_Difference_Short(t *testing.T) {
	a := NewAnalyzer(&fakeTester{}, zerolog.Nop())
	assert.Zero(t, a.Difference(timeseries.Monthly(start, []float64{1})).Len())
}

func TestAnalyzer_Analyze_Recommendation(t *testing.T) {
	tests := []struct {
		name    string
		pRaw    float64
		pDiff   float64
		wantD   int
		warning bool
	}{
		{name: "raw stationary", pRaw: 0.01, pDiff: 0.001, wantD: 0},
		{name: "needs one difference", pRaw: 0.6, pDiff: 0.01, wantD: 1},
		{name: "still non-stationary", pRaw: 0.9, pDiff: 0.4, wantD: 1, warning: true},
	}

	s := timeseries.Monthly(start, []float64{5, 7, 6, 9, 8, 12, 11, 14})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tester := &fakeTester{pValues: []float64{tt.pRaw, tt.pDiff}}
			report, err := NewAnalyzer(tester, zerolog.Nop()).Analyze(s)
			require.NoError(t, err)

			assert.Equal(t, tt.wantD, report.RecommendedD)
			assert.Equal(t, tt.warning, report.Warning != "")

			// raw and differenced series are tested in distinct calls
			require.Len(t, tester.calls, 2)
			assert.Len(t, tester.calls[0], s.Len())
			assert.Len(t, tester.calls[1], s.Len()-1)
		})
	}
}

func TestAnalyzer_Errors(t *testing.T) {
	a := NewAnalyzer(&fakeTester{err: sarima.ErrConstantSeries}, zerolog.Nop())

	_, err := a.TestStationarity(timeseries.Monthly(start, nil))
	assert.ErrorIs(t, err, contracts.ErrEmptyInput)

	_, err = a.Analyze(timeseries.Monthly(start, []float64{1, 1, 1, 1, 1, 1, 1}))
	assert.True(t, errors.Is(err, sarima.ErrConstantSeries))
}

func TestAnalyzer_RandomWalkWithEngine(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	values := make([]float64, 144)
	level := 1000.0
	for i := range values {
		level += 20 * rng.NormFloat64()
		values[i] = level
	}
	s := timeseries.Monthly(start, values)

	a := NewAnalyzer(sarima.NewEngine(zerolog.Nop()), zerolog.Nop())
	report, err := a.Analyze(s)
	require.NoError(t, err)

	// The differenced walk is white noise.
	assert.True(t, report.DiffedStationary)
	assert.Less(t, report.Differenced.PValue, report.Raw.PValue)
	assert.Equal(t, 1-boolToInt(report.RawStationary), report.RecommendedD)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

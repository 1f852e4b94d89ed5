package sarima

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/salescast/internal/contracts"
	"github.com/wonny/salescast/internal/timeseries"
)

var start = time.Date(2015, 1, 31, 0, 0, 0, 0, time.UTC)

func constantSeries(n int, v float64) *timeseries.Series {
	values := make([]float64, n)
	for i := range values {
		values[i] = v
	}
	return timeseries.Monthly(start, values)
}

func ar1Series(n int, phi float64, seed int64) *timeseries.Series {
	rng := rand.New(rand.NewSource(seed))
	values := make([]float64, n)
	prev := 0.0
	for i := range values {
		prev = phi*prev + rng.NormFloat64()
		values[i] = 50 + prev
	}
	return timeseries.Monthly(start, values)
}

func seasonalSeries(n int, seed int64) *timeseries.Series {
	rng := rand.New(rand.NewSource(seed))
	values := make([]float64, n)
	for i := range values {
		values[i] = 1000 + 5*float64(i) + 120*math.Sin(2*math.Pi*float64(i)/12) + 10*rng.NormFloat64()
	}
	return timeseries.Monthly(start, values)
}

func TestPolynomials(t *testing.T) {
	ar := arPolynomial([]float64{0.5}, []float64{0.3}, 12)
	require.Len(t, ar, 14)
	assert.Equal(t, 1.0, ar[0])
	assert.InDelta(t, -0.5, ar[1], 1e-12)
	assert.InDelta(t, -0.3, ar[12], 1e-12)
	assert.InDelta(t, 0.15, ar[13], 1e-12)

	ma := maPolynomial([]float64{0.4}, []float64{0.2}, 12)
	assert.InDelta(t, 0.4, ma[1], 1e-12)
	assert.InDelta(t, 0.2, ma[12], 1e-12)
	assert.InDelta(t, 0.08, ma[13], 1e-12)

	d := differencingPolynomial(1, 1, 12)
	require.Len(t, d, 14)
	assert.Equal(t, []float64{1, -1}, d[:2])
	assert.Equal(t, -1.0, d[12])
	assert.Equal(t, 1.0, d[13])
}

func TestPsiWeights_RandomWalk(t *testing.T) {
	psi := psiWeights([]float64{1, -1}, []float64{1}, 5)
	assert.Equal(t, []float64{1, 1, 1, 1, 1}, psi)
}

func TestConstrainStationary(t *testing.T) {
	for _, x := range []float64{10, -50, 0.3} {
		phi := constrainStationary([]float64{x})
		assert.Less(t, math.Abs(phi[0]), 1.0, "x=%v", x)
	}

	// AR(2) stationarity triangle
	for _, x := range [][]float64{{3, -4}, {-2, 5}, {0.5, 0.5}} {
		phi := constrainStationary(x)
		assert.Less(t, phi[0]+phi[1], 1.0, "x=%v", x)
		assert.Less(t, phi[1]-phi[0], 1.0, "x=%v", x)
		assert.Less(t, math.Abs(phi[1]), 1.0, "x=%v", x)
	}
}

func TestDiff(t *testing.T) {
	assert.Equal(t, []float64{1, 2, 3}, Diff([]float64{1, 2, 4, 7}))
	assert.Equal(t, []float64{3}, SeasonalDiff([]float64{1, 2, 4}, 2))
	assert.Empty(t, SeasonalDiff([]float64{1, 2}, 12))
}

func TestFit_ConstantSeriesPrefersTrivialOrder(t *testing.T) {
	engine := NewEngine(zerolog.Nop())
	series := constantSeries(36, 100)
	ctx := context.Background()

	trivial, err := engine.Fit(ctx, series, contracts.NewModelOrder(0, 0, 0, 0, 0, 0), contracts.FitOptions{})
	require.NoError(t, err)

	for _, o := range []contracts.ModelOrder{
		contracts.NewModelOrder(1, 0, 0, 0, 0, 0),
		contracts.NewModelOrder(0, 0, 1, 0, 0, 0),
		contracts.NewModelOrder(0, 1, 0, 0, 0, 0),
		contracts.NewModelOrder(0, 0, 0, 0, 1, 0),
		contracts.NewModelOrder(1, 1, 1, 1, 1, 1),
	} {
		m, err := engine.Fit(ctx, series, o, contracts.FitOptions{})
		require.NoError(t, err, o.String())
		assert.Greater(t, m.AIC(), trivial.AIC(), o.String())
	}

	fc, err := trivial.Forecast(12, 0.05)
	require.NoError(t, err)
	require.Len(t, fc.Points, 12)

	width := fc.Points[0].Upper - fc.Points[0].Lower
	for _, p := range fc.Points {
		assert.InDelta(t, 100, p.Forecast, 1e-9)
		assert.LessOrEqual(t, p.Lower, p.Forecast)
		assert.GreaterOrEqual(t, p.Upper, p.Forecast)
		assert.Less(t, p.Upper-p.Lower, 0.01)
		assert.InDelta(t, width, p.Upper-p.Lower, 1e-12)
	}
}

func TestFit_RecoversAR1(t *testing.T) {
	engine := NewEngine(zerolog.Nop())
	series := ar1Series(240, 0.6, 7)

	fm, err := engine.Fit(context.Background(), series, contracts.NewModelOrder(1, 0, 0, 0, 0, 0), contracts.FitOptions{MaxIter: 200})
	require.NoError(t, err)

	m := fm.(*Model)
	assert.InDelta(t, 0.6, m.Params().AR[0], 0.15)
	mean, ok := m.Mean()
	assert.True(t, ok)
	assert.InDelta(t, 50, mean, 1)
	assert.InDelta(t, 1, m.Sigma2(), 0.3)
	assert.Equal(t, 240, m.NObs())
}

func TestFit_EnforcedCoefficientsStayStationary(t *testing.T) {
	engine := NewEngine(zerolog.Nop())
	series := ar1Series(120, 0.9, 3)

	fm, err := engine.Fit(context.Background(), series, contracts.NewModelOrder(1, 0, 1, 0, 0, 0), contracts.FitOptions{
		EnforceStationarity:  true,
		EnforceInvertibility: true,
		MaxIter:              200,
	})
	require.NoError(t, err)

	p := fm.(*Model).Params()
	assert.Less(t, math.Abs(p.AR[0]), 1.0)
	assert.Less(t, math.Abs(p.MA[0]), 1.0)
}

func TestFit_TooShortIsFittingError(t *testing.T) {
	engine := NewEngine(zerolog.Nop())
	series := seasonalSeries(13, 1)

	_, err := engine.Fit(context.Background(), series, contracts.DefaultModelOrder(), contracts.FitOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, contracts.ErrFitting)
	assert.ErrorIs(t, err, ErrTooFewObservations)

	var fe *contracts.FittingError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, contracts.DefaultModelOrder(), fe.Order)
}

func TestFit_CancelledContext(t *testing.T) {
	engine := NewEngine(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Fit(ctx, seasonalSeries(36, 1), contracts.DefaultModelOrder(), contracts.FitOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestForecast_SeasonalModel(t *testing.T) {
	engine := NewEngine(zerolog.Nop())
	series := seasonalSeries(48, 11)

	fm, err := engine.Fit(context.Background(), series, contracts.DefaultModelOrder(), contracts.FitOptions{})
	require.NoError(t, err)

	fc, err := fm.Forecast(12, 0.05)
	require.NoError(t, err)
	require.Len(t, fc.Points, 12)

	prev := series.End()
	for i, p := range fc.Points {
		assert.Equal(t, timeseries.NextMonthEnd(prev), p.Date, "step %d", i)
		assert.LessOrEqual(t, p.Lower, p.Forecast)
		assert.LessOrEqual(t, p.Forecast, p.Upper)
		if i > 0 {
			prevWidth := fc.Points[i-1].Upper - fc.Points[i-1].Lower
			assert.GreaterOrEqual(t, p.Upper-p.Lower, prevWidth-1e-9)
		}
		prev = p.Date
	}
}

func TestForecast_RandomWalkRepeatsLastValue(t *testing.T) {
	engine := NewEngine(zerolog.Nop())
	series := ar1Series(60, 1, 5)

	fm, err := engine.Fit(context.Background(), series, contracts.NewModelOrder(0, 1, 0, 0, 0, 0), contracts.FitOptions{})
	require.NoError(t, err)

	_, last := series.At(series.Len() - 1)
	fc, err := fm.Forecast(3, 0.05)
	require.NoError(t, err)
	for _, p := range fc.Points {
		assert.InDelta(t, last, p.Forecast, 1e-9)
	}
	assert.Greater(t, fc.Points[2].Upper-fc.Points[2].Lower, fc.Points[0].Upper-fc.Points[0].Lower)
}

func TestForecast_InvalidHorizon(t *testing.T) {
	engine := NewEngine(zerolog.Nop())
	fm, err := engine.Fit(context.Background(), constantSeries(24, 5), contracts.NewModelOrder(0, 0, 0, 0, 0, 0), contracts.FitOptions{})
	require.NoError(t, err)

	_, err = fm.Forecast(0, 0.05)
	assert.ErrorIs(t, err, contracts.ErrInvalidHorizon)
}

func TestCodec_RoundTrip(t *testing.T) {
	engine := NewEngine(zerolog.Nop())
	series := seasonalSeries(36, 2)

	fm, err := engine.Fit(context.Background(), series, contracts.NewModelOrder(1, 1, 0, 0, 1, 1), contracts.FitOptions{})
	require.NoError(t, err)

	blob, err := engine.Marshal(fm)
	require.NoError(t, err)

	decoded, err := engine.Unmarshal(blob)
	require.NoError(t, err)

	assert.Equal(t, fm.Order(), decoded.Order())
	assert.Equal(t, fm.AIC(), decoded.AIC())
	assert.Equal(t, fm.BIC(), decoded.BIC())
	assert.Equal(t, series.Values(), decoded.Series().Values())
	assert.True(t, series.End().Equal(decoded.Series().End()))

	want, err := fm.Forecast(6, 0.05)
	require.NoError(t, err)
	got, err := decoded.Forecast(6, 0.05)
	require.NoError(t, err)
	for i := range want.Points {
		assert.InDelta(t, want.Points[i].Forecast, got.Points[i].Forecast, 1e-9)
		assert.InDelta(t, want.Points[i].Upper, got.Points[i].Upper, 1e-9)
	}
}

func TestCodec_RejectsGarbage(t *testing.T) {
	engine := NewEngine(zerolog.Nop())
	_, err := engine.Unmarshal([]byte("not a model"))
	assert.Error(t, err)
}

package training

import (
	"context"
	"encoding/json"
	"errors"
	"math"
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

var start = time.Date(2015, 1, 31, 0, 0, 0, 0, time.UTC)

func salesSeries(n int, seed int64) *timeseries.Series {
	rng := rand.New(rand.NewSource(seed))
	values := make([]float64, n)
	for i := range values {
		values[i] = 20000 + 150*float64(i) + 4000*math.Sin(2*math.Pi*float64(i)/12) + 500*rng.NormFloat64()
	}
	return timeseries.Monthly(start, values)
}

type failingEstimator struct{ err error }

func (f failingEstimator) Fit(context.Context, *timeseries.Series, contracts.ModelOrder, contracts.FitOptions) (contracts.FittedModel, error) {
	return nil, f.err
}

func TestTrainer_MinimumLength(t *testing.T) {
	trainer := NewTrainer(sarima.NewEngine(zerolog.Nop()), zerolog.Nop())
	order := contracts.NewModelOrder(1, 0, 0, 0, 0, 0)

	_, _, err := trainer.Train(context.Background(), salesSeries(23, 1), order)
	assert.ErrorIs(t, err, contracts.ErrInsufficientData)

	model, meta, err := trainer.Train(context.Background(), salesSeries(24, 1), order)
	require.NoError(t, err)
	require.NotNil(t, model)

	assert.Equal(t, contracts.ModelTypeSARIMA, meta.ModelType)
	assert.Equal(t, [3]int{1, 0, 0}, meta.Order)
	assert.Equal(t, [4]int{0, 0, 0, 12}, meta.SeasonalOrder)
	assert.Equal(t, 24, meta.NObservations)
	assert.Equal(t, "2015-01-31", meta.DateRange.Start)
	assert.Equal(t, "2016-12-31", meta.DateRange.End)
	assert.Equal(t, model.AIC(), meta.AIC)
	assert.Empty(t, meta.SavedAt)
}

func TestTrainer_DefaultOrder(t *testing.T) {
	trainer := NewTrainer(sarima.NewEngine(zerolog.Nop()), zerolog.Nop())

	model, meta, err := trainer.Train(context.Background(), salesSeries(48, 2), contracts.DefaultModelOrder())
	require.NoError(t, err)
	assert.Equal(t, contracts.DefaultModelOrder(), model.Order())
	assert.NoError(t, meta.CheckModel(model))
}

func TestTrainer_FitFailureIsWrapped(t *testing.T) {
	cause := errors.New("singular")
	trainer := NewTrainer(failingEstimator{err: cause}, zerolog.Nop())

	_, _, err := trainer.Train(context.Background(), salesSeries(30, 1), contracts.DefaultModelOrder())

	var fe *contracts.FittingError
	require.ErrorAs(t, err, &fe)
	assert.ErrorIs(t, err, contracts.ErrFitting)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, contracts.DefaultModelOrder(), fe.Order)
}

func TestTrainer_WithMinLength(t *testing.T) {
	trainer := NewTrainer(sarima.NewEngine(zerolog.Nop()), zerolog.Nop(), WithMinLength(36))
	_, _, err := trainer.Train(context.Background(), salesSeries(30, 1), contracts.NewModelOrder(0, 1, 0, 0, 0, 0))
	assert.ErrorIs(t, err, contracts.ErrInsufficientData)
}

func TestMetrics(t *testing.T) {
	actual := []float64{100, 200, 300}
	predicted := []float64{110, 190, 330}

	assert.InDelta(t, (10+10+30)/3.0, MAE(actual, predicted), 1e-12)
	assert.InDelta(t, math.Sqrt((100+100+900)/3.0), RMSE(actual, predicted), 1e-12)

	mape, err := MAPE(actual, predicted)
	require.NoError(t, err)
	assert.InDelta(t, (0.1+0.05+0.1)/3*100, mape, 1e-9)

	_, err = MAPE([]float64{0, 1}, []float64{1, 1})
	assert.ErrorIs(t, err, contracts.ErrDivisionByZero)

	// negative actuals (returns, refunds) still give a non-negative MAPE
	mape, err = MAPE([]float64{-100, -200}, []float64{-110, -190})
	require.NoError(t, err)
	assert.InDelta(t, (0.1+0.05)/2*100, mape, 1e-9)
}

func TestEvaluator_Evaluate(t *testing.T) {
	series := salesSeries(48, 3)
	ev := NewEvaluator(sarima.NewEngine(zerolog.Nop()), contracts.FitOptions{}, zerolog.Nop())

	m, err := ev.Evaluate(context.Background(), series, contracts.DefaultModelOrder(), 12)
	require.NoError(t, err)

	assert.Equal(t, 36, m.TrainSize)
	assert.Equal(t, 12, m.TestSize)
	assert.GreaterOrEqual(t, m.MAE, 0.0)
	assert.GreaterOrEqual(t, m.RMSE, m.MAE)
	assert.True(t, m.MAPEDefined())
	assert.GreaterOrEqual(t, m.MAPE, 0.0)

	require.Len(t, m.Periods, 12)
	times := series.Times()
	for i, p := range m.Periods {
		assert.Equal(t, times[36+i], p.Date)
	}
}

func TestEvaluator_InvalidSplit(t *testing.T) {
	series := salesSeries(12, 1)
	ev := NewEvaluator(sarima.NewEngine(zerolog.Nop()), contracts.FitOptions{}, zerolog.Nop())

	for _, holdout := range []int{0, -1, 12, 13} {
		_, err := ev.Evaluate(context.Background(), series, contracts.NewModelOrder(0, 0, 0, 0, 0, 0), holdout)
		assert.ErrorIs(t, err, contracts.ErrInsufficientData, "holdout=%d", holdout)
	}
}

func TestEvaluator_ZeroActual(t *testing.T) {
	values := salesSeries(30, 4).Values()
	values[len(values)-1] = 0
	series := timeseries.Monthly(start, values)
	ev := NewEvaluator(sarima.NewEngine(zerolog.Nop()), contracts.FitOptions{}, zerolog.Nop())

	m, err := ev.Evaluate(context.Background(), series, contracts.NewModelOrder(0, 1, 0, 0, 0, 0), 6)
	assert.ErrorIs(t, err, contracts.ErrDivisionByZero)
	require.NotNil(t, m)
	assert.False(t, m.MAPEDefined())
	assert.Positive(t, m.MAE)
	assert.GreaterOrEqual(t, m.RMSE, m.MAE)

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"mape":null`)
}

func TestEvaluator_GappedHoldout(t *testing.T) {
	// 30 months Jan 2015 - Jun 2017, nothing for Jul - Dec 2017, then Jan and Feb 2018
	var times []time.Time
	var values []float64
	add := func(ts time.Time) {
		times = append(times, ts)
		values = append(values, 1000+100*float64(ts.Month()))
	}
	for ts := start; !ts.After(time.Date(2017, 6, 30, 0, 0, 0, 0, time.UTC)); ts = timeseries.NextMonthEnd(ts) {
		add(ts)
	}
	add(time.Date(2018, 1, 31, 0, 0, 0, 0, time.UTC))
	add(time.Date(2018, 2, 28, 0, 0, 0, 0, time.UTC))

	series, err := timeseries.New(times, values)
	require.NoError(t, err)
	require.Equal(t, 32, series.Len())

	ev := NewEvaluator(sarima.NewEngine(zerolog.Nop()), contracts.FitOptions{}, zerolog.Nop())
	m, err := ev.Evaluate(context.Background(), series, contracts.NewModelOrder(0, 0, 0, 0, 1, 0), 2)
	require.NoError(t, err)

	require.Len(t, m.Periods, 2)
	for _, p := range m.Periods {
		assert.InDelta(t, p.Actual, p.Predicted, 1e-6, p.Date.Format(contracts.DateLayout))
	}
	assert.InDelta(t, 1100.0, m.Periods[0].Actual, 1e-12)
	assert.InDelta(t, 0, m.MAE, 1e-6)
	assert.InDelta(t, 0, m.RMSE, 1e-6)
}

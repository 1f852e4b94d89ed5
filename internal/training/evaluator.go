package training

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/wonny/salescast/internal/contracts"
	"github.com/wonny/salescast/internal/metrics"
	"github.com/wonny/salescast/internal/timeseries"
)

// Evaluator measures out-of-sample accuracy on a holdout split.
// ⭐ SSOT: 평가 지표 계산은 여기서만
type Evaluator struct {
	estimator contracts.Estimator
	opts      contracts.FitOptions
	alpha     float64
	log       zerolog.Logger
}

// NewEvaluator creates a new evaluator
func NewEvaluator(estimator contracts.Estimator, opts contracts.FitOptions, log zerolog.Logger) *Evaluator {
	return &Evaluator{
		estimator: estimator,
		opts:      opts,
		alpha:     0.05,
		log:       log.With().Str("component", "training.evaluator").Logger(),
	}
}

// Evaluate fits order on all but the last holdout observations and
// scores a holdout-step forecast against them.
//
// When an actual value is zero, MAPE is NaN and the returned error wraps
// contracts.ErrDivisionByZero; MAE and RMSE are still returned.
func (e *Evaluator) Evaluate(ctx context.Context, series *timeseries.Series, order contracts.ModelOrder, holdout int) (*contracts.EvaluationMetrics, error) {
	if holdout <= 0 || holdout >= series.Len() {
		return nil, fmt.Errorf("%w: holdout %d leaves no training data (n=%d)",
			contracts.ErrInsufficientData, holdout, series.Len())
	}
	train, test := series.Split(holdout)

	// the series may skip months: forecast up to the last test month and
	// score each test month against its own step
	steps := make([]int, test.Len())
	for i, ts := range test.Times() {
		steps[i] = timeseries.MonthsBetween(train.End(), ts)
		if steps[i] < 1 {
			return nil, fmt.Errorf("test month %s does not follow training end %s",
				ts.Format(contracts.DateLayout), train.End().Format(contracts.DateLayout))
		}
	}

	model, err := e.estimator.Fit(ctx, train, order, e.opts)
	if err != nil {
		return nil, err
	}
	fc, err := model.Forecast(steps[len(steps)-1], e.alpha)
	if err != nil {
		return nil, fmt.Errorf("forecast holdout: %w", err)
	}

	actual := test.Values()
	predicted := make([]float64, len(actual))
	m := &contracts.EvaluationMetrics{
		TrainSize: train.Len(),
		TestSize:  test.Len(),
		Order:     order,
		Periods:   make([]contracts.EvaluatedStep, test.Len()),
	}
	for i := range actual {
		date, _ := test.At(i)
		predicted[i] = fc.Points[steps[i]-1].Forecast
		m.Periods[i] = contracts.EvaluatedStep{Date: date, Actual: actual[i], Predicted: predicted[i]}
	}

	m.MAE = MAE(actual, predicted)
	m.RMSE = RMSE(actual, predicted)
	mape, mapeErr := MAPE(actual, predicted)
	m.MAPE = mape

	for name, v := range map[string]float64{"mae": m.MAE, "rmse": m.RMSE, "mape": m.MAPE} {
		if !math.IsNaN(v) {
			metrics.EvaluationError.WithLabelValues(name).Set(v)
		}
	}

	e.log.Info().
		Str("order", order.String()).
		Int("train_size", m.TrainSize).
		Int("test_size", m.TestSize).
		Float64("mae", m.MAE).
		Float64("rmse", m.RMSE).
		Float64("mape", m.MAPE).
		Msg("holdout evaluation")

	return m, mapeErr
}

// MAE mean absolute error
func MAE(actual, predicted []float64) float64 {
	diff := make([]float64, len(actual))
	floats.SubTo(diff, actual, predicted)
	for i, d := range diff {
		diff[i] = math.Abs(d)
	}
	return stat.Mean(diff, nil)
}

// RMSE root mean squared error
func RMSE(actual, predicted []float64) float64 {
	diff := make([]float64, len(actual))
	floats.SubTo(diff, actual, predicted)
	return math.Sqrt(floats.Dot(diff, diff) / float64(len(diff)))
}

// MAPE mean absolute percentage error in percent.
// NaN and ErrDivisionByZero when any actual is zero.
func MAPE(actual, predicted []float64) (float64, error) {
	var sum float64
	for i, a := range actual {
		if a == 0 {
			return math.NaN(), fmt.Errorf("%w: actual value at index %d is zero", contracts.ErrDivisionByZero, i)
		}
		sum += math.Abs((a - predicted[i]) / a)
	}
	return sum / float64(len(actual)) * 100, nil
}

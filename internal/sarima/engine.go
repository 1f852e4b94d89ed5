// Package sarima is the seasonal ARIMA estimation engine.
//
// Models are estimated by conditional sum of squares on the differenced
// series with a concentrated Gaussian likelihood. Parameters are optimized
// with Nelder-Mead under an iteration cap.
package sarima

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"

	"github.com/wonny/salescast/internal/contracts"
	"github.com/wonny/salescast/internal/timeseries"
)

// DefaultMaxIter 최적화 반복 상한
const DefaultMaxIter = 50

var (
	ErrTooFewObservations = errors.New("too few observations after differencing")
	ErrNonFinite          = errors.New("non-finite likelihood")
	ErrNonFiniteInput     = errors.New("series contains NaN or Inf")
)

// penalty replaces non-finite objective values during optimization.
const penalty = 1e300

// Engine fits SARIMA models.
// ⭐ SSOT: contracts.Estimator / ModelCodec / UnitRootTester 구현체
type Engine struct {
	log     zerolog.Logger
	maxIter int
}

// NewEngine creates an engine.
func NewEngine(log zerolog.Logger) *Engine {
	return &Engine{
		log:     log.With().Str("component", "sarima.engine").Logger(),
		maxIter: DefaultMaxIter,
	}
}

// Params 추정된 계수
type Params struct {
	AR  []float64 `json:"ar"`
	MA  []float64 `json:"ma"`
	SAR []float64 `json:"sar"`
	SMA []float64 `json:"sma"`
}

// unpack splits the optimizer vector [ar, ma, sar, sma], applying the
// stationarity/invertibility transforms when enforced.
func unpack(x []float64, o contracts.ModelOrder, opts contracts.FitOptions) Params {
	i := 0
	take := func(n int) []float64 {
		out := make([]float64, n)
		copy(out, x[i:i+n])
		i += n
		return out
	}
	p := Params{AR: take(o.P), MA: take(o.Q), SAR: take(o.SP), SMA: take(o.SQ)}
	if opts.EnforceStationarity {
		p.AR = constrainStationary(p.AR)
		p.SAR = constrainStationary(p.SAR)
	}
	if opts.EnforceInvertibility {
		p.MA = constrainInvertible(p.MA)
		p.SMA = constrainInvertible(p.SMA)
	}
	return p
}

// residuals computes one-step errors with zero pre-sample values.
func residuals(z, ar, ma []float64) []float64 {
	e := make([]float64, len(z))
	for t := range z {
		v := z[t]
		for k := 1; k < len(ar) && k <= t; k++ {
			v += ar[k] * z[t-k]
		}
		for k := 1; k < len(ma) && k <= t; k++ {
			v -= ma[k] * e[t-k]
		}
		e[t] = v
	}
	return e
}

func sumSquares(v []float64) float64 {
	var s float64
	for _, x := range v {
		s += x * x
	}
	return s
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// varianceFloor depends only on the observed series so that perfectly
// fitting orders stay comparable.
func varianceFloor(y []float64) float64 {
	return 1e-10 * math.Max(1, sumSquares(y)/float64(len(y)))
}

// Fit estimates order on series.
func (e *Engine) Fit(ctx context.Context, series *timeseries.Series, order contracts.ModelOrder, opts contracts.FitOptions) (contracts.FittedModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fail := func(err error) (contracts.FittedModel, error) {
		return nil, &contracts.FittingError{Order: order, Err: err}
	}
	if err := order.Validate(); err != nil {
		return fail(err)
	}

	y := series.Values()
	for _, v := range y {
		if !finite(v) {
			return fail(ErrNonFiniteInput)
		}
	}

	w := difference(y, order.D, order.SD, order.Period)
	k := order.NumARMAParams()
	if len(w) == 0 || len(w) <= k {
		return fail(fmt.Errorf("%w: %d left for %d parameters", ErrTooFewObservations, len(w), k))
	}

	var mean float64
	if order.HasIntercept() {
		mean = stat.Mean(w, nil)
	}
	z := make([]float64, len(w))
	for i, v := range w {
		z[i] = v - mean
	}

	maxIter := opts.MaxIter
	if maxIter <= 0 {
		maxIter = e.maxIter
	}

	objective := func(x []float64) float64 {
		p := unpack(x, order, opts)
		ar := arPolynomial(p.AR, p.SAR, order.Period)
		ma := maPolynomial(p.MA, p.SMA, order.Period)
		sse := sumSquares(residuals(z, ar, ma))
		if !finite(sse) {
			return penalty
		}
		return sse
	}

	x := make([]float64, k)
	if k > 0 {
		res, err := optimize.Minimize(
			optimize.Problem{Func: objective},
			x,
			&optimize.Settings{MajorIterations: maxIter},
			&optimize.NelderMead{},
		)
		if res == nil {
			return fail(fmt.Errorf("optimizer: %w", err))
		}
		if err != nil && res.Status != optimize.IterationLimit && res.Status != optimize.FunctionEvaluationLimit {
			return fail(fmt.Errorf("optimizer (%v): %w", res.Status, err))
		}
		x = res.X
	}

	params := unpack(x, order, opts)
	ar := arPolynomial(params.AR, params.SAR, order.Period)
	ma := maPolynomial(params.MA, params.SMA, order.Period)
	resid := residuals(z, ar, ma)
	sse := sumSquares(resid)
	if !finite(sse) || sse >= penalty {
		return fail(ErrNonFinite)
	}

	n := float64(len(z))
	sigma2 := math.Max(sse/n, varianceFloor(y))
	loglik := -n / 2 * (math.Log(2*math.Pi*sigma2) + 1)

	nParams := k + 1
	if order.HasIntercept() {
		nParams++
	}
	m := &Model{
		order:     order,
		series:    series,
		params:    params,
		mean:      mean,
		hasMean:   order.HasIntercept(),
		sigma2:    sigma2,
		loglik:    loglik,
		aic:       2*float64(nParams) - 2*loglik,
		bic:       float64(nParams)*math.Log(n) - 2*loglik,
		nobs:      len(z),
		residuals: resid,
	}

	e.log.Debug().
		Str("order", order.String()).
		Int("n", series.Len()).
		Float64("aic", m.aic).
		Float64("bic", m.bic).
		Msg("model fitted")

	return m, nil
}

package sarima

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/wonny/salescast/internal/contracts"
	"github.com/wonny/salescast/internal/timeseries"
)

// Model is a fitted SARIMA model. Immutable after Fit.
type Model struct {
	order     contracts.ModelOrder
	series    *timeseries.Series
	params    Params
	mean      float64
	hasMean   bool
	sigma2    float64
	loglik    float64
	aic       float64
	bic       float64
	nobs      int
	residuals []float64
}

var _ contracts.FittedModel = (*Model)(nil)

func (m *Model) Order() contracts.ModelOrder { return m.order }
func (m *Model) Series() *timeseries.Series  { return m.series }
func (m *Model) AIC() float64                { return m.aic }
func (m *Model) BIC() float64                { return m.bic }
func (m *Model) LogLikelihood() float64      { return m.loglik }
func (m *Model) Sigma2() float64             { return m.sigma2 }

// NObs is the number of observations left after differencing.
func (m *Model) NObs() int { return m.nobs }

// Mean returns the estimated intercept and whether the model has one.
func (m *Model) Mean() (float64, bool) { return m.mean, m.hasMean }

// Params returns a copy of the estimated coefficients.
func (m *Model) Params() Params {
	cp := func(v []float64) []float64 { return append([]float64(nil), v...) }
	return Params{AR: cp(m.params.AR), MA: cp(m.params.MA), SAR: cp(m.params.SAR), SMA: cp(m.params.SMA)}
}

// Residuals returns a copy of the in-sample one-step errors.
func (m *Model) Residuals() []float64 {
	return append([]float64(nil), m.residuals...)
}

// levelPolynomials returns the AR polynomial on levels (AR x differencing)
// and the MA polynomial.
func (m *Model) levelPolynomials() ([]float64, []float64, []float64) {
	o := m.order
	ar := arPolynomial(m.params.AR, m.params.SAR, o.Period)
	ma := maPolynomial(m.params.MA, m.params.SMA, o.Period)
	full := polyMul(ar, differencingPolynomial(o.D, o.SD, o.Period))
	return ar, full, ma
}

// Forecast produces horizon steps after the series end with (1-alpha)
// normal intervals.
func (m *Model) Forecast(horizon int, alpha float64) (*contracts.ForecastResult, error) {
	if horizon <= 0 {
		return nil, fmt.Errorf("%w: %d", contracts.ErrInvalidHorizon, horizon)
	}
	if alpha <= 0 || alpha >= 1 {
		return nil, fmt.Errorf("alpha must be in (0, 1), got %g", alpha)
	}

	ar, full, ma := m.levelPolynomials()
	y := m.series.Values()
	n := len(y)

	var c float64
	if m.hasMean {
		c = m.mean * polySum(ar)
	}

	offset := m.order.LostObservations()
	shock := func(t int) float64 {
		i := t - offset
		if i >= 0 && i < len(m.residuals) {
			return m.residuals[i]
		}
		return 0
	}

	hist := make([]float64, n+horizon)
	copy(hist, y)
	for h := 0; h < horizon; h++ {
		t := n + h
		v := c
		for k := 1; k < len(full) && k <= t; k++ {
			v -= full[k] * hist[t-k]
		}
		for k := 1; k < len(ma); k++ {
			v += ma[k] * shock(t-k)
		}
		hist[t] = v
	}

	psi := psiWeights(full, ma, horizon)
	z := distuv.UnitNormal.Quantile(1 - alpha/2)
	dates := m.series.NextPeriods(horizon)

	result := &contracts.ForecastResult{
		Order:  m.order,
		Alpha:  alpha,
		Points: make([]contracts.ForecastPoint, horizon),
	}
	var cum float64
	for h := 0; h < horizon; h++ {
		cum += psi[h] * psi[h]
		point := hist[n+h]
		half := z * math.Sqrt(m.sigma2*cum)
		if !finite(point) || !finite(half) {
			return nil, fmt.Errorf("%w: forecast step %d diverged", ErrNonFinite, h+1)
		}
		result.Points[h] = contracts.ForecastPoint{
			Date:     dates[h],
			Forecast: point,
			Lower:    point - half,
			Upper:    point + half,
		}
	}
	return result, nil
}

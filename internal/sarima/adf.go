package sarima

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/wonny/salescast/internal/contracts"
)

var (
	ErrConstantSeries = errors.New("series is constant")
	ErrSeriesTooShort = errors.New("series too short for unit-root test")
)

// ADF runs the augmented Dickey-Fuller test with a constant term.
// The lag is chosen by AIC over 0..maxlag on a common sample, then the
// regression is refit on the longest sample available for that lag.
func (e *Engine) ADF(values []float64) (*contracts.StationarityResult, error) {
	return ADF(values)
}

// ADF is the engine-free form of Engine.ADF.
func ADF(values []float64) (*contracts.StationarityResult, error) {
	n := len(values)
	if n < 6 {
		return nil, fmt.Errorf("%w: %d observations", ErrSeriesTooShort, n)
	}
	if floats.Max(values) == floats.Min(values) {
		return nil, ErrConstantSeries
	}

	maxlag := int(math.Ceil(12 * math.Pow(float64(n)/100, 0.25)))
	if limit := n/2 - 2; maxlag > limit {
		maxlag = limit
	}
	if maxlag < 0 {
		return nil, fmt.Errorf("%w: %d observations", ErrSeriesTooShort, n)
	}

	dy := Diff(values)

	bestLag, bestAIC := -1, math.Inf(1)
	for lag := 0; lag <= maxlag; lag++ {
		fit, err := adfRegression(values, dy, lag, maxlag)
		if err != nil {
			continue
		}
		if fit.aic < bestAIC {
			bestLag, bestAIC = lag, fit.aic
		}
	}
	if bestLag < 0 {
		return nil, errors.New("adf: no lag produced a solvable regression")
	}

	fit, err := adfRegression(values, dy, bestLag, bestLag)
	if err != nil {
		return nil, fmt.Errorf("adf: %w", err)
	}

	return &contracts.StationarityResult{
		Statistic:      fit.tstat,
		PValue:         mackinnonP(fit.tstat),
		CriticalValues: mackinnonCritical(fit.nobs),
		UsedLag:        bestLag,
		NObs:           fit.nobs,
	}, nil
}

type adfFit struct {
	tstat float64
	aic   float64
	nobs  int
}

// adfRegression regresses dy[t] on [y[t], dy[t-1..t-lag], 1] for t >= start.
func adfRegression(y, dy []float64, lag, start int) (*adfFit, error) {
	nobs := len(dy) - start
	k := lag + 2
	if nobs <= k {
		return nil, ErrSeriesTooShort
	}

	X := mat.NewDense(nobs, k, nil)
	resp := mat.NewVecDense(nobs, nil)
	for r := 0; r < nobs; r++ {
		t := start + r
		resp.SetVec(r, dy[t])
		X.Set(r, 0, y[t])
		for j := 1; j <= lag; j++ {
			X.Set(r, j, dy[t-j])
		}
		X.Set(r, k-1, 1)
	}

	var xtx mat.Dense
	xtx.Mul(X.T(), X)
	var inv mat.Dense
	if err := inv.Inverse(&xtx); err != nil {
		return nil, fmt.Errorf("singular design: %w", err)
	}

	var xty, beta, fitted mat.VecDense
	xty.MulVec(X.T(), resp)
	beta.MulVec(&inv, &xty)
	fitted.MulVec(X, &beta)

	var ssr float64
	for r := 0; r < nobs; r++ {
		d := resp.AtVec(r) - fitted.AtVec(r)
		ssr += d * d
	}
	if nobs-k <= 0 || ssr <= 0 {
		return nil, errors.New("degenerate regression")
	}

	s2 := ssr / float64(nobs-k)
	se := math.Sqrt(s2 * inv.At(0, 0))
	return &adfFit{
		tstat: beta.AtVec(0) / se,
		aic:   float64(nobs)*math.Log(ssr/float64(nobs)) + 2*float64(k),
		nobs:  nobs,
	}, nil
}

// MacKinnon (1994, 2010) surface for the constant-only case.
var (
	tauMax       = 2.74
	tauMin       = -18.83
	tauStar      = -1.61
	tauSmallP    = []float64{2.1659, 1.4412, 0.038269}
	tauLargeP    = []float64{1.7339, 0.93202, -0.12745, -0.010368}
	criticalBeta = map[string][]float64{
		"1%":  {-3.43035, -6.5393, -16.786, -79.433},
		"5%":  {-2.86154, -2.8903, -4.234, -40.040},
		"10%": {-2.56677, -1.5384, -2.809, 0},
	}
)

func polyval(coef []float64, x float64) float64 {
	var v float64
	for i := len(coef) - 1; i >= 0; i-- {
		v = v*x + coef[i]
	}
	return v
}

func mackinnonP(stat float64) float64 {
	switch {
	case stat > tauMax:
		return 1
	case stat < tauMin:
		return 0
	case stat <= tauStar:
		return distuv.UnitNormal.CDF(polyval(tauSmallP, stat))
	default:
		return distuv.UnitNormal.CDF(polyval(tauLargeP, stat))
	}
}

func mackinnonCritical(nobs int) map[string]float64 {
	out := make(map[string]float64, len(criticalBeta))
	inv := 1 / float64(nobs)
	for level, b := range criticalBeta {
		out[level] = polyval(b, inv)
	}
	return out
}

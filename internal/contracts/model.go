package contracts

import (
	"context"

	"github.com/wonny/salescast/internal/timeseries"
)

// FitOptions 추정 엔진 옵션
type FitOptions struct {
	EnforceStationarity  bool
	EnforceInvertibility bool
	MaxIter              int // 0 = engine default
}

// FittedModel is a model bound to one series and one order.
type FittedModel interface {
	Order() ModelOrder
	Series() *timeseries.Series
	AIC() float64
	BIC() float64
	LogLikelihood() float64
	Sigma2() float64
	// Forecast returns horizon steps after the series end with
	// (1-alpha) intervals.
	Forecast(horizon int, alpha float64) (*ForecastResult, error)
}

// Estimator fits seasonal ARIMA models.
// ⭐ SSOT: 추정 엔진 경계 인터페이스
type Estimator interface {
	Fit(ctx context.Context, series *timeseries.Series, order ModelOrder, opts FitOptions) (FittedModel, error)
}

// ModelCodec serializes fitted models to an opaque blob.
type ModelCodec interface {
	Marshal(m FittedModel) ([]byte, error)
	Unmarshal(data []byte) (FittedModel, error)
}

// UnitRootTester runs an augmented Dickey-Fuller test.
type UnitRootTester interface {
	ADF(values []float64) (*StationarityResult, error)
}

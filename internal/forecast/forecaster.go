// Package forecast produces interval forecasts from a fitted model after
// checking it against the stored metadata.
package forecast

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/wonny/salescast/internal/contracts"
	"github.com/wonny/salescast/internal/metrics"
)

// DefaultAlpha 95% prediction intervals
const DefaultAlpha = 0.05

// MetadataSource yields the metadata stored alongside the model.
// modelstore.Store implements it.
type MetadataSource interface {
	Metadata(ctx context.Context) (*contracts.ModelMetadata, error)
}

// Forecaster 예측 생성기
type Forecaster struct {
	source MetadataSource // nil = no consistency check
	alpha  float64
	log    zerolog.Logger
}

// NewForecaster creates a forecaster. source may be nil.
func NewForecaster(source MetadataSource, log zerolog.Logger) *Forecaster {
	return &Forecaster{
		source: source,
		alpha:  DefaultAlpha,
		log:    log.With().Str("component", "forecast.forecaster").Logger(),
	}
}

// WithAlpha sets the interval significance level; values outside (0,1) are ignored.
func (f *Forecaster) WithAlpha(alpha float64) *Forecaster {
	if alpha > 0 && alpha < 1 {
		f.alpha = alpha
	}
	return f
}

// Forecast returns horizon monthly steps after the model's last observation.
// With a metadata source, a model whose series end or length disagrees with
// the stored metadata (or has none) yields *contracts.StaleModelError.
func (f *Forecaster) Forecast(ctx context.Context, model contracts.FittedModel, horizon int) (*contracts.ForecastResult, error) {
	result, err := f.forecast(ctx, model, horizon)
	metrics.ForecastsTotal.WithLabelValues(metrics.Outcome(err)).Inc()
	return result, err
}

func (f *Forecaster) forecast(ctx context.Context, model contracts.FittedModel, horizon int) (*contracts.ForecastResult, error) {
	if horizon <= 0 {
		return nil, fmt.Errorf("%w: %d (must be > 0)", contracts.ErrInvalidHorizon, horizon)
	}
	if err := f.checkConsistency(ctx, model); err != nil {
		f.log.Warn().Err(err).Msg("model does not match stored metadata")
		return nil, err
	}

	result, err := model.Forecast(horizon, f.alpha)
	if err != nil {
		return nil, fmt.Errorf("forecast %s: %w", model.Order(), err)
	}

	f.log.Info().
		Str("order", model.Order().String()).
		Int("horizon", horizon).
		Str("first", result.Points[0].Date.Format(contracts.DateLayout)).
		Str("last", result.Points[len(result.Points)-1].Date.Format(contracts.DateLayout)).
		Msg("forecast generated")
	return result, nil
}

func (f *Forecaster) checkConsistency(ctx context.Context, model contracts.FittedModel) error {
	if f.source == nil {
		return nil
	}
	meta, err := f.source.Metadata(ctx)
	if errors.Is(err, contracts.ErrModelNotFound) || (err == nil && meta == nil) {
		return &contracts.StaleModelError{
			Field: "metadata",
			Model: model.Series().End().Format(contracts.DateLayout),
		}
	}
	if err != nil {
		return fmt.Errorf("read metadata: %w", err)
	}
	return meta.CheckSeries(model.Series())
}

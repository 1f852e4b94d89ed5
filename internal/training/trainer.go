// Package training fits production models and measures holdout accuracy.
package training

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/wonny/salescast/internal/contracts"
	"github.com/wonny/salescast/internal/metrics"
	"github.com/wonny/salescast/internal/timeseries"
)

// MinTrainLength two full seasonal cycles
const MinTrainLength = 24

// Trainer fits the configured order on the full series.
type Trainer struct {
	estimator contracts.Estimator
	opts      contracts.FitOptions
	minLength int
	log       zerolog.Logger
}

// TrainerOption configures a Trainer
type TrainerOption func(*Trainer)

// WithFitOptions overrides the estimator options (enforcement off by default).
func WithFitOptions(opts contracts.FitOptions) TrainerOption {
	return func(t *Trainer) { t.opts = opts }
}

// WithMinLength overrides MinTrainLength.
func WithMinLength(n int) TrainerOption {
	return func(t *Trainer) { t.minLength = n }
}

// NewTrainer creates a new trainer
func NewTrainer(estimator contracts.Estimator, log zerolog.Logger, options ...TrainerOption) *Trainer {
	t := &Trainer{
		estimator: estimator,
		minLength: MinTrainLength,
		log:       log.With().Str("component", "training.trainer").Logger(),
	}
	for _, o := range options {
		o(t)
	}
	return t
}

// Train fits order on series and derives its metadata.
// A fit failure is returned as *contracts.FittingError.
func (t *Trainer) Train(ctx context.Context, series *timeseries.Series, order contracts.ModelOrder) (contracts.FittedModel, *contracts.ModelMetadata, error) {
	if series.Len() < t.minLength {
		metrics.TrainingsTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
		return nil, nil, fmt.Errorf("%w: %d observations, need at least %d",
			contracts.ErrInsufficientData, series.Len(), t.minLength)
	}
	if err := order.Validate(); err != nil {
		return nil, nil, err
	}

	t.log.Info().
		Str("order", order.String()).
		Int("n_observations", series.Len()).
		Str("start", series.Start().Format(contracts.DateLayout)).
		Str("end", series.End().Format(contracts.DateLayout)).
		Msg("training model")
	started := time.Now()

	model, err := t.estimator.Fit(ctx, series, order, t.opts)
	metrics.TrainingsTotal.WithLabelValues(metrics.Outcome(err)).Inc()
	if err != nil {
		var fe *contracts.FittingError
		if !errors.As(err, &fe) {
			err = &contracts.FittingError{Order: order, Err: err}
		}
		t.log.Error().Err(err).Str("order", order.String()).Msg("training failed")
		return nil, nil, err
	}

	meta := contracts.NewModelMetadata(model)
	t.log.Info().
		Float64("aic", model.AIC()).
		Float64("bic", model.BIC()).
		Dur("elapsed", time.Since(started)).
		Msg("model trained")

	return model, meta, nil
}

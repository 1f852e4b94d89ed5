package lifecycle

import (
	"github.com/rs/zerolog"

	"github.com/wonny/salescast/internal/contracts"
	"github.com/wonny/salescast/internal/forecast"
	"github.com/wonny/salescast/internal/modelstore"
	"github.com/wonny/salescast/internal/s0_data"
	"github.com/wonny/salescast/internal/s0_data/quality"
	"github.com/wonny/salescast/internal/sarima"
	"github.com/wonny/salescast/internal/stationarity"
	"github.com/wonny/salescast/internal/training"
	"github.com/wonny/salescast/pkg/config"
)

// OrderFromConfig builds the production order from the forecast section.
func OrderFromConfig(fc config.ForecastConfig) contracts.ModelOrder {
	o, so := fc.Order, fc.SeasonalOrder
	return contracts.ModelOrder{
		P: o[0], D: o[1], Q: o[2],
		SP: so[0], SD: so[1], SQ: so[2], Period: so[3],
	}
}

// FitOptionsFromConfig enforcement flags and iteration cap
func FitOptionsFromConfig(fc config.ForecastConfig) contracts.FitOptions {
	return contracts.FitOptions{
		EnforceStationarity:  fc.EnforceStationarity,
		EnforceInvertibility: fc.EnforceInvertibility,
		MaxIter:              fc.MaxIter,
	}
}

// New wires the standard components around the SARIMA engine.
func New(engine *sarima.Engine, source s0_data.RecordSource, store *modelstore.Store, fc config.ForecastConfig, log zerolog.Logger) *Manager {
	fit := FitOptionsFromConfig(fc)
	minLength := fc.MinTrainLength
	if minLength <= 0 {
		minLength = training.MinTrainLength
	}

	deps := Deps{
		Source:     source,
		Aggregator: s0_data.NewAggregator(log),
		Gate:       quality.NewQualityGate(quality.DefaultConfig(), log),
		Analyzer:   stationarity.NewAnalyzer(engine, log),
		Trainer:    training.NewTrainer(engine, log, training.WithFitOptions(fit), training.WithMinLength(minLength)),
		Evaluator:  training.NewEvaluator(engine, fit, log),
		Forecaster: forecast.NewForecaster(store, log).WithAlpha(fc.Alpha),
		Store:      store,
	}
	return NewManager(deps, Settings{
		Order:    OrderFromConfig(fc),
		TestSize: fc.TestSize,
		Horizon:  fc.Horizon,
	}, log)
}

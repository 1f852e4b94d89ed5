// Package lifecycle orchestrates the model lifecycle: load data, reuse or
// retrain the stored model, evaluate it and forecast.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/wonny/salescast/internal/contracts"
	"github.com/wonny/salescast/internal/forecast"
	"github.com/wonny/salescast/internal/modelstore"
	"github.com/wonny/salescast/internal/report"
	"github.com/wonny/salescast/internal/s0_data"
	"github.com/wonny/salescast/internal/s0_data/quality"
	"github.com/wonny/salescast/internal/stationarity"
	"github.com/wonny/salescast/internal/timeseries"
	"github.com/wonny/salescast/internal/training"
)

// Stage names recorded in RunResult.CompletedStages
const (
	StageData         = "data"
	StageStationarity = "stationarity"
	StageModel        = "model"
	StageEvaluate     = "evaluate"
	StageForecast     = "forecast"
	StageOutput       = "output"
)

// Deps components used by the manager
type Deps struct {
	Source     s0_data.RecordSource
	Aggregator *s0_data.Aggregator
	Gate       *quality.QualityGate // optional
	Analyzer   *stationarity.Analyzer
	Trainer    *training.Trainer
	Evaluator  *training.Evaluator
	Forecaster *forecast.Forecaster
	Store      *modelstore.Store
}

// Settings 운영 모델 설정
type Settings struct {
	Order    contracts.ModelOrder
	TestSize int
	Horizon  int
}

// RunConfig holds configuration for a pipeline run
type RunConfig struct {
	ForceRetrain bool
	SkipEvaluate bool
	Horizon      int    // 0 = Settings.Horizon
	OutputPath   string // forecast CSV; empty = not written
	WithBounds   bool
}

// RunResult holds the results of a complete pipeline run
type RunResult struct {
	RunID           string                       `json:"run_id"`
	Success         bool                         `json:"success"`
	Error           string                       `json:"error,omitempty"`
	CompletedStages []string                     `json:"completed_stages"`
	Observations    int                          `json:"observations"`
	SeriesCheck     *quality.SeriesCheck         `json:"series_check,omitempty"`
	Stationarity    *stationarity.Report         `json:"stationarity,omitempty"`
	ModelState      modelstore.StateReport       `json:"model_state"`
	Trained         bool                         `json:"trained"`
	Metadata        *contracts.ModelMetadata     `json:"metadata,omitempty"`
	Evaluation      *contracts.EvaluationMetrics `json:"evaluation,omitempty"`
	Forecast        *contracts.ForecastResult    `json:"forecast,omitempty"`
	Duration        time.Duration                `json:"duration"`
}

// Manager coordinates the lifecycle stages
// ⭐ SSOT: 재학습 여부 판단은 여기서만
type Manager struct {
	deps     Deps
	settings Settings
	log      zerolog.Logger
}

// NewManager creates a new manager
func NewManager(deps Deps, settings Settings, log zerolog.Logger) *Manager {
	return &Manager{
		deps:     deps,
		settings: settings,
		log:      log.With().Str("component", "lifecycle.manager").Logger(),
	}
}

// Store exposes the model store.
func (m *Manager) Store() *modelstore.Store {
	return m.deps.Store
}

// LoadSeries reads records from the source and aggregates them monthly.
// A failed series check is logged, not returned.
func (m *Manager) LoadSeries(ctx context.Context) (*timeseries.Series, *quality.SeriesCheck, error) {
	records, err := m.deps.Source.Records(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load records from %s: %w", m.deps.Source.Name(), err)
	}
	series, err := m.deps.Aggregator.Aggregate(records)
	if err != nil {
		return nil, nil, err
	}

	var check *quality.SeriesCheck
	if m.deps.Gate != nil {
		check = m.deps.Gate.CheckSeries(series)
		if !check.Passed {
			m.log.Warn().Strs("reasons", check.Reasons).Msg("series quality check failed")
		}
	}
	return series, check, nil
}

// EnsureModel returns the stored model when it is valid for series and
// trains and saves a new one otherwise.
func (m *Manager) EnsureModel(ctx context.Context, series *timeseries.Series) (contracts.FittedModel, *contracts.ModelMetadata, bool, error) {
	state := m.deps.Store.State(ctx, series)
	if state.State == modelstore.StatePresentValid {
		model, meta, err := m.deps.Store.Load(ctx, true)
		if err == nil && model.Order() == m.settings.Order {
			m.log.Info().Str("location", m.deps.Store.Location()).Msg("reusing stored model")
			return model, meta, false, nil
		}
		if err != nil {
			m.log.Warn().Err(err).Msg("stored model unusable, retraining")
		} else {
			m.log.Info().
				Str("stored", model.Order().String()).
				Str("configured", m.settings.Order.String()).
				Msg("configured order changed, retraining")
		}
	} else {
		m.log.Info().Str("state", string(state.State)).Str("reason", state.Reason).Msg("model needs training")
	}

	model, meta, err := m.Retrain(ctx, series)
	return model, meta, true, err
}

// Retrain fits the configured order on series and replaces the stored model.
func (m *Manager) Retrain(ctx context.Context, series *timeseries.Series) (contracts.FittedModel, *contracts.ModelMetadata, error) {
	model, meta, err := m.deps.Trainer.Train(ctx, series, m.settings.Order)
	if err != nil {
		return nil, nil, err
	}
	saved, err := m.deps.Store.Save(ctx, model, meta)
	if err != nil {
		return nil, nil, fmt.Errorf("save model: %w", err)
	}
	return model, saved, nil
}

// Evaluate scores the configured order on the last TestSize months.
func (m *Manager) Evaluate(ctx context.Context, series *timeseries.Series) (*contracts.EvaluationMetrics, error) {
	return m.deps.Evaluator.Evaluate(ctx, series, m.settings.Order, m.settings.TestSize)
}

// Forecast loads the stored model and forecasts horizon months
// (0 = configured horizon).
func (m *Manager) Forecast(ctx context.Context, horizon int) (*contracts.ForecastResult, error) {
	if horizon == 0 {
		horizon = m.settings.Horizon
	}
	model, _, err := m.deps.Store.Load(ctx, true)
	if err != nil {
		return nil, err
	}
	return m.deps.Forecaster.Forecast(ctx, model, horizon)
}

// Run executes data → stationarity → model → evaluate → forecast → output.
func (m *Manager) Run(ctx context.Context, cfg RunConfig) (*RunResult, error) {
	startTime := time.Now()
	result := &RunResult{
		RunID:           uuid.NewString(),
		CompletedStages: make([]string, 0, 6),
	}
	log := m.log.With().Str("run_id", result.RunID).Logger()
	log.Info().
		Bool("force_retrain", cfg.ForceRetrain).
		Str("order", m.settings.Order.String()).
		Msg("starting pipeline run")

	fail := func(stage string, err error) (*RunResult, error) {
		err = fmt.Errorf("%s: %w", stage, err)
		result.Error = err.Error()
		result.Duration = time.Since(startTime)
		log.Error().Err(err).Strs("completed", result.CompletedStages).Msg("pipeline run failed")
		return result, err
	}
	done := func(stage string) {
		result.CompletedStages = append(result.CompletedStages, stage)
	}

	series, check, err := m.LoadSeries(ctx)
	if err != nil {
		return fail(StageData, err)
	}
	result.Observations = series.Len()
	result.SeriesCheck = check
	done(StageData)

	if rep, err := m.deps.Analyzer.Analyze(series); err != nil {
		log.Warn().Err(err).Msg("stationarity analysis skipped")
	} else {
		result.Stationarity = rep
		if rep.RecommendedD != m.settings.Order.D {
			log.Warn().
				Int("recommended_d", rep.RecommendedD).
				Int("configured_d", m.settings.Order.D).
				Msg("configured differencing differs from ADF recommendation")
		}
		done(StageStationarity)
	}

	result.ModelState = m.deps.Store.State(ctx, series)
	if cfg.ForceRetrain {
		_, result.Metadata, err = m.Retrain(ctx, series)
		result.Trained = true
	} else {
		_, result.Metadata, result.Trained, err = m.EnsureModel(ctx, series)
	}
	if err != nil {
		return fail(StageModel, err)
	}
	done(StageModel)

	if !cfg.SkipEvaluate {
		metrics, err := m.Evaluate(ctx, series)
		switch {
		case errors.Is(err, contracts.ErrDivisionByZero):
			log.Warn().Err(err).Msg("MAPE undefined, keeping MAE and RMSE")
		case err != nil:
			return fail(StageEvaluate, err)
		}
		result.Evaluation = metrics
		done(StageEvaluate)
	}

	fc, err := m.Forecast(ctx, cfg.Horizon)
	if err != nil {
		return fail(StageForecast, err)
	}
	result.Forecast = fc
	done(StageForecast)

	if cfg.OutputPath != "" {
		err := report.WriteFile(cfg.OutputPath, func(w io.Writer) error {
			return report.WriteForecastCSV(w, fc, cfg.WithBounds)
		})
		if err != nil {
			return fail(StageOutput, err)
		}
		done(StageOutput)
	}

	result.Success = true
	result.Duration = time.Since(startTime)
	log.Info().
		Dur("duration", result.Duration).
		Bool("trained", result.Trained).
		Int("stages", len(result.CompletedStages)).
		Msg("pipeline run completed")
	return result, nil
}

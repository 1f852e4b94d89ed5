// Package backtest scores a model order at several forecast origins
// (rolling-origin evaluation).
package backtest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/wonny/salescast/internal/contracts"
	"github.com/wonny/salescast/internal/timeseries"
)

// Evaluator scores one holdout split (training.Evaluator).
type Evaluator interface {
	Evaluate(ctx context.Context, series *timeseries.Series, order contracts.ModelOrder, holdout int) (*contracts.EvaluationMetrics, error)
}

// Config holds backtest configuration
type Config struct {
	Origins int // number of forecast origins
	Horizon int // months scored after each origin
	Step    int // months between origins (default Horizon)
	Workers int // concurrent folds (default 1)
}

// Fold is one origin's score
type Fold struct {
	Origin    time.Time `json:"origin"` // last training month
	TrainSize int       `json:"train_size"`
	MAE       float64   `json:"mae"`
	RMSE      float64   `json:"rmse"`
	MAPE      float64   `json:"mape"` // NaN when a test actual is zero
}

// Result holds backtest results, folds ordered oldest origin first
type Result struct {
	Order    contracts.ModelOrder `json:"order"`
	Horizon  int                  `json:"horizon"`
	Folds    []Fold               `json:"folds"`
	MeanMAE  float64              `json:"mean_mae"`
	MeanRMSE float64              `json:"mean_rmse"`
	MeanMAPE float64              `json:"mean_mape"` // NaN if any fold lacks MAPE
	Duration time.Duration        `json:"duration"`
}

// Engine runs backtesting simulations
// ⭐ SSOT: 백테스팅 실행은 여기서만
type Engine struct {
	evaluator Evaluator
	log       zerolog.Logger
}

// NewEngine creates a new backtest engine
func NewEngine(evaluator Evaluator, log zerolog.Logger) *Engine {
	return &Engine{
		evaluator: evaluator,
		log:       log.With().Str("component", "backtest.engine").Logger(),
	}
}

// Run evaluates order at cfg.Origins origins. The latest origin leaves the
// final Horizon months as its test window; each earlier origin moves back
// Step months. Each fold must keep at least one training observation.
func (e *Engine) Run(ctx context.Context, series *timeseries.Series, order contracts.ModelOrder, cfg Config) (*Result, error) {
	if cfg.Origins <= 0 || cfg.Horizon <= 0 {
		return nil, fmt.Errorf("%w: origins=%d horizon=%d", contracts.ErrInvalidHorizon, cfg.Origins, cfg.Horizon)
	}
	if cfg.Step <= 0 {
		cfg.Step = cfg.Horizon
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}

	n := series.Len()
	oldest := n - (cfg.Origins-1)*cfg.Step
	if oldest-cfg.Horizon <= 0 {
		return nil, fmt.Errorf("%w: %d origins of %d months (step %d) need more than %d observations",
			contracts.ErrInsufficientData, cfg.Origins, cfg.Horizon, cfg.Step, n)
	}

	startTime := time.Now()
	e.log.Info().
		Str("order", order.String()).
		Int("origins", cfg.Origins).
		Int("horizon", cfg.Horizon).
		Int("step", cfg.Step).
		Msg("starting backtest")

	folds := make([]Fold, cfg.Origins)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i := range folds {
		end := oldest + i*cfg.Step
		g.Go(func() error {
			window := series.Slice(0, end)
			m, err := e.evaluator.Evaluate(gctx, window, order, cfg.Horizon)
			if err != nil && !errors.Is(err, contracts.ErrDivisionByZero) {
				return fmt.Errorf("origin %d: %w", i, err)
			}
			origin, _ := window.At(m.TrainSize - 1)
			folds[i] = Fold{
				Origin:    origin,
				TrainSize: m.TrainSize,
				MAE:       m.MAE,
				RMSE:      m.RMSE,
				MAPE:      m.MAPE,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{
		Order:    order,
		Horizon:  cfg.Horizon,
		Folds:    folds,
		Duration: time.Since(startTime),
	}
	res.summarize()

	e.log.Info().
		Float64("mean_mae", res.MeanMAE).
		Float64("mean_rmse", res.MeanRMSE).
		Float64("mean_mape", res.MeanMAPE).
		Dur("duration", res.Duration).
		Msg("backtest completed")
	return res, nil
}

func (r *Result) summarize() {
	mae := make([]float64, len(r.Folds))
	rmse := make([]float64, len(r.Folds))
	mape := make([]float64, len(r.Folds))
	for i, f := range r.Folds {
		mae[i], rmse[i], mape[i] = f.MAE, f.RMSE, f.MAPE
	}
	r.MeanMAE = stat.Mean(mae, nil)
	r.MeanRMSE = stat.Mean(rmse, nil)
	// NaN propagates through the mean
	r.MeanMAPE = stat.Mean(mape, nil)
}

// MAPEDefined reports whether every fold produced a MAPE.
func (r *Result) MAPEDefined() bool {
	return !math.IsNaN(r.MeanMAPE)
}

func nullable(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

// MarshalJSON writes an undefined MAPE as null.
func (f Fold) MarshalJSON() ([]byte, error) {
	type plain Fold
	return json.Marshal(struct {
		plain
		MAPE *float64 `json:"mape"`
	}{plain: plain(f), MAPE: nullable(f.MAPE)})
}

// MarshalJSON writes an undefined mean MAPE as null.
func (r Result) MarshalJSON() ([]byte, error) {
	type plain Result
	return json.Marshal(struct {
		plain
		MeanMAPE *float64 `json:"mean_mape"`
	}{plain: plain(r), MeanMAPE: nullable(r.MeanMAPE)})
}

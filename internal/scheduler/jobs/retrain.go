package jobs

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/wonny/salescast/internal/contracts"
	"github.com/wonny/salescast/internal/s0_data/quality"
	"github.com/wonny/salescast/internal/timeseries"
	"github.com/wonny/salescast/pkg/redis"
)

// Lifecycle is the part of lifecycle.Manager the jobs need.
type Lifecycle interface {
	LoadSeries(ctx context.Context) (*timeseries.Series, *quality.SeriesCheck, error)
	Retrain(ctx context.Context, series *timeseries.Series) (contracts.FittedModel, *contracts.ModelMetadata, error)
}

// RetrainJob refits the production model on the latest data
// ⭐ SSOT: 정기 재학습은 이 Job에서만
type RetrainJob struct {
	lifecycle Lifecycle
	cache     *redis.Cache // optional, cleared after a successful retrain
	schedule  string
	log       zerolog.Logger
}

// NewRetrainJob creates a new retrain job
func NewRetrainJob(lc Lifecycle, cache *redis.Cache, schedule string, log zerolog.Logger) *RetrainJob {
	return &RetrainJob{
		lifecycle: lc,
		cache:     cache,
		schedule:  schedule,
		log:       log.With().Str("component", "jobs.retrain").Logger(),
	}
}

// Name returns the job name
func (j *RetrainJob) Name() string {
	return "retrain"
}

// Schedule returns the cron schedule (default 03:00 on the 1st of the month)
func (j *RetrainJob) Schedule() string {
	return j.schedule
}

// Run executes the retraining
func (j *RetrainJob) Run(ctx context.Context) error {
	j.log.Info().Msg("starting scheduled retrain")

	series, check, err := j.lifecycle.LoadSeries(ctx)
	if err != nil {
		return fmt.Errorf("load series: %w", err)
	}
	if check != nil && !check.Passed {
		j.log.Warn().Strs("reasons", check.Reasons).Msg("training on a series that failed the quality check")
	}

	model, meta, err := j.lifecycle.Retrain(ctx, series)
	if err != nil {
		return fmt.Errorf("retrain: %w", err)
	}

	if j.cache != nil {
		if err := j.cache.InvalidatePattern(ctx, "forecast:*"); err != nil {
			j.log.Warn().Err(err).Msg("forecast cache invalidation failed")
		}
	}

	j.log.Info().
		Str("order", model.Order().String()).
		Int("observations", meta.NObservations).
		Float64("aic", meta.AIC).
		Str("saved_at", meta.SavedAt).
		Msg("scheduled retrain completed")
	return nil
}

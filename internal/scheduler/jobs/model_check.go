package jobs

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/wonny/salescast/internal/metrics"
	"github.com/wonny/salescast/internal/modelstore"
)

// ModelCheckJob exports the model slot state against the current data
type ModelCheckJob struct {
	lifecycle Lifecycle
	store     *modelstore.Store
	log       zerolog.Logger
}

// NewModelCheckJob creates a new model check job
func NewModelCheckJob(lc Lifecycle, store *modelstore.Store, log zerolog.Logger) *ModelCheckJob {
	return &ModelCheckJob{
		lifecycle: lc,
		store:     store,
		log:       log.With().Str("component", "jobs.model_check").Logger(),
	}
}

// Name returns the job name
func (j *ModelCheckJob) Name() string {
	return "model_check"
}

// Schedule returns the cron schedule (hourly)
func (j *ModelCheckJob) Schedule() string {
	return "0 0 * * * *"
}

// Run records the current state in the modelstore_state gauge.
func (j *ModelCheckJob) Run(ctx context.Context) error {
	series, _, err := j.lifecycle.LoadSeries(ctx)
	if err != nil {
		return err
	}

	st := j.store.State(ctx, series)
	metrics.SetModelState(string(st.State))

	if st.State != modelstore.StatePresentValid {
		j.log.Warn().Str("state", string(st.State)).Str("reason", st.Reason).Msg("model is not current")
	} else {
		j.log.Debug().Msg("model is current")
	}
	return nil
}

package handlers

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/wonny/salescast/internal/metrics"
	"github.com/wonny/salescast/internal/modelstore"
	"github.com/wonny/salescast/internal/s0_data/quality"
	"github.com/wonny/salescast/internal/timeseries"
)

// SeriesLoader loads the current monthly series (lifecycle.Manager).
type SeriesLoader interface {
	LoadSeries(ctx context.Context) (*timeseries.Series, *quality.SeriesCheck, error)
}

// ModelHandler handles model store endpoints
// ⭐ SSOT: Model API 핸들러는 이 구조체에서만
type ModelHandler struct {
	store  *modelstore.Store
	loader SeriesLoader // optional
	log    zerolog.Logger
}

// NewModelHandler creates a new model handler. loader may be nil, in which
// case state is reported without comparing against current data.
func NewModelHandler(store *modelstore.Store, loader SeriesLoader, log zerolog.Logger) *ModelHandler {
	return &ModelHandler{
		store:  store,
		loader: loader,
		log:    log.With().Str("component", "api.model").Logger(),
	}
}

// GetInfo returns the store summary
// GET /api/model
func (h *ModelHandler) GetInfo(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.store.Info(r.Context()))
}

// GetState returns the slot state against the current data
// GET /api/model/state
func (h *ModelHandler) GetState(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var current *timeseries.Series
	if h.loader != nil {
		series, _, err := h.loader.LoadSeries(ctx)
		if err != nil {
			h.log.Error().Err(err).Msg("failed to load current series")
			respondError(w, http.StatusServiceUnavailable, "failed to load current data")
			return
		}
		current = series
	}

	st := h.store.State(ctx, current)
	metrics.SetModelState(string(st.State))
	respondJSON(w, http.StatusOK, st)
}

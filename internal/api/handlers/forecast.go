package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/wonny/salescast/internal/contracts"
	"github.com/wonny/salescast/internal/modelstore"
	"github.com/wonny/salescast/pkg/redis"
)

// MaxHorizon upper bound of ?horizon
const MaxHorizon = 120

// Forecaster forecasts from the stored model (lifecycle.Manager).
type Forecaster interface {
	Forecast(ctx context.Context, horizon int) (*contracts.ForecastResult, error)
}

// ForecastHandler handles forecast endpoints
type ForecastHandler struct {
	forecaster     Forecaster
	store          *modelstore.Store
	cache          *redis.Cache // optional
	defaultHorizon int
	log            zerolog.Logger
}

// NewForecastHandler creates a new forecast handler
func NewForecastHandler(f Forecaster, store *modelstore.Store, cache *redis.Cache, defaultHorizon int, log zerolog.Logger) *ForecastHandler {
	return &ForecastHandler{
		forecaster:     f,
		store:          store,
		cache:          cache,
		defaultHorizon: defaultHorizon,
		log:            log.With().Str("component", "api.forecast").Logger(),
	}
}

// GetForecast forecasts from the stored model
// GET /api/forecast?horizon=12
func (h *ForecastHandler) GetForecast(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	horizon := h.defaultHorizon
	if v := r.URL.Query().Get("horizon"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > MaxHorizon {
			respondError(w, http.StatusBadRequest, "horizon must be an integer in [1, 120]")
			return
		}
		horizon = n
	}

	// 캐시 키는 saved_at 기준 (재학습 시 자동 무효화)
	var key string
	if h.cache != nil {
		if meta, err := h.store.Metadata(ctx); err == nil {
			key = redis.ForecastKey(meta.SavedAt, horizon)
			var cached contracts.ForecastResult
			if hit, err := h.cache.Get(ctx, key, &cached); err != nil {
				h.log.Warn().Err(err).Msg("forecast cache read failed")
			} else if hit {
				w.Header().Set("X-Cache", "HIT")
				respondJSON(w, http.StatusOK, &cached)
				return
			}
		}
	}

	res, err := h.forecaster.Forecast(ctx, horizon)
	if err != nil {
		status, msg := forecastStatus(err)
		if status == http.StatusInternalServerError {
			h.log.Error().Err(err).Int("horizon", horizon).Msg("forecast failed")
		}
		respondError(w, status, msg)
		return
	}

	if key != "" {
		if err := h.cache.Set(ctx, key, res, redis.TTLMedium); err != nil {
			h.log.Warn().Err(err).Msg("forecast cache write failed")
		}
	}
	w.Header().Set("X-Cache", "MISS")
	respondJSON(w, http.StatusOK, res)
}

func forecastStatus(err error) (int, string) {
	switch {
	case errors.Is(err, contracts.ErrModelNotFound):
		return http.StatusNotFound, "no trained model"
	case errors.Is(err, contracts.ErrStaleModel):
		return http.StatusConflict, err.Error()
	case errors.Is(err, contracts.ErrInvalidHorizon):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "forecast failed"
	}
}

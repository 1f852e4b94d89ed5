package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/salescast/internal/contracts"
	"github.com/wonny/salescast/internal/modelstore"
	"github.com/wonny/salescast/internal/s0_data/quality"
	"github.com/wonny/salescast/internal/sarima"
	"github.com/wonny/salescast/internal/timeseries"
)

var start = time.Date(2019, 1, 31, 0, 0, 0, 0, time.UTC)

func series(n int) *timeseries.Series {
	values := make([]float64, n)
	for i := range values {
		values[i] = 800 + 5*float64(i) + 120*math.Sin(2*math.Pi*float64(i)/12) + float64(i%3)
	}
	return timeseries.Monthly(start, values)
}

func trainedStore(t *testing.T, n int) *modelstore.Store {
	t.Helper()
	engine := sarima.NewEngine(zerolog.Nop())
	store := modelstore.New(modelstore.NewMemoryBackend(), engine, zerolog.Nop())
	model, err := engine.Fit(context.Background(), series(n), contracts.NewModelOrder(1, 0, 0, 0, 1, 0), contracts.FitOptions{})
	require.NoError(t, err)
	_, err = store.Save(context.Background(), model, nil)
	require.NoError(t, err)
	return store
}

type loader struct {
	series *timeseries.Series
	err    error
}

func (l loader) LoadSeries(context.Context) (*timeseries.Series, *quality.SeriesCheck, error) {
	return l.series, nil, l.err
}

type forecasterFunc func(ctx context.Context, horizon int) (*contracts.ForecastResult, error)

func (f forecasterFunc) Forecast(ctx context.Context, horizon int) (*contracts.ForecastResult, error) {
	return f(ctx, horizon)
}

func TestModelHandler_GetInfo(t *testing.T) {
	empty := modelstore.New(modelstore.NewMemoryBackend(), sarima.NewEngine(zerolog.Nop()), zerolog.Nop())

	rec := httptest.NewRecorder()
	NewModelHandler(empty, nil, zerolog.Nop()).GetInfo(rec, httptest.NewRequest(http.MethodGet, "/api/model", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var info map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, false, info["exists"])
	assert.NotContains(t, info, "metadata")

	rec = httptest.NewRecorder()
	NewModelHandler(trainedStore(t, 30), nil, zerolog.Nop()).GetInfo(rec, httptest.NewRequest(http.MethodGet, "/api/model", nil))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, true, info["exists"])
	meta := info["metadata"].(map[string]interface{})
	assert.Equal(t, "SARIMA", meta["model_type"])
	assert.EqualValues(t, 30, meta["n_observations"])
}

func TestModelHandler_GetState(t *testing.T) {
	store := trainedStore(t, 30)

	tests := []struct {
		name   string
		loader SeriesLoader
		code   int
		state  string
	}{
		{name: "no loader", loader: nil, code: http.StatusOK, state: "present_valid"},
		{name: "same data", loader: loader{series: series(30)}, code: http.StatusOK, state: "present_valid"},
		{name: "new month", loader: loader{series: series(31)}, code: http.StatusOK, state: "present_stale"},
		{name: "loader error", loader: loader{err: errors.New("db down")}, code: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewModelHandler(store, tt.loader, zerolog.Nop()).GetState(rec, httptest.NewRequest(http.MethodGet, "/api/model/state", nil))
			require.Equal(t, tt.code, rec.Code)
			if tt.state == "" {
				return
			}
			var body modelstore.StateReport
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.state, string(body.State))
		})
	}
}

func TestForecastHandler_GetForecast(t *testing.T) {
	store := trainedStore(t, 30)
	var gotHorizon int
	f := forecasterFunc(func(_ context.Context, h int) (*contracts.ForecastResult, error) {
		gotHorizon = h
		return &contracts.ForecastResult{Alpha: 0.05, Points: make([]contracts.ForecastPoint, h)}, nil
	})
	h := NewForecastHandler(f, store, nil, 12, zerolog.Nop())

	tests := []struct {
		query   string
		code    int
		horizon int
	}{
		{query: "", code: http.StatusOK, horizon: 12},
		{query: "?horizon=3", code: http.StatusOK, horizon: 3},
		{query: "?horizon=0", code: http.StatusBadRequest},
		{query: "?horizon=abc", code: http.StatusBadRequest},
		{query: "?horizon=121", code: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run("q="+tt.query, func(t *testing.T) {
			gotHorizon = 0
			rec := httptest.NewRecorder()
			h.GetForecast(rec, httptest.NewRequest(http.MethodGet, "/api/forecast"+tt.query, nil))
			require.Equal(t, tt.code, rec.Code)
			if tt.code != http.StatusOK {
				assert.Zero(t, gotHorizon)
				return
			}
			assert.Equal(t, tt.horizon, gotHorizon)
			var res contracts.ForecastResult
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
			assert.Len(t, res.Points, tt.horizon)
		})
	}
}

func TestForecastHandler_ErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{err: contracts.ErrModelNotFound, code: http.StatusNotFound},
		{err: &contracts.StaleModelError{Field: "n_observations"}, code: http.StatusConflict},
		{err: errors.New("boom"), code: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		f := forecasterFunc(func(context.Context, int) (*contracts.ForecastResult, error) { return nil, tt.err })
		rec := httptest.NewRecorder()
		NewForecastHandler(f, nil, nil, 12, zerolog.Nop()).GetForecast(rec, httptest.NewRequest(http.MethodGet, "/api/forecast", nil))
		assert.Equal(t, tt.code, rec.Code, tt.err.Error())
	}
}

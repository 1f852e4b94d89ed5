package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/salescast/internal/api/handlers"
	"github.com/wonny/salescast/internal/contracts"
	"github.com/wonny/salescast/internal/modelstore"
	"github.com/wonny/salescast/internal/sarima"
)

type noModel struct{}

func (noModel) Forecast(context.Context, int) (*contracts.ForecastResult, error) {
	return nil, contracts.ErrModelNotFound
}

func newTestRouter(limiter *ClientLimiter) http.Handler {
	store := modelstore.New(modelstore.NewMemoryBackend(), sarima.NewEngine(zerolog.Nop()), zerolog.Nop())
	return NewRouter(Handlers{
		Model:    handlers.NewModelHandler(store, nil, zerolog.Nop()),
		Forecast: handlers.NewForecastHandler(noModel{}, store, nil, 12, zerolog.Nop()),
	}, limiter, zerolog.Nop())
}

func TestRouter_Routes(t *testing.T) {
	router := newTestRouter(nil)

	tests := []struct {
		method string
		path   string
		code   int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/api/model", http.StatusOK},
		{http.MethodGet, "/api/model/state", http.StatusOK},
		{http.MethodGet, "/api/forecast", http.StatusNotFound},
		{http.MethodPost, "/api/model", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/unknown", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestRouter_MetricsExposesCollectors(t *testing.T) {
	router := newTestRouter(nil)
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `salescast_api_requests_total{code="200",route="/health"}`)
}

func TestRouter_RateLimit(t *testing.T) {
	router := newTestRouter(NewClientLimiter(1, 2))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/model", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	// other clients and /health are unaffected
	req := httptest.NewRequest(http.MethodGet, "/api/model", nil)
	req.RemoteAddr = "10.0.0.2:5000"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "10.0.0.1:5000"
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestClientLimiter_Refill(t *testing.T) {
	l := NewClientLimiter(1, 1)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	now = now.Add(time.Second)
	assert.True(t, l.Allow("a"))
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.5:1234"
	assert.Equal(t, "192.168.1.5", clientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", clientIP(req))
	assert.False(t, strings.Contains(clientIP(req), ","))
}

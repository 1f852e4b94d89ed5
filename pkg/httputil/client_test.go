package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/salescast/pkg/logger"
)

func newClient() *Client {
	return New(logger.Nop()).WithRetry(2, time.Millisecond)
}

func TestNew(t *testing.T) {
	c := New(logger.Nop())
	assert.Equal(t, 3, c.retryConfig.MaxRetries)
	assert.Equal(t, 30*time.Second, c.httpClient.Timeout)
	assert.EqualValues(t, DefaultMaxBytes, c.maxBytes)

	c.WithTimeout(5 * time.Second).DisableRetry()
	assert.Equal(t, 5*time.Second, c.httpClient.Timeout)
	assert.False(t, c.retryConfig.Enabled)
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("Order ID,Sales\nA-1,10\n"))
	}))
	defer srv.Close()

	body, err := newClient().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Order ID,Sales\nA-1,10\n", string(body))
}

func TestFetch_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	body, err := newClient().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.EqualValues(t, 3, calls.Load())
}

func TestFetch_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		max     int64
		wantErr error
		calls   int32
	}{
		{name: "not found is not retried", status: http.StatusNotFound, calls: 1},
		{name: "retries exhausted", status: http.StatusBadGateway, calls: 3},
		{name: "too large", status: http.StatusOK, body: "0123456789", max: 4, wantErr: ErrTooLarge, calls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := newClient()
			if tt.max > 0 {
				c.WithMaxBytes(tt.max)
			}
			_, err := c.Fetch(context.Background(), srv.URL)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Equal(t, tt.calls, calls.Load())
		})
	}
}

func TestFetch_ContextCancelledDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := New(logger.Nop()).WithRetry(5, time.Second).Fetch(ctx, srv.URL)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("https://example.com/sales.csv"))
	assert.True(t, IsURL("http://localhost:8080/x"))
	assert.False(t, IsURL("data/raw/sales.csv"))
}

func TestIsRetryableError(t *testing.T) {
	assert.True(t, IsRetryableError(500))
	assert.True(t, IsRetryableError(429))
	assert.False(t, IsRetryableError(404))
	assert.False(t, IsRetryableError(200))
}

package redis

import (
	"context"
	"net"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/salescast/pkg/config"
)

func disabledClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(context.Background(), &config.Config{Redis: config.RedisConfig{Enabled: false}})
	require.NoError(t, err)
	return client
}

// liveClient connects to REDIS_ADDR or skips.
func liveClient(t *testing.T) *Client {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set, skipping integration test")
	}
	host, port, err := net.SplitHostPort(addr)
	require.NoError(t, err)

	client, err := New(context.Background(), &config.Config{
		Redis: config.RedisConfig{Host: host, Port: port, Enabled: true},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestNewClient_Disabled(t *testing.T) {
	client := disabledClient(t)
	assert.False(t, client.Enabled())
	assert.Nil(t, client.Redis())
	assert.NoError(t, client.Close())
}

func TestCache_Disabled(t *testing.T) {
	ctx := context.Background()
	cache := NewCache(disabledClient(t), "test")

	var result string
	found, err := cache.Get(ctx, "key", &result)
	require.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, cache.Set(ctx, "key", "value", TTLShort))
	assert.NoError(t, cache.Delete(ctx, "key"))
	assert.NoError(t, cache.InvalidatePattern(ctx, "*"))
}

func TestForecastKey(t *testing.T) {
	assert.Equal(t, "forecast:2024-01-31T00:00:00Z:h12", ForecastKey("2024-01-31T00:00:00Z", 12))
	assert.NotEqual(t, ForecastKey("a", 12), ForecastKey("a", 6))
}

func TestCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	cache := NewCache(liveClient(t), "salescast-test")

	type payload struct {
		Values []float64 `json:"values"`
	}
	require.NoError(t, cache.Set(ctx, "rt", payload{Values: []float64{1, 2}}, time.Minute))

	var got payload
	found, err := cache.Get(ctx, "rt", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []float64{1, 2}, got.Values)

	require.NoError(t, cache.InvalidatePattern(ctx, "r*"))
	found, err = cache.Get(ctx, "rt", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

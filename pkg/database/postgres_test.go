package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/salescast/pkg/config"
)

func TestNew_NotConfigured(t *testing.T) {
	cfg := &config.Config{}
	_, err := New(context.Background(), cfg)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSchemaFiles(t *testing.T) {
	names, err := SchemaFiles()
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "schema/001_sales.sql", names[0])
}

func TestMigrateAndHealthCheck(t *testing.T) {
	// Skip if DATABASE_URL is not set
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	cfg, err := config.Load()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := New(ctx, cfg)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Migrate(ctx))
	// idempotent
	require.NoError(t, db.Migrate(ctx))

	status, err := db.HealthCheck(ctx)
	require.NoError(t, err)
	assert.True(t, status.Healthy)
	assert.Positive(t, status.Stats.MaxConns)
}

package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/wonny/salescast/internal/lifecycle"
	"github.com/wonny/salescast/internal/modelstore"
	"github.com/wonny/salescast/internal/s0_data"
	"github.com/wonny/salescast/internal/sarima"
	"github.com/wonny/salescast/pkg/config"
	"github.com/wonny/salescast/pkg/database"
	"github.com/wonny/salescast/pkg/logger"
	"github.com/wonny/salescast/pkg/redis"
)

// app shared dependencies of every command
type app struct {
	cfg    *config.Config
	logger *logger.Logger
	log    zerolog.Logger
	engine *sarima.Engine

	db    *database.DB  // nil unless DATABASE_URL is set
	redis *redis.Client // no-op client when disabled
	store *modelstore.Store
}

// newApp loads config and connects the optional backends.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	lg := logger.New(cfg)
	a := &app{
		cfg:    cfg,
		logger: lg,
		log:    lg.Zerolog(),
	}
	a.engine = sarima.NewEngine(a.log)

	if cfg.Database.Enabled() {
		a.db, err = database.New(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
	}

	a.redis, err = redis.New(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	backend, err := modelstore.NewBackend(ctx, cfg, a.redis)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("model store: %w", err)
	}
	a.store = modelstore.New(backend, a.engine, a.log)
	return a, nil
}

// Close releases connections
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}

// source returns the record source selected by --source.
func (a *app) source() (s0_data.RecordSource, error) {
	switch sourceKind {
	case "", "csv":
		return s0_data.NewCSVSource(a.cfg.Paths.CleanedCSV, s0_data.NewCleaner(a.log)), nil
	case "db":
		if a.db == nil {
			return nil, fmt.Errorf("--source db: %w", database.ErrNotConfigured)
		}
		return s0_data.NewOrderRepository(a.db.Pool), nil
	default:
		return nil, fmt.Errorf("unknown source %q (csv|db)", sourceKind)
	}
}

// manager wires the lifecycle manager over the selected source.
func (a *app) manager() (*lifecycle.Manager, error) {
	src, err := a.source()
	if err != nil {
		return nil, err
	}
	return lifecycle.New(a.engine, src, a.store, a.cfg.Forecast, a.log), nil
}

// cache returns the forecast cache, nil when Redis is disabled.
func (a *app) cache() *redis.Cache {
	if !a.redis.Enabled() {
		return nil
	}
	return redis.NewCache(a.redis, "salescast")
}

// withApp runs fn with a connected app.
func withApp(ctx context.Context, fn func(a *app) error) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

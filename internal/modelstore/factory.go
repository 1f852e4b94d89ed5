package modelstore

import (
	"context"
	"fmt"

	"github.com/wonny/salescast/pkg/config"
	"github.com/wonny/salescast/pkg/redis"
)

// NewBackend selects the backend named by cfg.Store.Backend.
// rc is only used by the redis backend and may be nil otherwise.
func NewBackend(ctx context.Context, cfg *config.Config, rc *redis.Client) (Backend, error) {
	switch cfg.Store.Backend {
	case "", "file":
		return NewFileBackend(cfg.Paths.ModelsDir), nil
	case "memory":
		return NewMemoryBackend(), nil
	case "s3":
		return NewS3Backend(ctx, cfg.Store.S3Bucket, cfg.Store.S3Prefix, cfg.Store.S3Region)
	case "redis":
		if rc == nil || !rc.Enabled() {
			return nil, fmt.Errorf("redis backend requires an enabled redis client")
		}
		return NewRedisBackend(rc.Redis(), cfg.Store.RedisPrefix), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

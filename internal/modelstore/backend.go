package modelstore

import (
	"context"
	"errors"
	"time"
)

// ErrObjectNotFound is returned by a Backend for a missing name.
var ErrObjectNotFound = errors.New("object not found")

// ObjectInfo describes a stored object
type ObjectInfo struct {
	Size    int64
	ModTime time.Time
}

// Backend stores named blobs.
// ⭐ SSOT: 저장 매체 경계 인터페이스 (file / memory / s3 / redis)
type Backend interface {
	Put(ctx context.Context, name string, data []byte) error
	Get(ctx context.Context, name string) ([]byte, error)
	Stat(ctx context.Context, name string) (ObjectInfo, error)
	Delete(ctx context.Context, name string) error
	// Location is the human-readable address of name ("models/x.bin", "s3://b/k").
	Location(name string) string
}

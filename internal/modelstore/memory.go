package modelstore

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type memObject struct {
	data    []byte
	modTime time.Time
}

// MemoryBackend keeps objects in process memory.
type MemoryBackend struct {
	mu      sync.RWMutex
	objects map[string]memObject
	now     func() time.Time
}

// NewMemoryBackend creates an empty in-memory backend
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		objects: make(map[string]memObject),
		now:     time.Now,
	}
}

// Put stores a copy of data.
func (b *MemoryBackend) Put(_ context.Context, name string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[name] = memObject{data: append([]byte(nil), data...), modTime: b.now()}
	return nil
}

// Get returns a copy of the stored data.
func (b *MemoryBackend) Get(_ context.Context, name string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	obj, ok := b.objects[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, name)
	}
	return append([]byte(nil), obj.data...), nil
}

// Stat returns size and store time.
func (b *MemoryBackend) Stat(_ context.Context, name string) (ObjectInfo, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	obj, ok := b.objects[name]
	if !ok {
		return ObjectInfo{}, fmt.Errorf("%w: %s", ErrObjectNotFound, name)
	}
	return ObjectInfo{Size: int64(len(obj.data)), ModTime: obj.modTime}, nil
}

// Delete removes name.
func (b *MemoryBackend) Delete(_ context.Context, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, name)
	return nil
}

// Location returns "memory://name".
func (b *MemoryBackend) Location(name string) string {
	return "memory://" + name
}

package modelstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const (
	fieldData    = "data"
	fieldModTime = "mod_time"
)

// RedisBackend stores each object as a hash {data, mod_time} under prefix:name.
type RedisBackend struct {
	rdb    *goredis.Client
	prefix string
	now    func() time.Time
}

// NewRedisBackend creates a Redis-backed object store
func NewRedisBackend(rdb *goredis.Client, prefix string) *RedisBackend {
	return &RedisBackend{rdb: rdb, prefix: prefix, now: time.Now}
}

func (b *RedisBackend) key(name string) string {
	return b.prefix + ":" + name
}

// Put replaces the hash in one transaction.
func (b *RedisBackend) Put(ctx context.Context, name string, data []byte) error {
	key := b.key(name)
	_, err := b.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, fieldData, data, fieldModTime, b.now().UTC().UnixNano())
		return nil
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", b.Location(name), err)
	}
	return nil
}

// Get returns the stored data.
func (b *RedisBackend) Get(ctx context.Context, name string) ([]byte, error) {
	data, err := b.rdb.HGet(ctx, b.key(name), fieldData).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, b.Location(name))
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", b.Location(name), err)
	}
	return data, nil
}

// Stat reads the data length and stored timestamp.
func (b *RedisBackend) Stat(ctx context.Context, name string) (ObjectInfo, error) {
	key := b.key(name)
	var (
		size    *goredis.IntCmd
		modTime *goredis.StringCmd
	)
	_, err := b.rdb.Pipelined(ctx, func(pipe goredis.Pipeliner) error {
		size = pipe.HStrLen(ctx, key, fieldData)
		modTime = pipe.HGet(ctx, key, fieldModTime)
		return nil
	})
	if errors.Is(err, goredis.Nil) {
		return ObjectInfo{}, fmt.Errorf("%w: %s", ErrObjectNotFound, b.Location(name))
	}
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("stat %s: %w", b.Location(name), err)
	}

	nanos, err := strconv.ParseInt(modTime.Val(), 10, 64)
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("stat %s: bad mod_time: %w", b.Location(name), err)
	}
	return ObjectInfo{Size: size.Val(), ModTime: time.Unix(0, nanos).UTC()}, nil
}

// Delete removes the hash.
func (b *RedisBackend) Delete(ctx context.Context, name string) error {
	return b.rdb.Del(ctx, b.key(name)).Err()
}

// Location returns "redis://prefix:name".
func (b *RedisBackend) Location(name string) string {
	return "redis://" + b.key(name)
}

package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis stores encoded values in Redis under "<prefix>:<key>".
type Redis[V any] struct {
	client redis.UniversalClient
	codec  Codec[V]
	prefix string
	ttl    time.Duration
}

// NewRedis wraps client. A nil codec selects JSONCodec. The client lifecycle
// stays with the caller.
func NewRedis[V any](client redis.UniversalClient, prefix string, ttl time.Duration, codec Codec[V]) (*Redis[V], error) {
	if client == nil {
		return nil, ErrNilClient
	}
	if codec == nil {
		codec = JSONCodec[V]{}
	}
	if ttl == 0 {
		ttl = time.Hour
	}
	return &Redis[V]{client: client, codec: codec, prefix: prefix, ttl: ttl}, nil
}

func (r *Redis[V]) Get(ctx context.Context, key string) (V, error) {
	var zero V
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return zero, ErrNotFound
	}
	if err != nil {
		return zero, err
	}
	return r.codec.Decode(data)
}

func (r *Redis[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) error {
	data, err := r.codec.Encode(value)
	if err != nil {
		return err
	}
	if ttl == 0 {
		ttl = r.ttl
	}
	// Redis treats 0 as no expiry.
	return r.client.Set(ctx, r.key(key), data, max(ttl, 0)).Err()
}

func (r *Redis[V]) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.key(k)
	}
	return r.client.Del(ctx, full...).Err()
}

func (r *Redis[V]) Close() error { return nil }

func (r *Redis[V]) key(k string) string {
	if r.prefix == "" {
		return k
	}
	return r.prefix + ":" + k
}

var _ Cache[any] = (*Redis[any])(nil)

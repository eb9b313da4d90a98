package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache is a key-value store with per-entry expiry.
//
// A zero ttl passed to Set selects the backend default; a negative ttl keeps
// the entry until it is deleted.
type Cache[V any] interface {
	Get(ctx context.Context, key string) (V, error)
	Set(ctx context.Context, key string, value V, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// Codec converts values to and from bytes for byte-oriented backends.
type Codec[V any] interface {
	Encode(v V) ([]byte, error)
	Decode(data []byte) (V, error)
}

// JSONCodec is the default Codec.
type JSONCodec[V any] struct{}

func (JSONCodec[V]) Encode(v V) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Join(ErrEncode, err)
	}
	return data, nil
}

func (JSONCodec[V]) Decode(data []byte) (V, error) {
	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		return v, errors.Join(ErrDecode, err)
	}
	return v, nil
}

// Loader computes a value on a cache miss.
type Loader[V any] func(ctx context.Context) (V, error)

var (
	loads singleflight.Group

	// generations counts Refresh calls per flight key. A load started under
	// an older generation must not store its result.
	generations   = make(map[string]uint64)
	generationsMu sync.Mutex
)

func flightKey[V any](c Cache[V], key string) string {
	return fmt.Sprintf("%p|%s", c, key)
}

func generation(fk string) uint64 {
	generationsMu.Lock()
	defer generationsMu.Unlock()
	return generations[fk]
}

// GetOrSet returns the cached value for key or loads and stores it.
// Concurrent misses for the same key of the same cache share a single load.
// A load that overlaps a Refresh of the same key does not overwrite the
// refreshed value.
func GetOrSet[V any](ctx context.Context, c Cache[V], key string, ttl time.Duration, load Loader[V]) (V, error) {
	if v, err := c.Get(ctx, key); err == nil {
		return v, nil
	}

	fk := flightKey(c, key)
	res, err, _ := loads.Do(fk, func() (any, error) {
		gen := generation(fk)
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}

		generationsMu.Lock()
		defer generationsMu.Unlock()
		if generations[fk] != gen {
			return v, nil
		}
		if err := c.Set(ctx, key, v, ttl); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrStore, err)
		}
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(V), nil
}

// Refresh loads a fresh value and overwrites the cached one. Loads of the
// same key already in flight through GetOrSet are detached and will not
// store their result. The previous entry is kept when load fails.
func Refresh[V any](ctx context.Context, c Cache[V], key string, ttl time.Duration, load Loader[V]) (V, error) {
	fk := flightKey(c, key)
	generationsMu.Lock()
	generations[fk]++
	generationsMu.Unlock()
	loads.Forget(fk)

	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	if err := c.Set(ctx, key, v, ttl); err != nil {
		return v, fmt.Errorf("%w: %w", ErrStore, err)
	}
	return v, nil
}

package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/oncallkit/notifydesk/pkg/cache"
)

var (
	ErrUnknownQuery = errors.New("query: unknown query group")
	ErrDecode       = errors.New("query: failed to decode cached result")
)

// Fetcher loads the result of a query group for one key, such as a user id.
type Fetcher func(ctx context.Context, key string) (any, error)

type group struct {
	fetch Fetcher
	keys  map[string]struct{}
}

// Registry caches the results of named query groups and reloads them on
// demand. Every key fetched through Get is remembered so that Refetch can
// reload exactly the results that are currently being shown.
type Registry struct {
	store  cache.Cache[[]byte]
	groups map[string]*group
	ttl    time.Duration
	mu     sync.Mutex
}

// Option configures a Registry.
type Option func(*Registry)

// WithTTL bounds how long a result is served without a refetch.
func WithTTL(d time.Duration) Option {
	return func(r *Registry) { r.ttl = d }
}

// New creates a Registry on top of store.
func New(store cache.Cache[[]byte], opts ...Option) *Registry {
	r := &Registry{store: store, groups: make(map[string]*group), ttl: 5 * time.Minute}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds or replaces a query group.
func (r *Registry) Register(name string, fetch Fetcher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups[name] = &group{fetch: fetch, keys: make(map[string]struct{})}
}

// Get returns the result of group name for key, loading it on a miss.
func Get[T any](ctx context.Context, r *Registry, name, key string) (T, error) {
	var zero T

	load, err := r.track(name, key)
	if err != nil {
		return zero, err
	}

	raw, err := cache.GetOrSet(ctx, r.store, cacheKey(name, key), r.ttl, load)
	if err != nil {
		return zero, err
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, errors.Join(ErrDecode, err)
	}
	return out, nil
}

// Refetch reloads every tracked key of the named groups concurrently and
// waits for all of them. A failed reload keeps the previous result cached;
// the first error is returned.
func (r *Registry) Refetch(ctx context.Context, names ...string) error {
	type job struct {
		load cache.Loader[[]byte]
		key  string
	}

	var jobs []job
	r.mu.Lock()
	for _, name := range names {
		g, ok := r.groups[name]
		if !ok {
			r.mu.Unlock()
			return fmt.Errorf("%w: %s", ErrUnknownQuery, name)
		}
		for key := range g.keys {
			jobs = append(jobs, job{load: loader(g.fetch, key), key: cacheKey(name, key)})
		}
	}
	r.mu.Unlock()

	eg, ctx := errgroup.WithContext(ctx)
	for _, j := range jobs {
		eg.Go(func() error {
			_, err := cache.Refresh(ctx, r.store, j.key, r.ttl, j.load)
			return err
		})
	}
	return eg.Wait()
}

// Invalidate drops cached results of the named groups. The next Get reloads.
func (r *Registry) Invalidate(ctx context.Context, names ...string) error {
	var keys []string
	r.mu.Lock()
	for _, name := range names {
		g, ok := r.groups[name]
		if !ok {
			r.mu.Unlock()
			return fmt.Errorf("%w: %s", ErrUnknownQuery, name)
		}
		for key := range g.keys {
			keys = append(keys, cacheKey(name, key))
		}
		g.keys = make(map[string]struct{})
	}
	r.mu.Unlock()

	return r.store.Delete(ctx, keys...)
}

// Tracked returns the sorted keys remembered for group name.
func (r *Registry) Tracked(name string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.groups[name]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(g.keys))
	for k := range g.keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) track(name, key string) (cache.Loader[[]byte], error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.groups[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownQuery, name)
	}
	g.keys[key] = struct{}{}
	return loader(g.fetch, key), nil
}

func loader(fetch Fetcher, key string) cache.Loader[[]byte] {
	return func(ctx context.Context) ([]byte, error) {
		v, err := fetch(ctx, key)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	}
}

func cacheKey(name, key string) string {
	return "query:" + name + ":" + key
}

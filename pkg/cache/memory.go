package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

type memEntry[V any] struct {
	expires time.Time
	value   V
	key     string
}

func (e *memEntry[V]) expired(now time.Time) bool {
	return !e.expires.IsZero() && now.After(e.expires)
}

// MemoryOption configures a Memory cache.
type MemoryOption func(*memoryConfig)

type memoryConfig struct {
	ttl      time.Duration
	sweep    time.Duration
	capacity int
}

// WithDefaultTTL sets the expiry used when Set receives a zero ttl. Default 1h.
func WithDefaultTTL(d time.Duration) MemoryOption {
	return func(c *memoryConfig) { c.ttl = d }
}

// WithSweepInterval sets how often expired entries are purged. Zero disables
// the background sweeper. Default 1m.
func WithSweepInterval(d time.Duration) MemoryOption {
	return func(c *memoryConfig) { c.sweep = d }
}

// WithCapacity bounds the number of entries; the least recently used entry
// is evicted once it is reached. Zero means unbounded.
func WithCapacity(n int) MemoryOption {
	return func(c *memoryConfig) { c.capacity = n }
}

// Memory is an in-process LRU cache with expiry.
type Memory[V any] struct {
	cfg   memoryConfig
	items map[string]*list.Element
	lru   *list.List
	stop  chan struct{}
	mu    sync.Mutex
	done  bool
}

// NewMemory creates a Memory cache. Call Close to stop the sweeper.
func NewMemory[V any](opts ...MemoryOption) *Memory[V] {
	cfg := memoryConfig{ttl: time.Hour, sweep: time.Minute}
	for _, opt := range opts {
		opt(&cfg)
	}

	m := &Memory[V]{
		cfg:   cfg,
		items: make(map[string]*list.Element),
		lru:   list.New(),
		stop:  make(chan struct{}),
	}
	if cfg.sweep > 0 {
		go m.sweeper()
	}
	return m
}

func (m *Memory[V]) Get(_ context.Context, key string) (V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero V
	el, ok := m.items[key]
	if !ok {
		return zero, ErrNotFound
	}
	e := el.Value.(*memEntry[V])
	if e.expired(time.Now()) {
		m.remove(el)
		return zero, ErrNotFound
	}
	m.lru.MoveToFront(el)
	return e.value, nil
}

func (m *Memory[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.done {
		return ErrClosed
	}
	if ttl == 0 {
		ttl = m.cfg.ttl
	}
	var expires time.Time
	if ttl > 0 {
		expires = time.Now().Add(ttl)
	}

	if el, ok := m.items[key]; ok {
		e := el.Value.(*memEntry[V])
		e.value, e.expires = value, expires
		m.lru.MoveToFront(el)
		return nil
	}

	if m.cfg.capacity > 0 && len(m.items) >= m.cfg.capacity {
		if oldest := m.lru.Back(); oldest != nil {
			m.remove(oldest)
		}
	}
	m.items[key] = m.lru.PushFront(&memEntry[V]{key: key, value: value, expires: expires})
	return nil
}

func (m *Memory[V]) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.done {
		return ErrClosed
	}
	for _, k := range keys {
		if el, ok := m.items[k]; ok {
			m.remove(el)
		}
	}
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Close is idempotent.
func (m *Memory[V]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.done {
		m.done = true
		close(m.stop)
	}
	return nil
}

func (m *Memory[V]) sweeper() {
	t := time.NewTicker(m.cfg.sweep)
	defer t.Stop()

	for {
		select {
		case <-m.stop:
			return
		case now := <-t.C:
			m.mu.Lock()
			for el := m.lru.Back(); el != nil; {
				prev := el.Prev()
				if el.Value.(*memEntry[V]).expired(now) {
					m.remove(el)
				}
				el = prev
			}
			m.mu.Unlock()
		}
	}
}

// remove requires m.mu.
func (m *Memory[V]) remove(el *list.Element) {
	m.lru.Remove(el)
	delete(m.items, el.Value.(*memEntry[V]).key)
}

var _ Cache[any] = (*Memory[any])(nil)

package cache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oncallkit/notifydesk/pkg/cache"
)

func TestMemory_GetSet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := cache.NewMemory[string](cache.WithSweepInterval(0))
	defer c.Close()

	_, err := c.Get(ctx, "missing")
	require.ErrorIs(t, err, cache.ErrNotFound)

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	v, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	require.NoError(t, c.Delete(ctx, "k", "other"))
	_, err = c.Get(ctx, "k")
	require.ErrorIs(t, err, cache.ErrNotFound)
}

func TestMemory_Expiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := cache.NewMemory[int](cache.WithSweepInterval(0))
	defer c.Close()

	require.NoError(t, c.Set(ctx, "short", 1, time.Millisecond))
	require.NoError(t, c.Set(ctx, "forever", 2, -1))
	time.Sleep(5 * time.Millisecond)

	_, err := c.Get(ctx, "short")
	require.ErrorIs(t, err, cache.ErrNotFound)

	v, err := c.Get(ctx, "forever")
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestMemory_EvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := cache.NewMemory[string](cache.WithCapacity(2), cache.WithSweepInterval(0))
	defer c.Close()

	require.NoError(t, c.Set(ctx, "a", "1", 0))
	require.NoError(t, c.Set(ctx, "b", "2", 0))
	_, err := c.Get(ctx, "a")
	require.NoError(t, err)
	require.NoError(t, c.Set(ctx, "c", "3", 0))

	_, err = c.Get(ctx, "b")
	require.ErrorIs(t, err, cache.ErrNotFound)
	assert.Equal(t, 2, c.Len())
}

func TestMemory_Closed(t *testing.T) {
	t.Parallel()

	c := cache.NewMemory[string]()
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	require.ErrorIs(t, c.Set(context.Background(), "k", "v", 0), cache.ErrClosed)
}

func TestGetOrSet(t *testing.T) {
	t.Parallel()

	t.Run("concurrent misses share one load", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		c := cache.NewMemory[int](cache.WithSweepInterval(0))
		defer c.Close()

		var calls atomic.Int32
		release := make(chan struct{})
		load := func(context.Context) (int, error) {
			calls.Add(1)
			<-release
			return 7, nil
		}

		var wg sync.WaitGroup
		for range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				v, err := cache.GetOrSet(ctx, c, "shared-load", time.Minute, load)
				assert.NoError(t, err)
				assert.Equal(t, 7, v)
			}()
		}
		time.Sleep(10 * time.Millisecond)
		close(release)
		wg.Wait()

		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("errors are not cached", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		c := cache.NewMemory[int](cache.WithSweepInterval(0))
		defer c.Close()

		boom := errors.New("boom")
		_, err := cache.GetOrSet(ctx, c, "failing-load", 0, func(context.Context) (int, error) { return 0, boom })
		require.ErrorIs(t, err, boom)

		_, err = c.Get(ctx, "failing-load")
		require.ErrorIs(t, err, cache.ErrNotFound)
	})
}

func TestRefresh_KeepsOldValueOnError(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := cache.NewMemory[string](cache.WithSweepInterval(0))
	defer c.Close()

	require.NoError(t, c.Set(ctx, "k", "old", 0))
	_, err := cache.Refresh(ctx, c, "k", 0, func(context.Context) (string, error) { return "", errors.New("down") })
	require.Error(t, err)

	v, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "old", v)

	v, err = cache.Refresh(ctx, c, "k", 0, func(context.Context) (string, error) { return "new", nil })
	require.NoError(t, err)
	assert.Equal(t, "new", v)
}

func TestGetOrSet_DoesNotOverwriteRefresh(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := cache.NewMemory[string](cache.WithSweepInterval(0))
	defer c.Close()

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan string)
	go func() {
		v, err := cache.GetOrSet(ctx, c, "list", 0, func(context.Context) (string, error) {
			close(started)
			<-release
			return "stale", nil
		})
		assert.NoError(t, err)
		done <- v
	}()

	<-started
	v, err := cache.Refresh(ctx, c, "list", 0, func(context.Context) (string, error) { return "fresh", nil })
	require.NoError(t, err)
	assert.Equal(t, "fresh", v)

	close(release)
	assert.Equal(t, "stale", <-done)

	v, err = c.Get(ctx, "list")
	require.NoError(t, err)
	assert.Equal(t, "fresh", v)

	// Later misses load and store normally.
	require.NoError(t, c.Delete(ctx, "list"))
	v, err = cache.GetOrSet(ctx, c, "list", 0, func(context.Context) (string, error) { return "next", nil })
	require.NoError(t, err)
	assert.Equal(t, "next", v)
	v, err = c.Get(ctx, "list")
	require.NoError(t, err)
	assert.Equal(t, "next", v)
}

type failingSet struct {
	*cache.Memory[int]
}

func (failingSet) Set(context.Context, string, int, time.Duration) error {
	return errors.New("connection refused")
}

func TestStoreErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mem := cache.NewMemory[int](cache.WithSweepInterval(0))
	defer mem.Close()
	c := failingSet{Memory: mem}
	load := func(context.Context) (int, error) { return 1, nil }

	_, err := cache.GetOrSet[int](ctx, c, "k", 0, load)
	require.ErrorIs(t, err, cache.ErrStore)
	assert.ErrorContains(t, err, "connection refused")

	_, err = cache.Refresh[int](ctx, c, "k", 0, load)
	require.ErrorIs(t, err, cache.ErrStore)
}

func TestJSONCodec(t *testing.T) {
	t.Parallel()

	_, err := cache.JSONCodec[map[string]int]{}.Decode([]byte("not json"))
	require.ErrorIs(t, err, cache.ErrDecode)
}

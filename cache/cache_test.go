package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryKVStoreTTL(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemoryKVStore()
	m.now = func() time.Time { return clock }

	require.NoError(t, m.Set(ctx, "a", "1", time.Minute))
	require.NoError(t, m.Set(ctx, "b", "2", 0))

	v, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "1", v)

	clock = clock.Add(time.Minute)
	_, err = m.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrCacheMiss)

	v, err = m.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "2", v)

	require.NoError(t, m.Del(ctx, "b"))
	_, err = m.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

// brokenKV fails every call.
type brokenKV struct{}

func (brokenKV) Get(context.Context, string) (string, error) { return "", errors.New("conn refused") }
func (brokenKV) Set(context.Context, string, string, time.Duration) error {
	return errors.New("conn refused")
}
func (brokenKV) Del(context.Context, string) error { return errors.New("conn refused") }

func TestReports(t *testing.T) {
	ctx := context.Background()
	calls := 0
	load := func(context.Context) (json.RawMessage, error) {
		calls++
		return json.RawMessage(`{"total_strikes":5}`), nil
	}

	t.Run("miss then hit", func(t *testing.T) {
		calls = 0
		r := NewReports(NewMemoryKVStore(), time.Minute, nil)

		raw, err := r.Get(ctx, 7, load)
		require.NoError(t, err)
		assert.JSONEq(t, `{"total_strikes":5}`, string(raw))

		raw, err = r.Get(ctx, 7, load)
		require.NoError(t, err)
		assert.JSONEq(t, `{"total_strikes":5}`, string(raw))
		assert.Equal(t, 1, calls)

		require.NoError(t, r.Invalidate(ctx, 7))
		_, err = r.Get(ctx, 7, load)
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("a broken cache falls through to the loader", func(t *testing.T) {
		calls = 0
		r := NewReports(brokenKV{}, time.Minute, nil)
		raw, err := r.Get(ctx, 7, load)
		require.NoError(t, err)
		assert.NotEmpty(t, raw)
		assert.Equal(t, 1, calls)
	})

	t.Run("loader errors are returned and not cached", func(t *testing.T) {
		kv := NewMemoryKVStore()
		r := NewReports(kv, time.Minute, nil)
		boom := errors.New("not found")
		_, err := r.Get(ctx, 8, func(context.Context) (json.RawMessage, error) { return nil, boom })
		assert.ErrorIs(t, err, boom)
		_, err = kv.Get(ctx, reportKey(8))
		assert.ErrorIs(t, err, ErrCacheMiss)
	})
}
